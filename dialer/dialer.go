package dialer

import (
	"github.com/frankli0324/go-httpconn/internal/dialer"
	"github.com/frankli0324/go-httpconn/internal/trust"
)

// Dialers are responsible for creating the underlying stream a connection
// writes its request to and reads its response from: resolving the host
// to endpoints and opening a raw TCP connection to one of them.
//
// A Dialer MUST NOT hold connection state, the stream it returns is owned
// by the connection that asked for it and is closed by that connection.
type Dialer = dialer.Dialer

// Resolver maps a host and port to the endpoints a connection may try, in
// order of preference. Only the first one is dialed.
type Resolver = dialer.Resolver

// CoreDialer is the default implementation of the [Dialer] interface. It
// would be used when no dialer is configured.
type CoreDialer = dialer.CoreDialer

// we need a dedicated resolver to customize the DNS server used for
// resolving hostnames.
//
// the standard library didn't provide a intuitive way of
// setting DNS server addresses since it only follows the
// system configuration (e.g. /etc/resolv.conf), leaving us only
// one option of using [net.Resolver.Dial] hook with a Go Resolver.
//
// this part of code tries to take advantage of that
// only option as far as possible to provide a relativly
// intuitive configuration API.
type ResolveConfig = dialer.ResolveConfig

// TrustConfig selects the root certificates secure connections verify
// their peers against. The zero value trusts the system roots.
type TrustConfig = trust.Config

var ErrNoAddresses = dialer.ErrNoAddresses
