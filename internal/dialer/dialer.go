package dialer

import (
	"context"
	"net"
	"net/netip"
	"time"
)

// Resolver turns a host and port into the endpoints to connect to, in the
// order they should be tried.
type Resolver interface {
	Resolve(ctx context.Context, host, port string) ([]netip.AddrPort, error)
}

// Dialers handle everything below the HTTP message: name resolution and
// opening the TCP stream. A Dialer MUST NOT hold connection state, the
// connection it produces is owned by the caller.
type Dialer interface {
	Resolver
	DialTCP(ctx context.Context, ep netip.AddrPort) (net.Conn, error)
}

// CoreDialer is the default implementation of the [Dialer] interface.
type CoreDialer struct {
	ResolveConfig *ResolveConfig

	// Resolver overrides the built-in lookup when set.
	Resolver Resolver

	KeepAlive time.Duration
}

func (d *CoreDialer) Clone() *CoreDialer {
	return &CoreDialer{
		ResolveConfig: d.ResolveConfig.Clone(),
		Resolver:      d.Resolver,
		KeepAlive:     d.KeepAlive,
	}
}

func (d *CoreDialer) DialTCP(ctx context.Context, ep netip.AddrPort) (net.Conn, error) {
	network := "tcp"
	if d.ResolveConfig != nil {
		switch d.ResolveConfig.Network {
		case "ip4":
			network = "tcp4"
		case "ip6":
			network = "tcp6"
		}
	}
	dialer := net.Dialer{KeepAlive: d.KeepAlive}
	return dialer.DialContext(ctx, network, ep.String())
}
