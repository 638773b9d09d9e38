package httpconn

import (
	"github.com/frankli0324/go-httpconn/internal/dialer"
	"github.com/frankli0324/go-httpconn/internal/trust"
)

type Dialer = dialer.Dialer
type Resolver = dialer.Resolver
type CoreDialer = dialer.CoreDialer

type ResolveConfig = dialer.ResolveConfig
type TrustConfig = trust.Config
