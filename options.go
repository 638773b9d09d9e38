package httpconn

import "github.com/frankli0324/go-httpconn/internal"

type Options = internal.Options
type Option = internal.Option

const (
	DefaultTimeout         = internal.DefaultTimeout
	DefaultShutdownTimeout = internal.DefaultShutdownTimeout
	DefaultUserAgent       = internal.DefaultUserAgent
)

var (
	WithTimeout         = internal.WithTimeout
	WithShutdownTimeout = internal.WithShutdownTimeout
	WithLogger          = internal.WithLogger
	WithDialer          = internal.WithDialer
	WithResolveConfig   = internal.WithResolveConfig
	WithTrust           = internal.WithTrust
	WithRootCAs         = internal.WithRootCAs
	WithTLSMinVersion   = internal.WithTLSMinVersion
	WithTLSConfig       = internal.WithTLSConfig
	WithUserAgent       = internal.WithUserAgent
	WithMaxBodySize     = internal.WithMaxBodySize
)
