package internal

import (
	"crypto/tls"
	"crypto/x509"
	"log/slog"
	"time"

	"github.com/frankli0324/go-httpconn/internal/dialer"
	"github.com/frankli0324/go-httpconn/internal/trust"
)

const (
	// DefaultTimeout bounds each blocking step: resolve, connect,
	// handshake, write and read.
	DefaultTimeout = 30 * time.Second
	// DefaultShutdownTimeout bounds waiting for the peer's close_notify.
	DefaultShutdownTimeout = 2 * time.Second
	DefaultUserAgent       = "go-httpconn/1.0"
)

type Options struct {
	Timeout         time.Duration // <= 0 disables the per step timeout
	ShutdownTimeout time.Duration
	Logger          *slog.Logger

	// Dialer resolves and opens the TCP stream, a *[dialer.CoreDialer]
	// built from ResolveConfig is used when nil.
	Dialer        dialer.Dialer
	ResolveConfig *dialer.ResolveConfig

	// Trust selects the root certificates, RootCAs takes precedence.
	Trust   *trust.Config
	RootCAs *x509.CertPool
	// TLSConfig is the base every secure session is derived from.
	// ServerName, RootCAs and verification are always overridden.
	TLSConfig *tls.Config

	UserAgent   string
	MaxBodySize int64
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Timeout:         DefaultTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		UserAgent:       DefaultUserAgent,
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ShutdownTimeout = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithDialer replaces name resolution and TCP connect altogether.
func WithDialer(d dialer.Dialer) Option {
	return func(o *Options) {
		o.Dialer = d
	}
}

func WithResolveConfig(c *dialer.ResolveConfig) Option {
	return func(o *Options) {
		o.ResolveConfig = c
	}
}

func WithTrust(c *trust.Config) Option {
	return func(o *Options) {
		o.Trust = c
	}
}

func WithRootCAs(pool *x509.CertPool) Option {
	return func(o *Options) {
		o.RootCAs = pool
	}
}

// WithTLSMinVersion sets the lowest protocol version offered, TLS 1.2 when unset.
func WithTLSMinVersion(v uint16) Option {
	return func(o *Options) {
		if o.TLSConfig == nil {
			o.TLSConfig = &tls.Config{}
		}
		o.TLSConfig.MinVersion = v
	}
}

func WithTLSConfig(c *tls.Config) Option {
	return func(o *Options) {
		o.TLSConfig = c.Clone()
	}
}

func WithUserAgent(ua string) Option {
	return func(o *Options) {
		o.UserAgent = ua
	}
}

// WithMaxBodySize bounds the response body, n <= 0 means unlimited.
func WithMaxBodySize(n int64) Option {
	return func(o *Options) {
		o.MaxBodySize = n
	}
}
