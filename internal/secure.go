package internal

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/frankli0324/go-httpconn/internal/dialer"
	"github.com/frankli0324/go-httpconn/internal/model"
	"github.com/frankli0324/go-httpconn/utils/nettools"
)

// SecureConn exchanges one request and response over TLS. The peer
// certificate chain and host name are always verified, and the target
// host is sent as SNI.
type SecureConn struct {
	*conn
	config *tls.Config
	tls    *tls.Conn
}

// NewSecure returns an unconnected secure connection, zero fields of
// target default to example.com:443 and "/" over HTTP/1.1.
func NewSecure(target model.Target, opts ...Option) *SecureConn {
	c := &SecureConn{conn: newConn(target, true, opts)}
	c.prepare = c.prepareSession
	c.handshake = c.doHandshake
	c.closeSession = c.closeNotify
	return c
}

// DialSecure creates a secure connection, connects it and completes the
// handshake.
func DialSecure(ctx context.Context, target model.Target, opts ...Option) (*SecureConn, error) {
	c := NewSecure(target, opts...)
	if err := c.Connect(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// ConnectionState reports the negotiated session, ok is false until the
// handshake completed.
func (c *SecureConn) ConnectionState() (state tls.ConnectionState, ok bool) {
	if c.tls == nil {
		return state, false
	}
	return c.tls.ConnectionState(), true
}

func (c *SecureConn) prepareSession() error {
	roots := c.opts.RootCAs
	if roots == nil {
		pool, err := c.opts.Trust.Pool()
		if err != nil {
			return ErrTLSConfig.wrap("load roots", "", err)
		}
		roots = pool
	}
	config, err := dialer.ClientConfig(c.opts.TLSConfig, roots, c.target.Host)
	if err != nil {
		return ErrTLSConfig.wrap("tls config", c.addr(), err)
	}
	c.config = config
	return nil
}

func (c *SecureConn) doHandshake(ctx context.Context, tr tracer) error {
	tr.tlsHandshakeStart()
	hctx, cancel := c.step(ctx)
	tc, err := dialer.Handshake(hctx, c.stream, c.config)
	cancel()
	tr.tlsHandshakeDone(tc, err)
	if err != nil {
		return ErrTLSHandshake.wrap("tls handshake", c.addr(), ctxErr(ctx, err))
	}
	c.tls, c.rw = tc, tc
	state := tc.ConnectionState()
	c.log.Debug("tls handshake done",
		"sni", c.config.ServerName,
		"version", tls.VersionName(state.Version),
		"cipher", tls.CipherSuiteName(state.CipherSuite))
	return nil
}

// closeNotify sends close_notify and waits, bounded by the shutdown
// timeout, for the peer's. A peer that just goes away is fine.
func (c *SecureConn) closeNotify() error {
	if c.tls == nil {
		return nil
	}
	if c.opts.ShutdownTimeout > 0 {
		c.tls.SetDeadline(time.Now().Add(c.opts.ShutdownTimeout))
	}
	if err := c.tls.CloseWrite(); err != nil && !benignShutdown(err) {
		return fmt.Errorf("sending close_notify: %w", err)
	}
	if _, err := io.Copy(io.Discard, c.tls); err != nil && !benignShutdown(err) {
		return fmt.Errorf("waiting for close_notify: %w", err)
	}
	return nil
}

func benignShutdown(err error) bool {
	return errors.Is(err, io.EOF) || nettools.IsClosed(err) || nettools.IsPeerGone(err)
}
