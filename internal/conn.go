package internal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/frankli0324/go-httpconn/internal/dialer"
	"github.com/frankli0324/go-httpconn/internal/model"
	"github.com/frankli0324/go-httpconn/internal/transport"
	"github.com/frankli0324/go-httpconn/utils/logutil"
)

// Conn is the life-cycle shared by [PlainConn] and [SecureConn]: connect
// once, write one request, read one response, close.
type Conn interface {
	Connect(ctx context.Context) error
	Write(ctx context.Context) error
	Read(ctx context.Context) (*model.Response, error)
	Close() error

	SetMethod(method string) error
	SetTarget(path string) error
	SetVersion(v model.Version) error
	SetHeader(name, value string) error
	AddHeader(name, value string) error
	DelHeader(name string) error
	SetBody(body []byte) error

	Target() model.Target
	Request() *model.Request
	Response() *model.Response
	State() State
	String() string
}

var aLongTimeAgo = time.Unix(1, 0)

// conn carries everything both variants share. It is not safe for
// concurrent use.
type conn struct {
	target model.Target
	opts   Options
	log    *slog.Logger
	dialer dialer.Dialer
	codec  transport.HTTP1

	state State
	// the transport, owned exclusively: rw is stream itself for plain
	// connections and the TLS session on top of it for secure ones
	stream *dialer.Stream
	rw     net.Conn
	br     *bufio.Reader

	req      *model.Request
	prepared *model.PreparedRequest
	resp     *model.Response

	// prepare runs before any I/O, handshake upgrades the stream. Both are
	// nil for plain connections.
	prepare   func() error
	handshake func(ctx context.Context, tr tracer) error
	// closeSession ends the session above the stream before it is shut down
	closeSession func() error
}

func newConn(target model.Target, secure bool, opts []Option) *conn {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	target = target.WithDefaults(secure)
	c := &conn{
		target: target,
		opts:   o,
		log:    logutil.NoopIfNil(o.Logger).With("addr", target.HostPort(), "secure", secure),
		dialer: o.Dialer,
		codec:  transport.HTTP1{MaxBodySize: o.MaxBodySize},
		req: &model.Request{
			Method:  model.MethodGet,
			Path:    target.Path,
			Version: target.Version,
		},
	}
	if c.dialer == nil {
		c.dialer = &dialer.CoreDialer{ResolveConfig: o.ResolveConfig}
	}
	c.req.Header.Set("Host", target.HostHeader(secure))
	c.req.Header.Set("User-Agent", o.UserAgent)
	return c
}

func (c *conn) addr() string { return c.target.HostPort() }

func (c *conn) Target() model.Target        { return c.target }
func (c *conn) Request() *model.Request     { return c.req }
func (c *conn) Response() *model.Response   { return c.resp }
func (c *conn) State() State                { return c.state }
func (c *conn) stateErr(stage string) error { return c.stateErrf(stage, "connection is %s", c.state) }

func (c *conn) stateErrf(stage, format string, args ...interface{}) error {
	return ErrState.wrap(stage, c.addr(), fmt.Errorf(format, args...))
}

// String renders the last response read, for diagnostics.
func (c *conn) String() string {
	return c.resp.String()
}

// step bounds one blocking step by the configured timeout.
func (c *conn) step(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.Timeout > 0 {
		return context.WithTimeout(ctx, c.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

// Connect resolves the target, opens the TCP stream to the first endpoint
// and, for secure connections, runs the TLS handshake. On failure the
// connection is Failed and its transport is already released.
func (c *conn) Connect(ctx context.Context) (err error) {
	if c.state != Unconnected {
		return c.stateErr("connect")
	}
	tr := traceFrom(ctx)
	ctx = shadowStandardClientTrace(ctx)
	c.state = Connecting
	defer func() {
		if err != nil {
			c.fail(err)
		}
	}()

	if c.prepare != nil {
		if err := c.prepare(); err != nil {
			return err
		}
	}

	c.log.Debug("resolving")
	tr.dnsStart(c.target.Host)
	rctx, cancel := c.step(ctx)
	eps, err := c.dialer.Resolve(rctx, c.target.Host, c.target.Port)
	cancel()
	if err == nil && len(eps) == 0 {
		err = dialer.ErrNoAddresses
	}
	tr.dnsDone(eps, err)
	if err != nil {
		return ErrResolution.wrap("resolve", c.addr(), ctxErr(ctx, err))
	}

	// a single attempt on the first endpoint
	ep := eps[0].String()
	c.log.Debug("connecting", "endpoint", ep)
	tr.connectStart(ep)
	dctx, cancel := c.step(ctx)
	raw, err := c.dialer.DialTCP(dctx, eps[0])
	cancel()
	tr.connectDone(ep, err)
	if err != nil {
		return ErrConnect.wrap("connect", ep, ctxErr(ctx, err))
	}
	c.stream = dialer.NewStream(raw, c.log)
	c.rw = c.stream
	c.state = Connected

	if c.handshake != nil {
		c.state = Handshaking
		if err := c.handshake(ctx, tr); err != nil {
			return err
		}
	}
	c.br = bufio.NewReader(c.rw)
	c.state = Ready
	c.log.Debug("connection ready")
	return nil
}

// fail moves the connection to Failed and releases its transport.
func (c *conn) fail(cause error) {
	c.state = Failed
	c.log.Debug("connection failed", "err", cause)
	if c.stream != nil {
		if err := c.stream.Shutdown(); err != nil {
			c.log.Debug("releasing failed connection", "err", err)
		}
	}
}

func (c *conn) SetMethod(method string) error {
	if err := c.mutable("set method"); err != nil {
		return err
	}
	m, ok := model.ParseMethod(method)
	if !ok {
		return ErrInvalidMethod.wrap("set method", "", fmt.Errorf("unsupported method %q", method))
	}
	c.req.Method = m
	return nil
}

// SetTarget changes the request target path, not the host connected to.
func (c *conn) SetTarget(path string) error {
	if err := c.mutable("set target"); err != nil {
		return err
	}
	c.req.Path = path
	return nil
}

func (c *conn) SetVersion(v model.Version) error {
	if err := c.mutable("set version"); err != nil {
		return err
	}
	if !v.Valid() {
		return ErrInvalidRequest.wrap("set version", "", fmt.Errorf("unsupported http version %d", v))
	}
	c.req.Version = v
	return nil
}

func (c *conn) SetHeader(name, value string) error {
	if err := c.mutable("set header"); err != nil {
		return err
	}
	c.req.Header.Set(name, value)
	return nil
}

func (c *conn) AddHeader(name, value string) error {
	if err := c.mutable("add header"); err != nil {
		return err
	}
	c.req.Header.Add(name, value)
	return nil
}

func (c *conn) DelHeader(name string) error {
	if err := c.mutable("delete header"); err != nil {
		return err
	}
	c.req.Header.Del(name)
	return nil
}

// SetBody sets the request body, Content-Length follows from its size.
func (c *conn) SetBody(body []byte) error {
	if err := c.mutable("set body"); err != nil {
		return err
	}
	c.req.Body = body
	return nil
}

// mutable rejects request changes once the request is on the wire.
func (c *conn) mutable(stage string) error {
	if c.prepared != nil {
		return c.stateErrf(stage, "request already written")
	}
	switch c.state {
	case Failed, ShuttingDown, Closed:
		return c.stateErr(stage)
	}
	return nil
}

// Write serializes the request and writes all of it. Only one request is
// ever written on a connection.
func (c *conn) Write(ctx context.Context) error {
	if c.state != Ready {
		return c.stateErr("write")
	}
	if c.prepared != nil {
		return c.stateErrf("write", "request already written")
	}
	pr, err := c.req.Prepare()
	if err != nil {
		return ErrInvalidRequest.wrap("write", c.addr(), err)
	}

	tr := traceFrom(ctx)
	defer c.deadline(ctx)()
	codec := c.codec
	codec.WroteHeaders = tr.wroteHeaders
	err = codec.Write(c.rw, pr)
	tr.wroteRequest(err)
	if err != nil {
		c.state = Failed
		return ErrIO.wrap("write", c.addr(), ctxErr(ctx, err))
	}
	c.prepared = pr
	c.log.Debug("request written", "method", pr.Method, "target", pr.Path)
	return nil
}

// Read blocks until the whole response to the written request arrived.
func (c *conn) Read(ctx context.Context) (*model.Response, error) {
	if c.state != Ready {
		return nil, c.stateErr("read")
	}
	if c.prepared == nil {
		return nil, c.stateErrf("read", "no request written")
	}
	if c.resp != nil {
		return nil, c.stateErrf("read", "response already read")
	}

	tr := traceFrom(ctx)
	defer c.deadline(ctx)()
	if tr.wantsFirstByte() {
		if _, err := c.br.Peek(1); err != nil {
			c.state = Failed
			return nil, ErrIO.wrap("read", c.addr(), ctxErr(ctx, err))
		}
		tr.gotFirstResponseByte()
	}

	resp := &model.Response{}
	if err := c.codec.Read(c.br, c.prepared, resp); err != nil {
		c.state = Failed
		var perr *transport.ProtocolError
		if errors.As(err, &perr) {
			return nil, ErrParse.wrap("read", c.addr(), err)
		}
		return nil, ErrIO.wrap("read", c.addr(), ctxErr(ctx, err))
	}
	c.resp = resp
	c.log.Debug("response read", "status", resp.StatusCode, "length", resp.ContentLength)
	return resp, nil
}

// deadline applies the step timeout and ctx to the transport, the returned
// func detaches ctx again.
func (c *conn) deadline(ctx context.Context) func() {
	var d time.Time
	if c.opts.Timeout > 0 {
		d = time.Now().Add(c.opts.Timeout)
	}
	if cd, ok := ctx.Deadline(); ok && (d.IsZero() || cd.Before(d)) {
		d = cd
	}
	c.rw.SetDeadline(d)
	stop := context.AfterFunc(ctx, func() {
		c.rw.SetDeadline(aLongTimeAgo)
	})
	return func() {
		// When stop reports false the callback may still land after the
		// reset below. That only happens once ctx is done, so the step has
		// failed and the connection is Failed. closeNotify sets its own
		// deadline.
		stop()
		c.rw.SetDeadline(time.Time{})
	}
}

// Close tears the connection down whatever state it is in. Shutting down
// a stream that is not connected is not an error, and a second Close is a
// no-op. Other shutdown failures are logged and returned, never raised.
func (c *conn) Close() error {
	switch c.state {
	case Closed, ShuttingDown:
		return nil
	case Unconnected:
		c.state = Closed
		return nil
	}
	healthy := c.state == Ready
	c.state = ShuttingDown

	var errs []error
	if healthy && c.closeSession != nil {
		if err := c.closeSession(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.stream != nil {
		if err := c.stream.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	c.state = Closed

	if err := errors.Join(errs...); err != nil {
		c.log.Warn("error during stream shutdown", "err", err)
		return ErrShutdown.wrap("close", c.addr(), err)
	}
	c.log.Debug("connection closed")
	return nil
}

// ctxErr prefers the context's error over the i/o timeout it caused.
func ctxErr(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return fmt.Errorf("%w: %w", cerr, err)
	}
	return err
}

var _ Conn = (*PlainConn)(nil)
var _ Conn = (*SecureConn)(nil)
