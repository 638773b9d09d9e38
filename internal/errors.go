package internal

import "strings"

// Error is returned by every connection operation. The kind is matched
// with [errors.Is] against the Err values below, the cause is reached
// through Unwrap.
type Error struct {
	kind  string
	Stage string // resolve, connect, tls handshake, write, read, close...
	Addr  string // host:port when known
	error
}

func (e *Error) Error() string {
	b := strings.Builder{}
	b.WriteString("httpconn: ")
	if e.Stage != "" {
		b.WriteString(e.Stage)
	} else {
		b.WriteString(e.kind)
	}
	if e.Addr != "" {
		b.WriteByte(' ')
		b.WriteString(e.Addr)
	}
	if e.error != nil {
		b.WriteString(": ")
		b.WriteString(e.error.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.error
}

func (e *Error) Is(err error) bool {
	if err, ok := err.(*Error); ok {
		return e.kind == err.kind
	}
	return false
}

func (e *Error) wrap(stage, addr string, err error) error {
	return &Error{e.kind, stage, addr, err}
}

func reg(kind string) *Error { return &Error{kind: kind} }

var (
	ErrResolution     = reg("resolution error")
	ErrConnect        = reg("connect error")
	ErrTLSConfig      = reg("tls config error")
	ErrTLSHandshake   = reg("tls handshake error")
	ErrIO             = reg("io error")
	ErrParse          = reg("parse error")
	ErrShutdown       = reg("shutdown error")
	ErrInvalidMethod  = reg("invalid method")
	ErrInvalidRequest = reg("invalid request")
	ErrState          = reg("invalid state")
)
