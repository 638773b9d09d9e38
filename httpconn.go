// Package httpconn performs one HTTP/1 exchange over a single connection
// it owns: resolve, connect, optionally handshake TLS, write one request,
// read one response, shut down.
package httpconn

import (
	"github.com/frankli0324/go-httpconn/internal"
	"github.com/frankli0324/go-httpconn/internal/model"
)

type Conn = internal.Conn
type PlainConn = internal.PlainConn
type SecureConn = internal.SecureConn
type State = internal.State
type Error = internal.Error

type Target = model.Target
type Version = model.Version
type Method = model.Method
type Header = model.Header
type Field = model.Field
type Request = model.Request
type PreparedRequest = model.PreparedRequest
type Response = model.Response

const (
	HTTP10 = model.HTTP10
	HTTP11 = model.HTTP11

	MethodGet     = model.MethodGet
	MethodPost    = model.MethodPost
	MethodPut     = model.MethodPut
	MethodDelete  = model.MethodDelete
	MethodHead    = model.MethodHead
	MethodPatch   = model.MethodPatch
	MethodOptions = model.MethodOptions
)

const (
	Unconnected  = internal.Unconnected
	Connecting   = internal.Connecting
	Connected    = internal.Connected
	Handshaking  = internal.Handshaking
	Ready        = internal.Ready
	ShuttingDown = internal.ShuttingDown
	Closed       = internal.Closed
	Failed       = internal.Failed
)

var (
	ErrResolution     = internal.ErrResolution
	ErrConnect        = internal.ErrConnect
	ErrTLSConfig      = internal.ErrTLSConfig
	ErrTLSHandshake   = internal.ErrTLSHandshake
	ErrIO             = internal.ErrIO
	ErrParse          = internal.ErrParse
	ErrShutdown       = internal.ErrShutdown
	ErrInvalidMethod  = internal.ErrInvalidMethod
	ErrInvalidRequest = internal.ErrInvalidRequest
	ErrState          = internal.ErrState
)

var (
	NewPlain    = internal.NewPlain
	DialPlain   = internal.DialPlain
	NewSecure   = internal.NewSecure
	DialSecure  = internal.DialSecure
	ParseMethod = model.ParseMethod
)
