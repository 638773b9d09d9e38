package internal

import (
	"context"

	"github.com/frankli0324/go-httpconn/internal/model"
)

// PlainConn exchanges one request and response over a bare TCP stream.
type PlainConn struct {
	*conn
}

// NewPlain returns an unconnected plain connection, zero fields of target
// default to example.com:80 and "/" over HTTP/1.1.
func NewPlain(target model.Target, opts ...Option) *PlainConn {
	return &PlainConn{newConn(target, false, opts)}
}

// DialPlain creates a plain connection and connects it.
func DialPlain(ctx context.Context, target model.Target, opts ...Option) (*PlainConn, error) {
	c := NewPlain(target, opts...)
	if err := c.Connect(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}
