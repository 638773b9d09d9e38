package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// PreparedRequest is a validated snapshot of a [Request], ready to be
// serialized. Host and Content-Length are lifted out of the header list.
type PreparedRequest struct {
	*Request

	Header     Header
	HeaderHost string

	ContentLength int64
}

var (
	ErrEmptyHost       = errors.New("empty host")
	ErrConflictingSize = errors.New("conflicting value between body size and content-length request header")
)

func (r *Request) Prepare() (*PreparedRequest, error) {
	if _, ok := ParseMethod(string(r.Method)); !ok {
		return nil, fmt.Errorf("unsupported method %q", r.Method)
	}
	if !r.Version.Valid() {
		return nil, fmt.Errorf("unsupported http version %d", r.Version)
	}
	if err := validPath(r.Path); err != nil {
		return nil, err
	}

	headers := make(Header, 0, len(r.Header))
	host := ""
	cl := int64(-1)
	// user defined headers has higher priority
	for _, f := range r.Header {
		if !httpguts.ValidHeaderFieldName(f.Name) {
			return nil, fmt.Errorf("invalid header field name %q", f.Name)
		}
		if !httpguts.ValidHeaderFieldValue(f.Value) {
			return nil, fmt.Errorf("invalid header field value for %q", f.Name)
		}
		switch strings.ToLower(f.Name) {
		case "host":
			host = f.Value
		case "content-length":
			v, err := strconv.ParseInt(f.Value, 10, 64)
			if err != nil || v < 0 {
				return nil, fmt.Errorf("invalid content-length %q", f.Value)
			}
			cl = v
		default:
			headers = append(headers, f)
		}
	}
	if host == "" {
		return nil, ErrEmptyHost
	}
	if !httpguts.ValidHostHeader(host) {
		return nil, fmt.Errorf("invalid host header %q", host)
	}

	pr := &PreparedRequest{
		Request: r,

		Header:        headers,
		HeaderHost:    host,
		ContentLength: -1,
	}
	if r.Body != nil || r.Method.expectsBody() {
		pr.ContentLength = int64(len(r.Body))
	}
	if cl != -1 && pr.ContentLength != -1 && pr.ContentLength != cl {
		return nil, ErrConflictingSize
	}
	if cl > 0 && pr.ContentLength == -1 {
		return nil, ErrConflictingSize
	}
	return pr, nil
}

// validPath accepts origin-form ("/a?b") and asterisk-form ("*") targets.
func validPath(p string) error {
	if p == "*" {
		return nil
	}
	if !strings.HasPrefix(p, "/") {
		return fmt.Errorf("request target %q must start with /", p)
	}
	for i := 0; i < len(p); i++ {
		if c := p[i]; c <= ' ' || c == 0x7f {
			return fmt.Errorf("request target %q contains invalid byte %#x", p, c)
		}
	}
	return nil
}
