package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(method Method) *Request {
	return &Request{
		Method:  method,
		Path:    "/",
		Version: HTTP11,
		Header:  Header{{"Host", "example.com"}, {"Accept", "*/*"}},
	}
}

func TestPrepareLiftsHostAndLength(t *testing.T) {
	r := newRequest(MethodGet)
	pr, err := r.Prepare()
	require.NoError(t, err)
	assert.Equal(t, "example.com", pr.HeaderHost)
	assert.Equal(t, int64(-1), pr.ContentLength, "GET without body has no Content-Length")
	assert.Equal(t, Header{{"Accept", "*/*"}}, pr.Header)
	assert.Len(t, r.Header, 2, "request header is left untouched")
}

func TestPrepareContentLength(t *testing.T) {
	r := newRequest(MethodPost)
	pr, err := r.Prepare()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pr.ContentLength, "POST always carries a length")

	r.Body = []byte("hello")
	pr, err = r.Prepare()
	require.NoError(t, err)
	assert.Equal(t, int64(5), pr.ContentLength)

	r.Header.Set("Content-Length", "5")
	_, err = r.Prepare()
	require.NoError(t, err, "matching explicit length")

	r.Header.Set("Content-Length", "4")
	_, err = r.Prepare()
	assert.ErrorIs(t, err, ErrConflictingSize)

	g := newRequest(MethodGet)
	g.Header.Set("Content-Length", "3")
	_, err = g.Prepare()
	assert.ErrorIs(t, err, ErrConflictingSize, "length without a body")
}

func TestPrepareRejects(t *testing.T) {
	cases := map[string]func(r *Request){
		"Method":       func(r *Request) { r.Method = "FETCH" },
		"Version":      func(r *Request) { r.Version = 20 },
		"RelativePath": func(r *Request) { r.Path = "index.html" },
		"PathSpace":    func(r *Request) { r.Path = "/a b" },
		"HeaderName":   func(r *Request) { r.Header.Add("Bad Name", "v") },
		"HeaderValue":  func(r *Request) { r.Header.Add("X", "a\r\nInjected: 1") },
		"NoHost":       func(r *Request) { r.Header.Del("Host") },
		"BadHost":      func(r *Request) { r.Header.Set("Host", "exa mple.com") },
		"BadLength":    func(r *Request) { r.Header.Set("Content-Length", "-1") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := newRequest(MethodGet)
			mutate(r)
			_, err := r.Prepare()
			assert.Error(t, err)
		})
	}

	r := newRequest(MethodOptions)
	r.Path = "*"
	_, err := r.Prepare()
	assert.NoError(t, err, "asterisk-form")
}
