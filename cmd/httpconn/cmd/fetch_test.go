package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-httpconn/internal"
	"github.com/frankli0324/go-httpconn/internal/model"
)

func TestParseTarget(t *testing.T) {
	cases := map[string]struct {
		raw    string
		plain  bool
		target model.Target
		secure bool
	}{
		"BareHost":  {raw: "httpbin.org", target: model.Target{Host: "httpbin.org"}, secure: true},
		"HostPath":  {raw: "httpbin.org/get?a=1", target: model.Target{Host: "httpbin.org", Path: "/get?a=1"}, secure: true},
		"PlainFlag": {raw: "localhost:8080/x", plain: true, target: model.Target{Host: "localhost", Port: "8080", Path: "/x"}},
		"HTTPURL":   {raw: "http://example.com/", target: model.Target{Host: "example.com", Path: "/"}},
		"HTTPSURL":  {raw: "https://[::1]:8443/a", target: model.Target{Host: "::1", Port: "8443", Path: "/a"}, secure: true},
		"ForceOff":  {raw: "https://example.com", plain: true, target: model.Target{Host: "example.com"}},
	}
	for name, cas := range cases {
		tCase := cas
		t.Run(name, func(t *testing.T) {
			target, secure, err := parseTarget(tCase.raw, tCase.plain)
			require.NoError(t, err)
			assert.Equal(t, tCase.target, target)
			assert.Equal(t, tCase.secure, secure)
		})
	}

	for _, raw := range []string{"ftp://example.com", "https://", "http://%zz"} {
		_, _, err := parseTarget(raw, false)
		assert.Error(t, err, raw)
	}
}

func TestParseHeader(t *testing.T) {
	name, value, err := parseHeader("Content-Type:  application/json ")
	require.NoError(t, err)
	assert.Equal(t, "Content-Type", name)
	assert.Equal(t, "application/json", value)

	name, value, err = parseHeader("X-Empty:")
	require.NoError(t, err)
	assert.Equal(t, "X-Empty", name)
	assert.Empty(t, value)

	for _, h := range []string{"novalue", ": v", ""} {
		_, _, err := parseHeader(h)
		assert.Error(t, err, h)
	}
}

func TestClassify(t *testing.T) {
	code := func(err error) int { return err.(*exitError).code }
	assert.Equal(t, ExitParseError, code(classify(internal.ErrParse)))
	assert.Equal(t, ExitConfigError, code(classify(internal.ErrTLSConfig)))
	assert.Equal(t, ExitUsageError, code(classify(internal.ErrInvalidMethod)))
	assert.Equal(t, ExitNetworkError, code(classify(internal.ErrConnect)))
	assert.Equal(t, ExitNetworkError, code(classify(internal.ErrTLSHandshake)))
}

func TestBuildRequest(t *testing.T) {
	methodFlag, headerFlags, dataFlag, requestIDFlag = "put", []string{"X-A: 1"}, "body", true
	t.Cleanup(func() {
		methodFlag, headerFlags, dataFlag, requestIDFlag = "get", nil, "", false
	})

	c := internal.NewPlain(model.Target{Host: "h"})
	require.NoError(t, buildRequest(c, nil))
	req := c.Request()
	assert.Equal(t, model.MethodPut, req.Method)
	assert.Equal(t, "1", req.Header.Get("X-A"))
	assert.Len(t, req.Header.Get("X-Request-Id"), 36)
	assert.Equal(t, []byte("body"), req.Body)

	require.NoError(t, c.Close())
	err := buildRequest(c, nil)
	assert.ErrorIs(t, err, internal.ErrState)
	var exit *exitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, ExitUsageError, exit.code)
}

func TestRender(t *testing.T) {
	buf := &bytes.Buffer{}
	render(buf, &model.Response{
		Proto: "HTTP/1.1", Status: "200 OK", StatusCode: 200,
		Header: http.Header{"B": {"2"}, "A": {"1"}},
		Body:   []byte("body"),
	}, true)
	assert.Equal(t, "HTTP/1.1 200 OK\nA: 1\nB: 2\n\nbody\n", buf.String())
}

func TestFetchCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"method":%q,"id":%q,"probe":%q}`, r.Method, r.Header.Get("X-Request-Id"), r.Header.Get("X-Probe"))
	}))
	defer srv.Close()

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(&bytes.Buffer{})
	code := run([]string{"fetch", "--plain", "-X", "post", "-H", "X-Probe: yes", "--request-id",
		"--extract", "@this", "--no-color", strings.TrimPrefix(srv.URL, "http://") + "/"})
	require.Equal(t, ExitSuccess, code)

	body := out.String()
	assert.Contains(t, body, `"method":"POST"`)
	assert.Contains(t, body, `"probe":"yes"`)
	assert.Regexp(t, `"id":"[0-9a-f-]{36}"`, body)
}

func TestFetchCommandUsage(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	assert.Equal(t, ExitUsageError, run([]string{"fetch", "ftp://example.com"}))
}
