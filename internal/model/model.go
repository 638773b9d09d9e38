package model

import (
	"bytes"
	"net"
	"net/http"
	"strconv"
	"strings"
)

type Version int

const (
	HTTP10 Version = 10
	HTTP11 Version = 11
)

func (v Version) Valid() bool {
	return v == HTTP10 || v == HTTP11
}

func (v Version) String() string {
	if v == HTTP10 {
		return "HTTP/1.0"
	}
	return "HTTP/1.1"
}

type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodPatch   Method = "PATCH"
	MethodOptions Method = "OPTIONS"
)

var methods = map[string]Method{
	"get": MethodGet, "post": MethodPost, "put": MethodPut, "delete": MethodDelete,
	"head": MethodHead, "patch": MethodPatch, "options": MethodOptions,
}

// ParseMethod maps a case-insensitive verb onto the supported set.
func ParseMethod(s string) (Method, bool) {
	m, ok := methods[strings.ToLower(s)]
	return m, ok
}

// expectsBody reports whether an empty body should still be framed with
// "Content-Length: 0", which some servers require before they answer.
func (m Method) expectsBody() bool {
	return m == MethodPost || m == MethodPut || m == MethodPatch
}

// Target is where a connection goes and what it asks for. Host and Port
// are fixed once the connection is established, Path and Version only
// shape the request line.
type Target struct {
	Host    string
	Port    string
	Path    string
	Version Version
}

const (
	DefaultHost       = "example.com"
	DefaultPath       = "/"
	DefaultPlainPort  = "80"
	DefaultSecurePort = "443"
)

func (t *Target) SetHost(host string) *Target  { t.Host = host; return t }
func (t *Target) SetPort(port string) *Target  { t.Port = port; return t }
func (t *Target) SetPath(path string) *Target  { t.Path = path; return t }
func (t *Target) SetVersion(v Version) *Target { t.Version = v; return t }

func (t Target) HostPort() string {
	return net.JoinHostPort(strings.Trim(t.Host, "[]"), t.Port)
}

func defaultPort(secure bool) string {
	if secure {
		return DefaultSecurePort
	}
	return DefaultPlainPort
}

// WithDefaults fills every zero field.
func (t Target) WithDefaults(secure bool) Target {
	if t.Host == "" {
		t.Host = DefaultHost
	}
	if t.Port == "" {
		t.Port = defaultPort(secure)
	}
	if t.Path == "" {
		t.Path = DefaultPath
	}
	if t.Version == 0 {
		t.Version = HTTP11
	}
	return t
}

// HostHeader is the value sent in the Host header, the port is omitted
// when it is the scheme default.
func (t Target) HostHeader(secure bool) string {
	host := t.Host
	if strings.Contains(host, ":") { // ipv6 literal
		host = "[" + strings.Trim(host, "[]") + "]"
	}
	if t.Port == "" || t.Port == defaultPort(secure) {
		return host
	}
	return host + ":" + t.Port
}

type Request struct {
	Method  Method
	Path    string
	Version Version
	Header  Header
	Body    []byte
}

type Response struct {
	Proto      string
	Status     string
	StatusCode int
	Header     http.Header

	ContentLength int64
	Body          []byte
}

// String renders the whole response the way it came off the wire, with
// headers sorted by name.
func (r *Response) String() string {
	if r == nil {
		return ""
	}
	buf := &bytes.Buffer{}
	buf.WriteString(r.Proto)
	buf.WriteByte(' ')
	if r.Status != "" {
		buf.WriteString(r.Status)
	} else {
		buf.WriteString(strconv.Itoa(r.StatusCode))
	}
	buf.WriteString("\r\n")
	r.Header.Write(buf)
	buf.WriteString("\r\n")
	buf.Write(r.Body)
	return buf.String()
}
