package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/frankli0324/go-httpconn/internal/model"
	"github.com/frankli0324/go-httpconn/internal/transport/chunked"
)

// HTTP1 reads and writes HTTP/1.0 and HTTP/1.1 messages. The zero value
// is usable.
type HTTP1 struct {
	// MaxBodySize bounds a response body, 0 means unlimited.
	MaxBodySize int64
	// WroteHeaders, when set, runs once the request head is flushed.
	WroteHeaders func()
}

var ErrBodyTooLarge = &ProtocolError{"response body too large"}

func (t HTTP1) Write(w io.Writer, r *model.PreparedRequest) error {
	bw := bufio.NewWriter(w) // default bufsize is 4096
	if err := t.writeHeader(bw, r); err != nil {
		return err
	}
	if t.WroteHeaders != nil {
		t.WroteHeaders()
	}
	if len(r.Body) == 0 {
		return nil
	}
	if _, err := bw.Write(r.Body); err != nil {
		return err
	}
	return bw.Flush()
}

// writeHeader writes the request line and header part of a request
// e.g.:
//
//	GET / HTTP/1.1\r\n
//	Host: www.google.com\r\n
//	X-Xx-Yy: cccccc\r\n
//	\r\n
func (t HTTP1) writeHeader(header *bufio.Writer, r *model.PreparedRequest) error {
	header.WriteString(string(r.Method))
	header.WriteByte(' ')
	header.WriteString(r.Path)
	header.WriteByte(' ')
	header.WriteString(r.Version.String())
	header.WriteString("\r\n")

	header.WriteString("Host: ")
	header.WriteString(r.HeaderHost)
	header.WriteString("\r\n")
	if r.ContentLength != -1 {
		header.WriteString("Content-Length: ")
		header.WriteString(strconv.FormatInt(r.ContentLength, 10))
		header.WriteString("\r\n")
	}
	for _, f := range r.Header {
		header.WriteString(f.Name)
		header.WriteString(": ")
		header.WriteString(f.Value)
		header.WriteString("\r\n")
	}
	if _, err := header.WriteString("\r\n"); err != nil {
		return err
	}
	return header.Flush()
}

// Read parses one complete response from r into resp, body included.
// Interim 1xx responses other than 101 are skipped.
func (t HTTP1) Read(r *bufio.Reader, req *model.PreparedRequest, resp *model.Response) error {
	tp := textproto.NewReader(r)
	for {
		*resp = model.Response{}
		if err := t.readHead(tp, resp); err != nil {
			return err
		}
		if resp.StatusCode >= 200 || resp.StatusCode == http.StatusSwitchingProtocols {
			break
		}
	}
	return t.readTransfer(r, req, resp)
}

func (t HTTP1) readHead(tp *textproto.Reader, resp *model.Response) error {
	line, err := tp.ReadLine()
	if err != nil {
		return unexpectedEOF(err)
	}
	proto, status, ok := strings.Cut(line, " ")
	if !ok {
		return malformed("malformed HTTP response %q", line)
	}
	if _, _, ok := http.ParseHTTPVersion(proto); !ok {
		return malformed("malformed HTTP version %q", proto)
	}
	resp.Proto = proto
	resp.Status = strings.TrimLeft(status, " ")

	statusCode, _, _ := strings.Cut(resp.Status, " ")
	if len(statusCode) != 3 {
		return malformed("malformed HTTP status code %q", statusCode)
	}
	resp.StatusCode, err = strconv.Atoi(statusCode)
	if err != nil || resp.StatusCode < 100 {
		return malformed("malformed HTTP status code %q", statusCode)
	}

	// Parse the response headers.
	mimeHeader, err := tp.ReadMIMEHeader()
	if err != nil {
		var perr textproto.ProtocolError
		if errors.As(err, &perr) {
			return malformed("%s", perr.Error())
		}
		return unexpectedEOF(err)
	}
	resp.Header = http.Header(mimeHeader)
	return nil
}

func (t HTTP1) readTransfer(r *bufio.Reader, req *model.PreparedRequest, resp *model.Response) error {
	contentLens := resp.Header["Content-Length"]

	// Hardening against HTTP request smuggling, taken from standard library
	if len(contentLens) > 1 {
		// Per RFC 7230 Section 3.3.2
		first := textproto.TrimString(contentLens[0])
		for _, ct := range contentLens[1:] {
			if first != textproto.TrimString(ct) {
				return malformed("http: message cannot contain multiple Content-Length headers; got %q", contentLens)
			}
		}

		// deduplicate Content-Length
		resp.Header.Del("Content-Length")
		resp.Header.Add("Content-Length", first)

		contentLens = resp.Header["Content-Length"]
	}

	if !bodyAllowed(req, resp.StatusCode) {
		resp.ContentLength = 0
		return nil
	}

	if te := resp.Header.Get("Transfer-Encoding"); te != "" {
		if !strings.EqualFold(textproto.TrimString(te), "chunked") {
			return malformed("unsupported transfer encoding %q", te)
		}
		body, err := t.readBody(chunked.NewChunkedReader(r))
		if err != nil {
			return err
		}
		resp.Header.Del("Content-Length")
		resp.ContentLength, resp.Body = int64(len(body)), body
		return nil
	}

	if len(contentLens) > 0 {
		cl, err := strconv.ParseUint(textproto.TrimString(contentLens[0]), 10, 63)
		if err != nil {
			return malformed("bad Content-Length %q", contentLens[0])
		}
		if t.MaxBodySize > 0 && int64(cl) > t.MaxBodySize {
			return ErrBodyTooLarge
		}
		// the buffer grows with what actually arrives, not with what the
		// header claims
		body, err := t.readBody(io.LimitReader(r, int64(cl)))
		if err != nil {
			return err
		}
		if uint64(len(body)) != cl {
			return io.ErrUnexpectedEOF
		}
		resp.ContentLength, resp.Body = int64(cl), body
		return nil
	}

	// no framing, the body runs until the server closes the connection
	body, err := t.readBody(r)
	if err != nil {
		return err
	}
	resp.ContentLength, resp.Body = int64(len(body)), body
	return nil
}

func (t HTTP1) readBody(r io.Reader) ([]byte, error) {
	if t.MaxBodySize <= 0 {
		b, err := io.ReadAll(r)
		return b, unexpectedEOF(err)
	}
	b, err := io.ReadAll(io.LimitReader(r, t.MaxBodySize+1))
	if err != nil {
		return nil, unexpectedEOF(err)
	}
	if int64(len(b)) > t.MaxBodySize {
		return nil, ErrBodyTooLarge
	}
	return b, nil
}

func bodyAllowed(req *model.PreparedRequest, status int) bool {
	if req != nil && req.Method == model.MethodHead {
		return false
	}
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	if errors.Is(err, chunked.ErrMalformed) {
		return &ProtocolError{err.Error()}
	}
	return err
}

// ProtocolError reports a response that does not follow HTTP/1 framing,
// as opposed to a failure of the underlying stream.
type ProtocolError struct {
	ErrorString string
}

func (pe *ProtocolError) Error() string { return pe.ErrorString }

func malformed(format string, args ...interface{}) error {
	return &ProtocolError{fmt.Sprintf(format, args...)}
}
