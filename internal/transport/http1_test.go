package transport_test

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-httpconn/internal/model"
	"github.com/frankli0324/go-httpconn/internal/transport"
)

type tCase struct {
	data []byte
	req  *model.Request
}

func get(path string, header ...model.Field) *model.Request {
	return &model.Request{
		Method:  model.MethodGet,
		Path:    path,
		Version: model.HTTP11,
		Header:  append(model.Header{{"Host", "www.example.com"}}, header...),
	}
}

var reqShouldBe = map[string]tCase{
	"BasicRequest": {
		req:  get("/"),
		data: []byte("GET / HTTP/1.1\r\nHost: www.example.com\r\n\r\n"),
	},
	"QueryNonStandard": {
		req:  get("/test?1=33=1"),
		data: []byte("GET /test?1=33=1 HTTP/1.1\r\nHost: www.example.com\r\n\r\n"),
	},
	"HeaderNotCanonicalized": {
		req:  get("/", model.Field{"x-123-vv", "1"}),
		data: []byte("GET / HTTP/1.1\r\nHost: www.example.com\r\nx-123-vv: 1\r\n\r\n"),
	},
	"HeaderOrderKept": {
		req: &model.Request{
			Method: model.MethodGet, Path: "/", Version: model.HTTP11,
			Header: model.Header{{"B", "2"}, {"Host", "h"}, {"A", "1"}},
		},
		data: []byte("GET / HTTP/1.1\r\nHost: h\r\nB: 2\r\nA: 1\r\n\r\n"),
	},
	"HTTP10": {
		req: &model.Request{
			Method: model.MethodHead, Path: "/", Version: model.HTTP10,
			Header: model.Header{{"Host", "h"}},
		},
		data: []byte("HEAD / HTTP/1.0\r\nHost: h\r\n\r\n"),
	},
	"PostEmptyBody": {
		req: &model.Request{
			Method: model.MethodPost, Path: "/post", Version: model.HTTP11,
			Header: model.Header{{"Host", "h"}},
		},
		data: []byte("POST /post HTTP/1.1\r\nHost: h\r\nContent-Length: 0\r\n\r\n"),
	},
	"PostBody": {
		req: &model.Request{
			Method: model.MethodPost, Path: "/post", Version: model.HTTP11,
			Header: model.Header{{"Host", "h"}, {"Content-Type", "text/plain"}},
			Body:   []byte("hello"),
		},
		data: []byte("POST /post HTTP/1.1\r\nHost: h\r\nContent-Length: 5\r\nContent-Type: text/plain\r\n\r\nhello"),
	},
}

func TestRequestSerialize(t *testing.T) {
	for name, cas := range reqShouldBe {
		tCase := cas
		t.Run(name, func(t *testing.T) {
			pr, err := tCase.req.Prepare()
			require.NoError(t, err)
			buf := &bytes.Buffer{}
			require.NoError(t, transport.HTTP1{}.Write(buf, pr))
			if err := iotest.TestReader(buf, tCase.data); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestWroteHeadersBeforeBody(t *testing.T) {
	pr, err := reqShouldBe["PostBody"].req.Prepare()
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	var atHeaders string
	tr := transport.HTTP1{WroteHeaders: func() { atHeaders = buf.String() }}
	require.NoError(t, tr.Write(buf, pr))
	assert.True(t, strings.HasSuffix(atHeaders, "\r\n\r\n"))
	assert.Equal(t, buf.String(), atHeaders+"hello")
}

func TestWriteError(t *testing.T) {
	pr, err := get("/").Prepare()
	require.NoError(t, err)
	w := &failWriter{}
	assert.ErrorIs(t, transport.HTTP1{}.Write(w, pr), errBroken)
}

var errBroken = errors.New("broken pipe")

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errBroken }

type rCase struct {
	raw    string
	method model.Method
	max    int64

	status int
	header map[string]string
	body   string
}

var respShouldBe = map[string]rCase{
	"ContentLength": {
		raw:    "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\nhello",
		status: 200, header: map[string]string{"Content-Type": "text/plain"}, body: "hello",
	},
	"Chunked": {
		raw:    "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n6;ext=1\r\n world\r\n0\r\nX-Trailer: 1\r\n\r\n",
		status: 200, body: "hello world",
	},
	"UntilClose": {
		raw:    "HTTP/1.0 200 OK\r\nServer: x\r\n\r\nbody until eof",
		status: 200, body: "body until eof",
	},
	"Head": {
		raw:    "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\n",
		method: model.MethodHead, status: 200,
	},
	"NoContent": {
		raw:    "HTTP/1.1 204 No Content\r\n\r\n",
		status: 204,
	},
	"NotModified": {
		raw:    "HTTP/1.1 304 Not Modified\r\nContent-Length: 7\r\n\r\n",
		status: 304,
	},
	"ContinueSkipped": {
		raw:    "HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 201 Created\r\nContent-Length: 2\r\n\r\nok",
		status: 201, body: "ok",
	},
	"DuplicateLength": {
		raw:    "HTTP/1.1 200 OK\r\nContent-Length: 2\r\nContent-Length: 2\r\n\r\nok",
		status: 200, body: "ok",
	},
	"WithinLimit": {
		raw: "HTTP/1.1 200 OK\r\nContent-Length: 3\r\n\r\nabc", max: 3,
		status: 200, body: "abc",
	},
}

func read(raw string, method model.Method, max int64) (*model.Response, error) {
	if method == "" {
		method = model.MethodGet
	}
	req := get("/")
	req.Method = method
	pr, err := req.Prepare()
	if err != nil {
		return nil, err
	}
	resp := &model.Response{}
	br := bufio.NewReader(iotest.HalfReader(strings.NewReader(raw)))
	return resp, transport.HTTP1{MaxBodySize: max}.Read(br, pr, resp)
}

func TestResponseParse(t *testing.T) {
	for name, cas := range respShouldBe {
		tCase := cas
		t.Run(name, func(t *testing.T) {
			resp, err := read(tCase.raw, tCase.method, tCase.max)
			require.NoError(t, err)
			assert.Equal(t, tCase.status, resp.StatusCode)
			for k, v := range tCase.header {
				assert.Equal(t, v, resp.Header.Get(k))
			}
			assert.Equal(t, tCase.body, string(resp.Body))
			assert.Equal(t, int64(len(tCase.body)), resp.ContentLength)
		})
	}
}

func TestResponseStatusLine(t *testing.T) {
	resp, err := read("HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1", resp.Proto)
	assert.Equal(t, "404 Not Found", resp.Status)
	assert.Equal(t, 404, resp.StatusCode)
}

var respMalformed = map[string]rCase{
	"Garbage":           {raw: "garbage\r\n\r\n"},
	"BadVersion":        {raw: "HTTX/1.1 200 OK\r\n\r\n"},
	"LongStatus":        {raw: "HTTP/1.1 2000 OK\r\n\r\n"},
	"StatusNotNumber":   {raw: "HTTP/1.1 abc OK\r\n\r\n"},
	"ConflictingLength": {raw: "HTTP/1.1 200 OK\r\nContent-Length: 2\r\nContent-Length: 3\r\n\r\nok"},
	"BadLength":         {raw: "HTTP/1.1 200 OK\r\nContent-Length: x\r\n\r\n"},
	"UnknownEncoding":   {raw: "HTTP/1.1 200 OK\r\nTransfer-Encoding: gzip\r\n\r\n"},
	"BadChunkSize":      {raw: "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\nzz\r\n"},
	"BadChunkEnd":       {raw: "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n2\r\nokXX0\r\n\r\n"},
	"TooLarge":          {raw: "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello", max: 4},
	"TooLargeChunked":   {raw: "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n0\r\n\r\n", max: 4},
	"TooLargeUntilEOF":  {raw: "HTTP/1.0 200 OK\r\n\r\nhello", max: 4},
}

func TestResponseMalformed(t *testing.T) {
	for name, cas := range respMalformed {
		tCase := cas
		t.Run(name, func(t *testing.T) {
			_, err := read(tCase.raw, "", tCase.max)
			var perr *transport.ProtocolError
			assert.ErrorAs(t, err, &perr)
		})
	}

	_, err := read("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello", "", 4)
	assert.ErrorIs(t, err, transport.ErrBodyTooLarge)
	_, err = read("HTTP/1.1 200 OK\r\nContent-Length: 9223372036854775807\r\n\r\nabc", "", 4)
	assert.ErrorIs(t, err, transport.ErrBodyTooLarge)
}

func TestResponseTruncated(t *testing.T) {
	for name, raw := range map[string]string{
		"Empty":         "",
		"ShortBody":     "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\nabc",
		"HugeLength":    "HTTP/1.1 200 OK\r\nContent-Length: 9223372036854775807\r\n\r\nabc",
		"ShortChunk":    "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhel",
		"MissingChunks": "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := read(raw, "", 0)
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
			var perr *transport.ProtocolError
			assert.False(t, errors.As(err, &perr), "truncation is not a framing error")
		})
	}
}
