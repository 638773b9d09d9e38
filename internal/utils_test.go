package internal_test

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"testing"

	"github.com/frankli0324/go-httpconn/internal"
	"github.com/frankli0324/go-httpconn/internal/model"
)

// TestDialer hands out one end of an in-memory pipe instead of a socket.
type TestDialer struct {
	conn     net.Conn
	resolved int
}

func (t *TestDialer) Resolve(context.Context, string, string) ([]netip.AddrPort, error) {
	t.resolved++
	return []netip.AddrPort{netip.MustParseAddrPort("192.0.2.1:80")}, nil
}

func (t *TestDialer) DialTCP(context.Context, netip.AddrPort) (net.Conn, error) {
	return t.conn, nil
}

// emptyResolver resolves every host to nothing.
type emptyResolver struct{ TestDialer }

func (emptyResolver) Resolve(context.Context, string, string) ([]netip.AddrPort, error) {
	return nil, nil
}

// SendSingleRequest runs one exchange against a canned response and
// returns the bytes the connection wrote.
func SendSingleRequest(t *testing.T, target model.Target, setup func(c *internal.PlainConn)) io.Reader {
	t.Helper()
	client, server := net.Pipe()
	written := make(chan []byte, 1)
	go func() {
		defer server.Close()
		buf := &bytes.Buffer{}
		req, err := http.ReadRequest(bufio.NewReader(io.TeeReader(server, buf)))
		if err != nil {
			written <- buf.Bytes()
			return
		}
		io.Copy(io.Discard, req.Body)
		written <- buf.Bytes()
		io.Copy(server, strings.NewReader("HTTP/1.1 200 OK\r\nContent-Length: 0\r\nConnection: close\r\n\r\n"))
	}()

	ctx := context.Background()
	c := internal.NewPlain(target, internal.WithDialer(&TestDialer{conn: client}))
	defer c.Close()
	if setup != nil {
		setup(c)
	}
	if err := c.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.Write(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Read(ctx); err != nil {
		t.Error(err)
	}
	return bytes.NewReader(<-written)
}
