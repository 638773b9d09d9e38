package dialer

import (
	"io"
	"log/slog"
	"net"
	"sync/atomic"

	"github.com/frankli0324/go-httpconn/utils/logutil"
	"github.com/frankli0324/go-httpconn/utils/nettools"
)

// Stream is the TCP stream a single connection owns for its lifetime.
type Stream struct {
	net.Conn
	closed atomic.Bool
	log    *slog.Logger
}

func NewStream(c net.Conn, log *slog.Logger) *Stream {
	return &Stream{Conn: c, log: logutil.NoopIfNil(log)}
}

func (s *Stream) Write(p []byte) (n int, err error) {
	n, err = s.Conn.Write(p)
	if err != nil && err != io.EOF {
		s.log.Debug("stream: error on write", "err", err)
	}
	return
}

func (s *Stream) Read(p []byte) (n int, err error) {
	n, err = s.Conn.Read(p)
	if err != nil && err != io.EOF {
		s.log.Debug("stream: error on read", "err", err)
	}
	return
}

// NetConn returns the socket under the stream.
func (s *Stream) NetConn() net.Conn { return s.Conn }

func (s *Stream) Closed() bool { return s.closed.Load() }

func (s *Stream) Close() error { return s.Shutdown() }

// Shutdown shuts both directions of the socket down and closes it. A
// stream that is not connected, or already closed, is not an error, and
// only the first call does anything.
func (s *Stream) Shutdown() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := nettools.Shutdown(s.Conn)
	if nettools.IsClosed(err) {
		err = nil
	}
	if cerr := s.Conn.Close(); cerr != nil && err == nil && !nettools.IsClosed(cerr) {
		err = cerr
	}
	return err
}
