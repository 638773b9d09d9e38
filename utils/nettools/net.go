package nettools

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// Shutdown shuts down both directions of c, it does not close c. Streams
// without a file descriptor (net.Pipe etc.) fall back to CloseRead and
// CloseWrite when they have them, and are otherwise left untouched.
func Shutdown(c net.Conn) error {
	if rc := rawConn(c); rc != nil {
		var serr error
		if err := rc.Control(func(fd uintptr) {
			serr = shutdownFD(fd)
		}); err != nil {
			return err
		}
		return serr
	}
	var errs []error
	if cr, ok := c.(interface{ CloseRead() error }); ok {
		errs = append(errs, cr.CloseRead())
	}
	if cw, ok := c.(interface{ CloseWrite() error }); ok {
		errs = append(errs, cw.CloseWrite())
	}
	return errors.Join(errs...)
}

// IsClosed reports whether err means the stream is already gone on our
// side: the socket was closed locally or was never connected.
func IsClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || isNotConnected(err)
}

// IsPeerGone reports whether err is the peer having closed or reset the
// stream under us.
func IsPeerGone(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || isPeerReset(err)
}

func rawConn(c net.Conn) syscall.RawConn {
	for {
		// *tls.Conn, or a wrapper exposing the underlying stream
		t, ok := c.(interface{ NetConn() net.Conn })
		if !ok {
			break
		}
		c = t.NetConn()
	}
	if sc, ok := c.(syscall.Conn); ok {
		if rc, err := sc.SyscallConn(); err == nil {
			return rc
		}
	}
	return nil
}
