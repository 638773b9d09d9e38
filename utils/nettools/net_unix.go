//go:build unix

package nettools

import (
	"errors"

	"golang.org/x/sys/unix"
)

func shutdownFD(fd uintptr) error {
	if err := unix.Shutdown(int(fd), unix.SHUT_RDWR); err != nil {
		return &shutdownError{err}
	}
	return nil
}

func isNotConnected(err error) bool {
	return errors.Is(err, unix.ENOTCONN)
}

func isPeerReset(err error) bool {
	return errors.Is(err, unix.ECONNRESET) || errors.Is(err, unix.EPIPE)
}
