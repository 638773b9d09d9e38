//go:build windows

package nettools

import (
	"errors"
	"syscall"
)

// winsock codes missing from package syscall
const (
	wsaENOTCONN     = syscall.Errno(10057)
	wsaECONNRESET   = syscall.Errno(10054)
	wsaECONNABORTED = syscall.Errno(10053)
)

func shutdownFD(fd uintptr) error {
	if err := syscall.Shutdown(syscall.Handle(fd), syscall.SHUT_RDWR); err != nil {
		return &shutdownError{err}
	}
	return nil
}

func isNotConnected(err error) bool {
	return errors.Is(err, wsaENOTCONN) || errors.Is(err, syscall.ENOTCONN)
}

func isPeerReset(err error) bool {
	return errors.Is(err, wsaECONNRESET) || errors.Is(err, wsaECONNABORTED) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE)
}
