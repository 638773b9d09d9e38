package cmd

import (
	"errors"

	"github.com/frankli0324/go-httpconn/internal"
)

// Exit codes for the httpconn CLI
const (
	ExitSuccess = 0

	// ExitFailure indicates an error status (with --fail) or a missing
	// --extract path
	ExitFailure = 1

	// ExitParseError indicates a malformed response
	ExitParseError = 2

	// ExitConfigError indicates a bad config file or TLS configuration
	ExitConfigError = 3

	// ExitNetworkError indicates a resolve, connect, handshake or i/o error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code, err}
}

// classify picks the exit code for a connection error.
func classify(err error) error {
	switch {
	case errors.Is(err, internal.ErrParse):
		return withCode(ExitParseError, err)
	case errors.Is(err, internal.ErrTLSConfig):
		return withCode(ExitConfigError, err)
	case errors.Is(err, internal.ErrInvalidMethod),
		errors.Is(err, internal.ErrInvalidRequest):
		return withCode(ExitUsageError, err)
	}
	return withCode(ExitNetworkError, err)
}
