//go:build !unix && !windows

package nettools

func shutdownFD(uintptr) error { return nil }

func isNotConnected(error) bool { return false }

func isPeerReset(error) bool { return false }
