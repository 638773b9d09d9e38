package nettools

import (
	"errors"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		accepted <- c
	}()
	c, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer c.Close()
	peer := <-accepted
	require.NotNil(t, peer)
	defer peer.Close()

	require.NoError(t, Shutdown(c))
	n, err := peer.Read(make([]byte, 1))
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)

	_, err = c.Write([]byte("x"))
	assert.Error(t, err, "write side is shut down")

	require.NoError(t, c.Close())
	assert.True(t, IsClosed(Shutdown(c)), "closed sockets report as closed")
}

func TestShutdownNoFD(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	assert.NoError(t, Shutdown(a))
}

func TestClassify(t *testing.T) {
	assert.True(t, IsClosed(fmt.Errorf("op: %w", net.ErrClosed)))
	assert.False(t, IsClosed(io.EOF))

	assert.True(t, IsPeerGone(io.EOF))
	assert.True(t, IsPeerGone(io.ErrUnexpectedEOF))
	assert.False(t, IsPeerGone(errors.New("other")))
}
