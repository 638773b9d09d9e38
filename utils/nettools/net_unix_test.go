//go:build unix

package nettools

import (
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestClassifyErrno(t *testing.T) {
	reset := &net.OpError{Op: "read", Err: os.NewSyscallError("read", unix.ECONNRESET)}
	assert.True(t, IsPeerGone(reset))
	assert.True(t, IsPeerGone(os.NewSyscallError("write", unix.EPIPE)))

	notConn := &shutdownError{unix.ENOTCONN}
	assert.True(t, IsClosed(notConn))
	assert.Equal(t, "shutdown: "+unix.ENOTCONN.Error(), notConn.Error())
	assert.False(t, IsClosed(reset))
}
