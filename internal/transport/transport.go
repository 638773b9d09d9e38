package transport

import (
	"bufio"
	"io"

	"github.com/frankli0324/go-httpconn/internal/model"
)

// Transport is the message codec a connection writes its request with and
// reads its response through.
type Transport interface {
	Write(w io.Writer, req *model.PreparedRequest) error
	Read(r *bufio.Reader, req *model.PreparedRequest, resp *model.Response) error
}

var _ Transport = HTTP1{}
