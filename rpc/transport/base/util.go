package base

import (
	"errors"
	"io"
	"net"
	"os"
	"syscall"

	"github.com/hightman/xunsearch/lib/xserror"
)

// failureReason classifies an io error as timeout, closed or unknown
func failureReason(err error) string {
	if err == nil {
		return xserror.ReasonUnknown
	}

	var netErr net.Error
	if errors.Is(err, os.ErrDeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return xserror.ReasonTimeout
	}

	// the peer went away or the socket was closed underneath us
	if errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) {
		return xserror.ReasonClosed
	}

	return xserror.ReasonUnknown
}
