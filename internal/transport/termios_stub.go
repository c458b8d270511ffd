//go:build !linux

package transport

import (
	"fmt"
	"io"
)

func openTermios(path string, baud int) (io.WriteCloser, error) {
	return nil, fmt.Errorf("transport: termios backend is only supported on linux")
}
