//go:build linux

package control

import (
	"os"

	"golang.org/x/sys/unix"
)

// makeRawInput disables canonical mode and echo on f so single keystrokes
// are delivered immediately. The returned func restores the previous state.
func makeRawInput(f *os.File) (restore func(), err error) {
	fd := int(f.Fd())

	old, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, err
	}

	t := *old
	t.Lflag &^= unix.ICANON | unix.ECHO
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &t); err != nil {
		return nil, err
	}

	return func() {
		_ = unix.IoctlSetTermios(fd, unix.TCSETS, old)
	}, nil
}
