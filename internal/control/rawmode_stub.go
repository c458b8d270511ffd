//go:build !linux

package control

import (
	"fmt"
	"os"
)

func makeRawInput(f *os.File) (restore func(), err error) {
	return nil, fmt.Errorf("raw input is only supported on linux")
}
