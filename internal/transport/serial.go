package transport

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// openPortable opens the device through go.bug.st/serial, which works across
// platforms (including the COM ports that virtual serial bridges expose).
func openPortable(device string, baud int) (io.WriteCloser, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", device, err)
	}
	return port, nil
}
