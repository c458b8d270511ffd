package transport

import (
	"fmt"
	"io"
	"strings"
)

// Config selects and configures the output sink for encoded sentences.
type Config struct {
	// Mode selects the sink: "serial" or "udp".
	Mode string

	// Device and Baud apply to Mode=="serial".
	Device string
	Baud   int

	// Backend selects the serial implementation: "portable" (default) or
	// "termios" (Linux only, raw termios via x/sys).
	Backend string

	// UDPDest is host:port for Mode=="udp".
	UDPDest string
}

// Open acquires the configured sink. Failure here is fatal for the caller:
// the simulation must not start without somewhere to write.
func Open(cfg Config) (io.WriteCloser, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "serial"
	}

	switch mode {
	case "serial":
		device := strings.TrimSpace(cfg.Device)
		if device == "" {
			return nil, fmt.Errorf("transport: serial device is required")
		}
		baud := cfg.Baud
		if baud == 0 {
			baud = 4800
		}
		backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
		if backend == "" {
			backend = "portable"
		}
		switch backend {
		case "portable":
			return openPortable(device, baud)
		case "termios":
			return openTermios(device, baud)
		default:
			return nil, fmt.Errorf("transport: unknown serial backend %q", backend)
		}
	case "udp":
		dest := strings.TrimSpace(cfg.UDPDest)
		if dest == "" {
			return nil, fmt.Errorf("transport: udp dest is required")
		}
		return OpenUDP(dest)
	default:
		return nil, fmt.Errorf("transport: unknown mode %q", mode)
	}
}
