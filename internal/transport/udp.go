package transport

import (
	"fmt"
	"net"
)

type udpConn interface {
	Write(p []byte) (int, error)
	Close() error
}

// UDPSink sends each write as one datagram to a fixed destination. Some
// chartplotters and nav stacks take NMEA over UDP instead of a serial line.
type UDPSink struct {
	dest string
	conn udpConn
}

// OpenUDP resolves dest and connects a UDP socket to it.
func OpenUDP(dest string) (*UDPSink, error) {
	return openUDP(dest, net.ResolveUDPAddr, func(network string, laddr, raddr *net.UDPAddr) (udpConn, error) {
		return net.DialUDP(network, laddr, raddr)
	})
}

func openUDP(
	dest string,
	resolve func(network, address string) (*net.UDPAddr, error),
	dial func(network string, laddr, raddr *net.UDPAddr) (udpConn, error),
) (*UDPSink, error) {
	addr, err := resolve("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve %s: %w", dest, err)
	}

	// DialUDP selects a suitable local address automatically.
	conn, err := dial("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial udp %s: %w", dest, err)
	}

	return &UDPSink{dest: dest, conn: conn}, nil
}

func (s *UDPSink) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return s.conn.Write(p)
}

func (s *UDPSink) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
