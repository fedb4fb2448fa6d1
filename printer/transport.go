package printer

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

type Transport interface {
	Write([]byte) (int, error)
	Read([]byte) (int, error)
	Close() error
}

// -------------------- RAW --------------------

type RawTransport struct {
	conn io.ReadWriteCloser
}

func (r *RawTransport) Write(b []byte) (int, error) { return r.conn.Write(b) }
func (r *RawTransport) Read(b []byte) (int, error)  { return r.conn.Read(b) }
func (r *RawTransport) Close() error                { return r.conn.Close() }

// -------------------- NETWORK --------------------

// DefaultPort is the raw printing port (JetDirect / AppSocket).
const DefaultPort = 9100

// Target is a network printer.
type Target struct {
	IP      string
	Port    int
	Profile string
}

// Address returns ip:port, using DefaultPort when Port is unset.
func (t Target) Address() string {
	port := t.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(t.IP, strconv.Itoa(port))
}

// NewNetworkPrinter dials target over TCP. A zero dialTimeout leaves the
// connect timeout to the OS; a zero writeTimeout sets no write deadline.
func NewNetworkPrinter(ctx context.Context, target Target, dialTimeout, writeTimeout time.Duration) (*Printer, error) {
	dialer := &net.Dialer{Timeout: dialTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", target.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target.Address(), err)
	}

	if writeTimeout > 0 {
		return NewPrinter(&deadlineConn{Conn: conn, timeout: writeTimeout})
	}
	return NewPrinter(conn)
}

// deadlineConn pushes the write deadline forward before every write.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (d *deadlineConn) Write(b []byte) (int, error) {
	if err := d.Conn.SetWriteDeadline(time.Now().Add(d.timeout)); err != nil {
		return 0, err
	}
	return d.Conn.Write(b)
}

// -------------------- helpers --------------------

type nopCloser struct {
	io.ReadWriter
}

func (n nopCloser) Close() error { return nil }
