package printer

import (
	"io"
	"sync"
)

// Printer wraps sending ESC-POS commands to a Transport.
type Printer struct {
	t Transport

	sync.Mutex
}

// NewPrinter creates a new printer using the specified writer. Network
// connections and other io.ReadWriteClosers are closed by CloseConnection,
// anything else (a bytes.Buffer, say) is left alone.
func NewPrinter(w io.ReadWriter) (*Printer, error) {
	var transport Transport

	if rc, ok := w.(io.ReadWriteCloser); ok {
		transport = &RawTransport{conn: rc}
	} else {
		// Любой io.ReadWriter (например, bytes.Buffer), оборачиваем в nopCloser
		transport = &RawTransport{conn: nopCloser{w}}
	}

	return &Printer{t: transport}, nil
}

// CloseConnection releases the underlying transport.
func (p *Printer) CloseConnection() error {
	return p.t.Close()
}

// Write writes all of buf to the printer, retrying short writes.
func (p *Printer) Write(buf []byte) (int, error) {
	p.Lock()
	defer p.Unlock()

	sent := 0
	for sent < len(buf) {
		n, err := p.t.Write(buf[sent:])
		sent += n
		if err != nil {
			return sent, err
		}
		if n == 0 {
			return sent, io.ErrShortWrite
		}
	}
	return sent, nil
}

// Init writes ESC @, resetting the printer to its power-on state.
func (p *Printer) Init() (int, error) {
	return p.Write([]byte("\x1B@"))
}

// Linefeed writes a line end to the printer.
func (p *Printer) Linefeed() (int, error) {
	return p.Write([]byte("\n"))
}

// Cut writes GS V A 0: feed to the cutter and cut.
func (p *Printer) Cut() (int, error) {
	return p.Write([]byte("\x1DVA0"))
}
