//go:build windows

package printer

import (
	"fmt"
	"unsafe"

	"go.uber.org/multierr"
	"golang.org/x/sys/windows"
)

// spoolerConn реализует io.ReadWriteCloser поверх Windows Spooler API
type spoolerConn struct {
	hPrinter windows.Handle
}

func (s *spoolerConn) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	var written uint32
	r1, _, err := procWritePrinter.Call(
		uintptr(s.hPrinter),
		uintptr(unsafe.Pointer(&p[0])),
		uintptr(len(p)),
		uintptr(unsafe.Pointer(&written)),
	)
	if r1 == 0 {
		return int(written), fmt.Errorf("WritePrinter failed: %w", err)
	}
	return int(written), nil
}

func (s *spoolerConn) Read(p []byte) (int, error) {
	return 0, fmt.Errorf("read not supported for Windows spooler connection")
}

// Close ends the page and the document, which releases the job to the
// spooler, then closes the handle.
func (s *spoolerConn) Close() error {
	var err error
	if r1, _, e := procEndPagePrinter.Call(uintptr(s.hPrinter)); r1 == 0 {
		err = multierr.Append(err, fmt.Errorf("EndPagePrinter failed: %w", e))
	}
	if r1, _, e := procEndDocPrinter.Call(uintptr(s.hPrinter)); r1 == 0 {
		err = multierr.Append(err, fmt.Errorf("EndDocPrinter failed: %w", e))
	}
	if r1, _, e := procClosePrinter.Call(uintptr(s.hPrinter)); r1 == 0 {
		err = multierr.Append(err, fmt.Errorf("ClosePrinter failed: %w", e))
	}
	return err
}

// NewWinPrintSpoolerPrinter opens printerName in the Windows spooler and
// starts a RAW document, so the raster bytes reach the device untouched.
func NewWinPrintSpoolerPrinter(printerName string) (*Printer, error) {
	var hPrinter windows.Handle
	pname, err := windows.UTF16PtrFromString(printerName)
	if err != nil {
		return nil, fmt.Errorf("printer name %q: %w", printerName, err)
	}
	r1, _, err := procOpenPrinter.Call(
		uintptr(unsafe.Pointer(pname)),
		uintptr(unsafe.Pointer(&hPrinter)),
		0,
	)
	if r1 == 0 {
		return nil, fmt.Errorf("failed to open printer %q: %w", printerName, err)
	}

	// DOC_INFO_1
	docName, _ := windows.UTF16PtrFromString("ESC/POS raster image")
	dataType, _ := windows.UTF16PtrFromString("RAW")
	di := docInfo1{
		pDocName:    docName,
		pOutputFile: nil,
		pDatatype:   dataType,
	}

	r1, _, err = procStartDocPrinter.Call(
		uintptr(hPrinter),
		1,
		uintptr(unsafe.Pointer(&di)),
	)
	if r1 == 0 {
		procClosePrinter.Call(uintptr(hPrinter))
		return nil, fmt.Errorf("StartDocPrinter failed: %w", err)
	}

	if r1, _, err = procStartPagePrinter.Call(uintptr(hPrinter)); r1 == 0 {
		procEndDocPrinter.Call(uintptr(hPrinter))
		procClosePrinter.Call(uintptr(hPrinter))
		return nil, fmt.Errorf("StartPagePrinter failed: %w", err)
	}

	return NewPrinter(&spoolerConn{hPrinter: hPrinter})
}

// --- WinAPI binding ---
var (
	modwinspool          = windows.NewLazySystemDLL("winspool.drv")
	procOpenPrinter      = modwinspool.NewProc("OpenPrinterW")
	procClosePrinter     = modwinspool.NewProc("ClosePrinter")
	procStartDocPrinter  = modwinspool.NewProc("StartDocPrinterW")
	procEndDocPrinter    = modwinspool.NewProc("EndDocPrinter")
	procStartPagePrinter = modwinspool.NewProc("StartPagePrinter")
	procEndPagePrinter   = modwinspool.NewProc("EndPagePrinter")
	procWritePrinter     = modwinspool.NewProc("WritePrinter")
)

type docInfo1 struct {
	pDocName    *uint16
	pOutputFile *uint16
	pDatatype   *uint16
}
