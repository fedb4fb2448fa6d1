//go:build !windows

package printer

import "fmt"

// NewWinPrintSpoolerPrinter is only available on Windows.
func NewWinPrintSpoolerPrinter(printerName string) (*Printer, error) {
	return nil, fmt.Errorf("printer %q: Windows spooler printing is only supported on Windows", printerName)
}
