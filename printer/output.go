package printer

import (
	"context"
	"fmt"
	"os"

	"github.com/AlexStarov/escpos-netprint/config"
)

// Open returns an Opener for the output named in cfg. Nothing is opened
// until the Opener is called.
func Open(cfg config.PrinterConfig) (Opener, error) {
	switch cfg.Output {
	case config.OutputNetwork, "":
		target := Target{IP: cfg.Destination, Port: cfg.Port, Profile: cfg.Profile}
		return func(ctx context.Context) (*Printer, error) {
			return NewNetworkPrinter(ctx, target, cfg.DialTimeout, cfg.WriteTimeout)
		}, nil

	case config.OutputFile:
		return func(context.Context) (*Printer, error) {
			f, err := os.OpenFile(cfg.Destination, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if err != nil {
				return nil, fmt.Errorf("failed to open output file: %w", err)
			}
			return NewPrinter(f)
		}, nil

	case config.OutputStdout:
		return func(context.Context) (*Printer, error) {
			// stdout stays open for the rest of the process
			return NewPrinter(nopCloser{os.Stdout})
		}, nil

	case config.OutputSerial:
		return func(context.Context) (*Printer, error) {
			return NewSerialPrinter(cfg.Destination, cfg.BaudRate)
		}, nil

	case config.OutputUSB:
		vid, pid, err := ParseUSBID(cfg.Destination)
		if err != nil {
			return nil, err
		}
		return func(context.Context) (*Printer, error) {
			return NewUSBPrinter(vid, pid)
		}, nil

	case config.OutputSpooler:
		return func(context.Context) (*Printer, error) {
			return NewWinPrintSpoolerPrinter(cfg.Destination)
		}, nil
	}

	return nil, fmt.Errorf("unknown output: %q", cfg.Output)
}
