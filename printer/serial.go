package printer

import (
	"fmt"
	"slices"
	"time"

	"go.bug.st/serial"
)

// NewSerialPrinter opens portName (COM3, /dev/ttyUSB0, /dev/cu.usbmodem*) at
// baudRate, 8N1.
func NewSerialPrinter(portName string, baudRate int) (*Printer, error) {
	// Проверяем, существует ли заданный порт
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	if !slices.Contains(ports, portName) {
		return nil, fmt.Errorf("serial port %s not found (available: %v)", portName, ports)
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to configure serial port %s: %w", portName, err)
	}

	printer, err := NewPrinter(port)
	if err != nil {
		port.Close()
		return nil, err
	}
	return printer, nil
}
