package transport

import (
	"fmt"

	"go.bug.st/serial"
)

// OpenSerial opens a serial device in 8N1 mode.
func OpenSerial(name string, baudRate int) (Conn, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	return port, nil
}

// SerialPorts lists serial devices present on the system.
func SerialPorts() ([]string, error) {
	return serial.GetPortsList()
}
