// Package transport opens the byte links a Session runs on.
package transport

import (
	"fmt"
	"io"
	"strings"
)

// Conn is a bi-directional byte link.
type Conn interface {
	io.ReadWriteCloser
}

// DefaultBaudRate is the default serial baud rate.
const DefaultBaudRate = 115200

// Open opens target, either a websocket URL (ws:// or wss://) or a serial
// device. It also returns a description of the link for display.
func Open(target string, baudRate int) (Conn, string, error) {
	if target == "" {
		return nil, "", fmt.Errorf("link target must be specified")
	}
	if strings.HasPrefix(target, "ws://") || strings.HasPrefix(target, "wss://") {
		conn, err := DialWebSocket(target)
		if err != nil {
			return nil, "", err
		}
		return conn, "websocket " + target, nil
	}
	conn, err := OpenSerial(target, baudRate)
	if err != nil {
		return nil, "", err
	}
	return conn, fmt.Sprintf("serial %s @ %d baud", target, baudRate), nil
}
