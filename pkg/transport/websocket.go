package transport

import (
	"fmt"

	"golang.org/x/net/websocket"
)

// DialWebSocket connects a virtual serial cable served by WebSocketHandler.
func DialWebSocket(url string) (Conn, error) {
	ws, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	ws.PayloadType = websocket.BinaryFrame
	return ws, nil
}

// WebSocketHandler serves each websocket connection as a byte link.
// The connection is closed when serve returns.
func WebSocketHandler(serve func(Conn)) websocket.Handler {
	return func(ws *websocket.Conn) {
		ws.PayloadType = websocket.BinaryFrame
		serve(ws)
	}
}
