package protocol

import (
	"io"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// WebsocketStream carries framed records over websocket binary messages.
// Each Write is sent as one message; reads see the concatenation of all
// received messages.
type WebsocketStream struct {
	conn   *websocket.Conn
	reader io.Reader
}

func NewWebsocketStream(conn *websocket.Conn) *WebsocketStream {
	return &WebsocketStream{conn: conn}
}

func (s *WebsocketStream) Read(p []byte) (int, error) {
	for {
		if s.reader == nil {
			messageType, r, err := s.conn.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return 0, io.EOF
				}
				return 0, err
			}
			if messageType != websocket.BinaryMessage && messageType != websocket.TextMessage {
				continue
			}
			s.reader = r
		}
		n, err := s.reader.Read(p)
		if err == io.EOF {
			s.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

// Write must not be called concurrently.
func (s *WebsocketStream) Write(p []byte) (int, error) {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return 0, err
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *WebsocketStream) Close() error {
	return s.conn.Close()
}

func (s *WebsocketStream) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}
