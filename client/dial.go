package client

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/pingwin/protocol"
)

// Dial connects to a game server. ws:// and wss:// addresses go through a
// websocket upgrade, anything else is a host:port for raw TCP.
func Dial(ctx context.Context, addr string) (protocol.Stream, error) {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		conn, resp, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
		if err != nil {
			if resp != nil {
				return nil, fmt.Errorf("dial %s: %s: %w", addr, resp.Status, err)
			}
			return nil, fmt.Errorf("dial %s: %w", addr, err)
		}
		log.Debugf("Connected to %s over websocket.", addr)
		return protocol.NewWebsocketStream(conn), nil
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	log.Debugf("Connected to %s.", addr)
	return conn, nil
}
