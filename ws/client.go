package ws

import (
	"sync"

	"nexus-project/collaboration-service/logging"

	"github.com/gorilla/websocket"
)

// Client wraps a websocket connection as a hub Subscriber. Writes are
// serialized because gorilla/websocket allows one concurrent writer.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

func (c *Client) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		logging.Logger.Warnf("Event ID: WEBSOCKET_SEND_FAILED, Description: Websocket send failed: %v", err)
		_ = c.conn.Close()
		return err
	}
	return nil
}

func (c *Client) Close() {
	_ = c.conn.Close()
}
