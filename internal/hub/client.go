package hub

import (
	"github.com/lxzan/gws"
)

const clientKey = "client"

// Client represents a connected WebSocket client.
type Client struct {
	conn *gws.Conn
	send chan []byte
}

// NewClient wraps an upgraded connection and attaches itself to the
// connection's session so the hub can find it in event callbacks.
func NewClient(conn *gws.Conn) *Client {
	c := &Client{
		conn: conn,
		send: make(chan []byte, 256),
	}
	conn.Session().Store(clientKey, c)
	return c
}

func clientOf(socket *gws.Conn) (*Client, bool) {
	v, ok := socket.Session().Load(clientKey)
	if !ok {
		return nil, false
	}
	c, ok := v.(*Client)
	return c, ok
}

// WritePump sends messages from the send channel to the WebSocket
// connection. It returns when the hub closes the channel.
func (c *Client) WritePump() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(gws.OpcodeText, msg); err != nil {
			break
		}
	}
	c.conn.WriteClose(1000, nil)
}
