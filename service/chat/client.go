package chat

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client represents one live push connection to the gateway.
// A single user may have multiple devices/tabs, each maintained separately.
// UserID stays empty until the connection passes authentication.
type Client struct {
	ConnID string          // Unique connection ID (unique within the local gateway)
	UserID string          // User ID (set at admission, empty while unauthenticated)
	WS     *websocket.Conn // WebSocket connection object (nil in tests)
	Send   chan []byte     // Outbound frame queue (consumed by a single writer goroutine)

	closeOnce sync.Once
	done      chan struct{}
}

// NewClient creates a new client connection object.
func NewClient(connID string, ws *websocket.Conn, sendQueueSize int) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = 64
	}
	return &Client{
		ConnID: connID,
		WS:     ws,
		Send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// enqueue 非阻塞投递；队列满（慢客户端）返回 false，帧被丢弃
func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// Close stops the writer goroutine. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done reports the channel closed when the client is shut down.
func (c *Client) Done() <-chan struct{} { return c.done }
