package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the write side of a player connection.
type Conn interface {
	Send([]byte) error
	Close() error
}

type pinger interface {
	Ping() error
}

// client owns one connection's outbound queue. Only its writer goroutine touches the Conn.
type client struct {
	roomID   string
	playerID string
	conn     Conn
	send     chan []byte
	done     chan struct{}
	once     sync.Once
}

func newClient(roomID, playerID string, conn Conn, buffer int) *client {
	return &client{
		roomID:   roomID,
		playerID: playerID,
		conn:     conn,
		send:     make(chan []byte, buffer),
		done:     make(chan struct{}),
	}
}

// enqueue never blocks. It reports false when the queue is full or the client is closed.
func (c *client) enqueue(b []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// writePump drains the queue until the client is closed or a write fails. Queued messages
// are flushed before the connection closes.
func (c *client) writePump(pingEvery time.Duration) {
	defer c.conn.Close()

	var ping <-chan time.Time
	p, canPing := c.conn.(pinger)
	if canPing && pingEvery > 0 {
		ticker := time.NewTicker(pingEvery)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case b := <-c.send:
			if err := c.conn.Send(b); err != nil {
				c.close()
				return
			}
		case <-ping:
			if err := p.Ping(); err != nil {
				c.close()
				return
			}
		case <-c.done:
			for {
				select {
				case b := <-c.send:
					if err := c.conn.Send(b); err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

// socket adapts a gorilla connection to Conn.
type socket struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func (s *socket) Send(b []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, b)
}

func (s *socket) Ping() error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

func (s *socket) Close() error {
	return s.conn.Close()
}
