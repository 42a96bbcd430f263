package ws

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 65536
)

// Handler consumes inbound frames and is told when the connection goes
// away. The session pipeline implements it.
type Handler interface {
	Handle(data []byte)
	Close()
}

// Conn adapts a gorilla websocket connection to the session pipeline. The
// write side runs through a buffered channel; Send never blocks.
type Conn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte
}

func NewConn(id string, ws *websocket.Conn) *Conn {
	return &Conn{
		id:   id,
		ws:   ws,
		send: make(chan []byte, 256),
	}
}

func (c *Conn) ID() string { return c.id }

// Send queues a frame for the write pump. A full buffer means the peer is
// not keeping up; the frame is dropped and the caller treats the session as
// not ready.
func (c *Conn) Send(data []byte) error {
	select {
	case c.send <- data:
		return nil
	default:
		return websocket.ErrCloseSent
	}
}

// Start runs the pumps. It returns when the connection closes; the handler
// is closed on the way out.
func (c *Conn) Start(h Handler) {
	go c.writePump()
	c.readPump(h)
}

func (c *Conn) readPump(h Handler) {
	defer func() {
		h.Close()
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("read error", "sessionId", c.id, "error", err)
			}
			return
		}
		h.Handle(data)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
