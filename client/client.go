// Package client is the drawing-side SDK: it connects to an inkwell server,
// batches locally sampled stroke points into bounded-rate move events, and
// replays remote events onto a Canvas.
package client

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"inkwell/internal/event"
)

// Point aliases the wire coordinate type so SDK users never need to import
// the internal event package.
type Point = event.Point

const defaultFlushInterval = 20 * time.Millisecond

// Config carries everything needed to join a room. ServerURL is the one
// required field; all others have working defaults.
type Config struct {
	ServerURL     string // ws://host:port/ws
	Room          string
	UserID        string
	Color         string
	StrokeWidth   float64
	FlushInterval time.Duration
}

// Client is one live connection to a room. The stroke methods are the send
// path; everything received is replayed onto the Canvas passed to Dial.
type Client struct {
	cfg     Config
	ws      *websocket.Conn
	writeMu sync.Mutex
	batch   *batcher
	rec     *Reconstructor
}

// Dial connects, joins the configured room, and starts replaying remote
// events onto canvas. A missing server address fails immediately — there is
// no reachable default to degrade to.
func Dial(cfg Config, canvas Canvas) (*Client, error) {
	if cfg.ServerURL == "" {
		return nil, errors.New("client: no server address configured")
	}
	if cfg.Room == "" {
		cfg.Room = "default"
	}
	if cfg.UserID == "" {
		cfg.UserID = uuid.New().String()
	}
	if cfg.Color == "" {
		cfg.Color = "#000000"
	}
	if cfg.StrokeWidth == 0 {
		cfg.StrokeWidth = 2
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = defaultFlushInterval
	}

	ws, _, err := websocket.DefaultDialer.Dial(cfg.ServerURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "client: dial %s", cfg.ServerURL)
	}

	c := &Client{
		cfg: cfg,
		ws:  ws,
		rec: NewReconstructor(canvas),
	}
	c.batch = newBatcher(cfg.FlushInterval, c.sendMove)

	join := event.Event{Kind: event.KindJoin, Room: cfg.Room, UserID: cfg.UserID}
	if err := c.sendEvent(join); err != nil {
		ws.Close()
		return nil, errors.Wrap(err, "client: join")
	}

	go c.readLoop()
	return c, nil
}

// UserID reports the identity this client draws as.
func (c *Client) UserID() string { return c.cfg.UserID }

// StrokeBegin starts a new stroke. The begin event goes out immediately so
// peers get first visual feedback without waiting for a flush window.
func (c *Client) StrokeBegin(p Point) {
	c.batch.Reset()
	begin := event.Event{
		Kind:        event.KindBegin,
		Room:        c.cfg.Room,
		UserID:      c.cfg.UserID,
		Color:       c.cfg.Color,
		StrokeWidth: c.cfg.StrokeWidth,
		Point:       p,
	}
	if err := c.sendEvent(begin); err != nil {
		slog.Debug("begin send failed", "error", err)
	}
}

// StrokeMove buffers one sampled point. Points are drained into a single
// move event per flush window, preserving sample order.
func (c *Client) StrokeMove(p Point) {
	c.batch.Add(p)
}

// StrokeEnd flushes any buffered points synchronously, then sends the end
// event, so no point is lost between the last scheduled flush and stroke
// termination.
func (c *Client) StrokeEnd() {
	c.batch.Flush()
	end := event.Event{Kind: event.KindEnd, Room: c.cfg.Room, UserID: c.cfg.UserID}
	if err := c.sendEvent(end); err != nil {
		slog.Debug("end send failed", "error", err)
	}
}

// ClearBoard wipes the shared canvas for everyone in the room.
func (c *Client) ClearBoard() {
	c.batch.Reset()
	ev := event.Event{Kind: event.KindClear, Room: c.cfg.Room, UserID: c.cfg.UserID}
	if err := c.sendEvent(ev); err != nil {
		slog.Debug("clear send failed", "error", err)
	}
}

// Close tears down the connection. Buffered unsent points are discarded,
// not migrated.
func (c *Client) Close() error {
	c.batch.Reset()
	return c.ws.Close()
}

func (c *Client) sendMove(points []event.Point) {
	move := event.Event{Kind: event.KindMove, Room: c.cfg.Room, UserID: c.cfg.UserID, Points: points}
	if err := c.sendEvent(move); err != nil {
		slog.Debug("move send failed", "error", err)
	}
}

func (c *Client) sendEvent(ev event.Event) error {
	data, err := ev.Encode()
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) readLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		ev, err := event.Decode(data)
		if err != nil {
			slog.Debug("dropping malformed frame", "error", err)
			continue
		}
		c.rec.Apply(ev)
	}
}
