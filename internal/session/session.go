package session

import (
	"log/slog"

	"inkwell/internal/event"
	"inkwell/internal/room"
)

// Session is the per-connection pipeline: it starts unbound, binds to a
// room on the first join, and from then on stamps, records, and broadcasts
// every drawing event it receives.
//
// Handle and Close are only ever called from the connection's read
// goroutine, so the binding fields need no lock.
type Session struct {
	conn     room.Sender
	registry *room.Registry
	room     string // "" while unbound
	userID   string
}

func New(conn room.Sender, registry *room.Registry) *Session {
	return &Session{conn: conn, registry: registry}
}

// Handle processes one inbound frame. Malformed frames and frames that
// arrive before a join are dropped without closing the connection.
func (s *Session) Handle(data []byte) {
	ev, err := event.Decode(data)
	if err != nil {
		slog.Debug("dropping malformed frame", "sessionId", s.conn.ID(), "error", err)
		return
	}

	switch ev.Kind {
	case event.KindJoin:
		s.join(ev)
	case event.KindBegin, event.KindMove, event.KindEnd, event.KindClear:
		s.publish(ev)
	case event.KindHistory:
		// server-only message, never accepted from a client
		slog.Debug("dropping client history frame", "sessionId", s.conn.ID())
	}
}

// join binds (or re-binds) the session and replies with the room's history
// snapshot. Re-joining leaves the previous room explicitly before binding
// the new one, so broadcast membership is always the session set, never an
// implicit binding comparison.
func (s *Session) join(ev event.Event) {
	if ev.Room == "" {
		slog.Debug("dropping join without room", "sessionId", s.conn.ID())
		return
	}

	if s.room != "" {
		s.registry.Leave(s.room, s.conn)
	}
	s.room = ev.Room
	s.userID = ev.UserID

	snapshot := s.registry.Join(s.room, s.conn)

	reply := event.Event{Kind: event.KindHistory, Room: s.room, Events: snapshot}
	data, err := reply.Encode()
	if err != nil {
		slog.Error("encode history", "room", s.room, "error", err)
		return
	}
	if err := s.conn.Send(data); err != nil {
		slog.Debug("history send skipped", "room", s.room, "sessionId", s.conn.ID(), "error", err)
	}
}

// publish stamps the event with the bound room and hands it to the
// registry. Events received while unbound are dropped.
func (s *Session) publish(ev event.Event) {
	if s.room == "" {
		slog.Debug("dropping frame from unbound session", "sessionId", s.conn.ID(), "kind", ev.Kind)
		return
	}

	ev.Room = s.room
	if err := s.registry.Publish(s.room, ev, s.conn); err != nil {
		slog.Warn("publish failed", "room", s.room, "sessionId", s.conn.ID(), "error", err)
	}
}

// Close detaches the session from its room. The room's history is kept.
func (s *Session) Close() {
	if s.room == "" {
		return
	}
	s.registry.Leave(s.room, s.conn)
	s.room = ""
}
