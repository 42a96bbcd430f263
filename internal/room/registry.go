package room

import (
	"log/slog"
	"sync"

	"github.com/pkg/errors"

	"inkwell/internal/event"
)

// Sender is the transport-facing side of a session, as seen by the
// broadcast path. Send must not block: a connection that is not ready to
// accept the frame reports an error and the frame is skipped for it.
type Sender interface {
	ID() string
	Send(data []byte) error
}

// room owns the append-only history and the set of live sessions bound to
// it. Both are guarded by mu; holding mu across append+fanout is what makes
// broadcast order equal history order.
type room struct {
	name     string
	history  []event.Event
	sessions map[string]Sender
	mu       sync.RWMutex
}

// Registry is the process-wide map of room name to room state. It is
// constructed once and injected into every session; there is no package
// global.
type Registry struct {
	rooms map[string]*room
	mu    sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*room)}
}

// get returns the named room, creating it on first reference. Rooms are
// never destroyed; history persists for the process lifetime.
func (reg *Registry) get(name string) *room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[name]
	if !ok {
		r = &room{name: name, sessions: make(map[string]Sender)}
		reg.rooms[name] = r
	}
	return r
}

// Join binds s to the named room and returns a snapshot copy of the room's
// history, ordered as originally accepted.
func (reg *Registry) Join(name string, s Sender) []event.Event {
	r := reg.get(name)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	snapshot := make([]event.Event, len(r.history))
	copy(snapshot, r.history)
	count := len(r.sessions)
	r.mu.Unlock()

	slog.Info("session joined", "room", name, "sessionId", s.ID(), "sessions", count)
	return snapshot
}

// Leave removes s from the named room's session set. History is untouched.
func (reg *Registry) Leave(name string, s Sender) {
	reg.mu.Lock()
	r, ok := reg.rooms[name]
	reg.mu.Unlock()
	if !ok {
		return
	}

	r.mu.Lock()
	delete(r.sessions, s.ID())
	count := len(r.sessions)
	r.mu.Unlock()

	slog.Info("session left", "room", name, "sessionId", s.ID(), "sessions", count)
}

// Publish records a drawing event in the named room's history and fans it
// out to every bound session except exclude. A clear event truncates the
// history instead of appending. Delivery is best-effort: a session whose
// Send fails is skipped, never queued or retried — it reconciles through
// the history snapshot on its next join.
func (reg *Registry) Publish(name string, ev event.Event, exclude Sender) error {
	data, err := ev.Encode()
	if err != nil {
		return errors.Wrap(err, "encode broadcast")
	}

	r := reg.get(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Kind {
	case event.KindBegin, event.KindMove, event.KindEnd:
		r.history = append(r.history, ev)
	case event.KindClear:
		r.history = r.history[:0]
	case event.KindJoin, event.KindHistory:
		return errors.Wrapf(event.ErrUnknownKind, "%q is not publishable", ev.Kind)
	default:
		return errors.Wrapf(event.ErrUnknownKind, "%q", ev.Kind)
	}

	for id, s := range r.sessions {
		if exclude != nil && id == exclude.ID() {
			continue
		}
		if err := s.Send(data); err != nil {
			slog.Debug("broadcast skipped", "room", name, "sessionId", id, "error", err)
		}
	}
	return nil
}

// Snapshot returns the named room's full ordered history, creating the room
// if absent.
func (reg *Registry) Snapshot(name string) []event.Event {
	r := reg.get(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]event.Event, len(r.history))
	copy(snapshot, r.history)
	return snapshot
}

// Stats reports the number of rooms and bound sessions.
func (reg *Registry) Stats() (rooms, sessions int) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	rooms = len(reg.rooms)
	for _, r := range reg.rooms {
		r.mu.RLock()
		sessions += len(r.sessions)
		r.mu.RUnlock()
	}
	return rooms, sessions
}
