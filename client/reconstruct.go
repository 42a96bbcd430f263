package client

import (
	"inkwell/internal/event"
)

// Canvas is the rendering sink the reconstructor draws into. The SDK only
// ever writes to it; it never reads pixels back.
type Canvas interface {
	SetStyle(color string, width float64)
	MoveTo(p Point)
	LineTo(p Point)
	Stroke()
	Clear()
}

// strokeState tracks one remote user's in-progress stroke.
type strokeState struct {
	drawing bool
	last    *Point
}

// Reconstructor turns a per-user event stream back into continuous paths.
// It tolerates a missing begin (user joined mid-stroke) and replays history
// snapshots from scratch. Apply is not safe for concurrent use; the client
// calls it from a single read loop.
type Reconstructor struct {
	canvas Canvas
	users  map[string]*strokeState
}

func NewReconstructor(canvas Canvas) *Reconstructor {
	return &Reconstructor{
		canvas: canvas,
		users:  make(map[string]*strokeState),
	}
}

// Apply processes one event.
func (r *Reconstructor) Apply(ev event.Event) {
	switch ev.Kind {
	case event.KindBegin:
		r.begin(ev)
	case event.KindMove:
		r.move(ev)
	case event.KindEnd:
		r.end(ev)
	case event.KindHistory:
		// Replay rebuilds everything from scratch: stale partial strokes
		// must not layer under the snapshot.
		r.reset()
		for _, nested := range ev.Events {
			r.Apply(nested)
		}
	case event.KindClear:
		r.reset()
	case event.KindJoin:
		// client-only control message, nothing to render
	}
}

func (r *Reconstructor) begin(ev event.Event) {
	r.canvas.SetStyle(ev.Color, ev.StrokeWidth)
	r.canvas.MoveTo(ev.Point)

	st := r.state(ev.UserID)
	p := ev.Point
	st.drawing = true
	st.last = &p
}

func (r *Reconstructor) move(ev event.Event) {
	points := ev.Points
	if len(points) == 0 {
		return
	}

	st := r.state(ev.UserID)
	if st.last != nil {
		r.canvas.MoveTo(*st.last)
		for _, p := range points {
			r.canvas.LineTo(p)
		}
	} else {
		// No begin seen for this user (joined mid-stroke): render the
		// available points as a standalone polyline rather than drop them.
		r.canvas.MoveTo(points[0])
		for _, p := range points[1:] {
			r.canvas.LineTo(p)
		}
	}
	r.canvas.Stroke()

	last := points[len(points)-1]
	st.last = &last
}

func (r *Reconstructor) end(ev event.Event) {
	st := r.state(ev.UserID)
	st.drawing = false
	st.last = nil
}

func (r *Reconstructor) reset() {
	r.users = make(map[string]*strokeState)
	r.canvas.Clear()
}

func (r *Reconstructor) state(userID string) *strokeState {
	st, ok := r.users[userID]
	if !ok {
		st = &strokeState{}
		r.users[userID] = st
	}
	return st
}
