package event

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

// Kind discriminates the wire message variants.
type Kind string

const (
	KindJoin    Kind = "join"
	KindBegin   Kind = "begin"
	KindMove    Kind = "move"
	KindEnd     Kind = "end"
	KindClear   Kind = "clear"
	KindHistory Kind = "history"
)

var (
	ErrUnknownKind = errors.New("unknown event kind")
	ErrBadPoint    = errors.New("point must be two finite coordinates")
	ErrMissingRoom = errors.New("missing room")
)

// Point is a coordinate in canvas-local space. It travels on the wire as a
// two-element JSON array: [x, y].
type Point struct {
	X float64
	Y float64
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return errors.Wrap(ErrBadPoint, err.Error())
	}
	if len(coords) != 2 {
		return ErrBadPoint
	}
	for _, c := range coords {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return ErrBadPoint
		}
	}
	p.X, p.Y = coords[0], coords[1]
	return nil
}

// Event is the unit of synchronization. Exactly one Kind is set; the other
// fields are meaningful only for the kinds that carry them (see the wire
// structs below). The server is authoritative for Room on drawing events.
type Event struct {
	Kind        Kind
	Room        string
	UserID      string
	Color       string
	StrokeWidth float64
	Point       Point   // begin only
	Points      []Point // move only
	Events      []Event // history only
}

// wire mirrors Event with JSON tags for decoding. Events recurses through
// Event.UnmarshalJSON so nested history entries are validated too.
type wire struct {
	Type        string  `json:"type"`
	Room        string  `json:"room,omitempty"`
	UserID      string  `json:"userId,omitempty"`
	Color       string  `json:"color,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Point       *Point  `json:"point,omitempty"`
	Points      []Point `json:"points,omitempty"`
	Events      []Event `json:"events,omitempty"`
}

// historyWire keeps events present even when empty, so a fresh room's
// snapshot serializes as {"type":"history","room":...,"events":[]}.
type historyWire struct {
	Type   string  `json:"type"`
	Room   string  `json:"room"`
	Events []Event `json:"events"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindJoin, KindEnd, KindClear:
		return json.Marshal(wire{Type: string(e.Kind), Room: e.Room, UserID: e.UserID})
	case KindBegin:
		p := e.Point
		return json.Marshal(wire{
			Type:        string(e.Kind),
			Room:        e.Room,
			UserID:      e.UserID,
			Color:       e.Color,
			StrokeWidth: e.StrokeWidth,
			Point:       &p,
		})
	case KindMove:
		return json.Marshal(wire{Type: string(e.Kind), Room: e.Room, UserID: e.UserID, Points: e.Points})
	case KindHistory:
		evs := e.Events
		if evs == nil {
			evs = []Event{}
		}
		return json.Marshal(historyWire{Type: string(e.Kind), Room: e.Room, Events: evs})
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "%q", e.Kind)
	}
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.Wrap(err, "decode event")
	}

	kind := Kind(w.Type)
	switch kind {
	case KindJoin, KindEnd, KindClear:
		// room/userId only
	case KindBegin:
		if w.Point == nil {
			return errors.Wrap(ErrBadPoint, "begin without point")
		}
	case KindMove, KindHistory:
		// empty points/events are legal
	default:
		return errors.Wrapf(ErrUnknownKind, "%q", w.Type)
	}

	e.Kind = kind
	e.Room = w.Room
	e.UserID = w.UserID
	e.Color = w.Color
	e.StrokeWidth = w.StrokeWidth
	if w.Point != nil {
		e.Point = *w.Point
	}
	e.Points = w.Points
	e.Events = w.Events
	return nil
}

// Decode parses a single wire frame.
func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Encode serializes an event to a wire frame.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}
