package engine

import (
	"github.com/marmorek/animos/internal/types"
)

// EventType tags a clip lifecycle event.
type EventType int

const (
	// EventStarted: a trigger produced a new clip.
	EventStarted EventType = iota
	// EventTracksReleased: a clip lost tracks to LTP, a stop, or finishing.
	EventTracksReleased
	// EventFinished: a clip reached its terminal sample and left the registry.
	EventFinished
	// EventWarning: a structural warning (formation subset, dropped tracks).
	EventWarning
)

func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventTracksReleased:
		return "tracks-released"
	case EventFinished:
		return "finished"
	case EventWarning:
		return "warning"
	default:
		return "event"
	}
}

// Event is delivered to subscribers from the engine thread. Handlers must
// return quickly; anything slow belongs on the subscriber's own goroutine.
type Event struct {
	Type        EventType
	ClipID      types.ClipID
	CueID       string
	AnimationID string
	Tracks      []types.TrackID
	Reason      types.ReleaseReason
	Message     string
}

func (e *Engine) emit(ev Event) {
	e.subsMu.Lock()
	subs := e.subs
	e.subsMu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// SubscribeClipEvents registers a lifecycle callback. Callbacks run on the
// engine thread in subscription order.
func (e *Engine) SubscribeClipEvents(fn func(Event)) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	e.subs = append(e.subs, fn)
}
