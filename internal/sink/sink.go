// Package sink carries position updates to the wire. The engine offers a
// batch every tick; the OSC sink coalesces per-track to the most recent
// value and enforces a minimum inter-send interval.
package sink

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/marmorek/animos/internal/types"
)

// Update is one track's computed position for this tick.
type Update struct {
	Track types.TrackID
	Pos   types.Position
	Space types.CoordSpace
}

// Sink receives per-tick batches from the engine.
type Sink interface {
	SendBatch(updates []Update) error
	Close() error
}

// Stats are cumulative sink counters, readable from any goroutine.
type Stats struct {
	Sends     uint64
	Messages  uint64
	Coalesced uint64
	Failures  uint64
}

// OSCSink sends /track/<id>/xyz or /track/<id>/aed bundles over UDP.
type OSCSink struct {
	client      *osc.Client
	minInterval time.Duration
	now         func() time.Time

	mu       sync.Mutex
	pending  map[types.TrackID]Update
	lastSend time.Time
	stats    Stats
}

// NewOSC builds a sink for the given host/port. A minInterval of zero
// disables rate limiting. The first batch is sent without waiting.
func NewOSC(host string, port int, minInterval time.Duration) *OSCSink {
	return &OSCSink{
		client:      osc.NewClient(host, port),
		minInterval: minInterval,
		now:         time.Now,
		pending:     make(map[types.TrackID]Update),
	}
}

// SendBatch coalesces the batch into the per-track pending set and flushes
// when the rate limit allows. Holding updates back never reorders a track's
// samples; a newer value simply replaces the pending one.
func (s *OSCSink) SendBatch(updates []Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range updates {
		if _, held := s.pending[u.Track]; held {
			s.stats.Coalesced++
		}
		s.pending[u.Track] = u
	}
	if len(s.pending) == 0 {
		return nil
	}
	if now := s.now(); now.Sub(s.lastSend) >= s.minInterval {
		return s.flushLocked(now)
	}
	return nil
}

// flushLocked sends everything pending as one bundle in ascending track
// order. On failure the pending set is kept for the next tick's retry.
func (s *OSCSink) flushLocked(now time.Time) error {
	ids := make([]types.TrackID, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	bundle := osc.NewBundle(now)
	for _, id := range ids {
		bundle.Append(Message(s.pending[id]))
	}
	if err := s.client.Send(bundle); err != nil {
		s.stats.Failures++
		log.Printf("osc send failed (%d updates held): %v", len(ids), err)
		return err
	}
	s.stats.Sends++
	s.stats.Messages += uint64(len(ids))
	s.lastSend = now
	for id := range s.pending {
		delete(s.pending, id)
	}
	return nil
}

// Close flushes whatever is still pending, ignoring the rate limit.
func (s *OSCSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}
	return s.flushLocked(s.now())
}

// Stats returns a snapshot of the counters.
func (s *OSCSink) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Message builds the absolute-form OSC message for an update. Arguments are
// float32 per the wire convention.
func Message(u Update) *osc.Message {
	if u.Space == types.SpaceAED {
		aed := types.ToAED(u.Pos)
		msg := osc.NewMessage(fmt.Sprintf("/track/%d/aed", u.Track))
		msg.Append(float32(aed.Azimuth))
		msg.Append(float32(aed.Elevation))
		msg.Append(float32(aed.Distance))
		return msg
	}
	msg := osc.NewMessage(fmt.Sprintf("/track/%d/xyz", u.Track))
	msg.Append(float32(u.Pos.X))
	msg.Append(float32(u.Pos.Y))
	msg.Append(float32(u.Pos.Z))
	return msg
}

// IncrementMessage builds one of the per-axis incremental forms (x+, x-,
// y+, …, azim+, elev-, dist+). The sign of delta picks the direction; the
// argument is always the magnitude.
func IncrementMessage(track types.TrackID, axis string, delta float64) *osc.Message {
	dir := "+"
	if delta < 0 {
		dir = "-"
		delta = -delta
	}
	msg := osc.NewMessage(fmt.Sprintf("/track/%d/%s%s", track, axis, dir))
	msg.Append(float32(delta))
	return msg
}
