package engine

import (
	"log"

	"github.com/marmorek/animos/internal/types"
)

// arbitrate resolves ownership conflicts before a new clip takes the
// requested tracks: latest takes precedence. A clip losing every owned track
// is retired; a clip losing some continues for the remainder (a split). All
// releases happen before the caller inserts the new clip, so the single-owner
// invariant holds at every observable point.
func (e *Engine) arbitrate(requested []types.TrackID) {
	reqSet := make(map[types.TrackID]struct{}, len(requested))
	for _, tr := range requested {
		reqSet[tr] = struct{}{}
	}

	for _, id := range append([]types.ClipID(nil), e.clipOrder...) {
		c := e.clips[id]
		if c == nil || c.state == types.ClipFinished {
			continue
		}
		conflict := make([]types.TrackID, 0)
		for _, tr := range c.tracks {
			if _, ok := reqSet[tr]; ok {
				conflict = append(conflict, tr)
			}
		}
		if len(conflict) == 0 {
			continue
		}
		if !e.allowTakeover(c) {
			// reserved priority hook; pure LTP never refuses
			continue
		}

		if len(conflict) == len(c.tracks) {
			// complete takeover: the clip has nothing left to play
			e.releaseTracks(c, conflict, types.ReleaseLTP)
			c.tracks = nil
			c.state = types.ClipFinished
			log.Printf("clip %d fully displaced by new trigger", c.id)
			continue
		}

		// partial takeover: split. None/Relative/Phase tolerate any subset;
		// a barycentric split keeps a non-empty subset of the formation keys
		// (guaranteed, since ownership never leaves the formation), so the
		// geometry survives for the retained members.
		e.releaseTracks(c, conflict, types.ReleaseLTP)
		remaining := make([]types.TrackID, 0, len(c.tracks)-len(conflict))
		for _, tr := range c.tracks {
			if _, taken := reqSet[tr]; !taken {
				remaining = append(remaining, tr)
			}
		}
		c.tracks = remaining
		log.Printf("clip %d split: released %v, keeps %v", c.id, conflict, remaining)
	}
}

// allowTakeover is the reserved priority hook. Default behavior is pure LTP:
// a later trigger always wins; ties cannot happen because clip ids are
// strictly increasing.
func (e *Engine) allowTakeover(old *Clip) bool {
	return true
}

// releaseTracks removes the tracks from the owner index and notifies
// subscribers.
func (e *Engine) releaseTracks(c *Clip, tracks []types.TrackID, reason types.ReleaseReason) {
	if len(tracks) == 0 {
		return
	}
	for _, tr := range tracks {
		if e.owners[tr] == c.id {
			delete(e.owners, tr)
		}
	}
	e.emit(Event{
		Type:        EventTracksReleased,
		ClipID:      c.id,
		CueID:       c.cueID,
		AnimationID: c.anim.ID,
		Tracks:      append([]types.TrackID(nil), tracks...),
		Reason:      reason,
	})
}

// removeFinished drops finished clips from the registry and releases any
// tracks they still hold.
func (e *Engine) removeFinished() {
	kept := e.clipOrder[:0]
	for _, id := range e.clipOrder {
		c := e.clips[id]
		if c.state != types.ClipFinished {
			kept = append(kept, id)
			continue
		}
		reason := types.ReleaseFinished
		if c.stopRequested {
			reason = types.ReleaseStop
		}
		e.releaseTracks(c, c.tracks, reason)
		c.tracks = nil
		e.emit(Event{
			Type:        EventFinished,
			ClipID:      c.id,
			CueID:       c.cueID,
			AnimationID: c.anim.ID,
		})
		delete(e.clips, id)
		log.Printf("clip %d finished", id)
	}
	e.clipOrder = kept
}

// owner answers which clip owns a track, for tests and diagnostics.
func (e *Engine) owner(tr types.TrackID) (types.ClipID, bool) {
	id, ok := e.owners[tr]
	return id, ok
}
