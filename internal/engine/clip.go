package engine

import (
	"time"

	"github.com/marmorek/animos/internal/models"
	"github.com/marmorek/animos/internal/project"
	"github.com/marmorek/animos/internal/types"
)

// Clip is one live execution of a cue. The animation reference is immutable
// for the clip's lifetime; ownership may shrink under LTP but never grows.
type Clip struct {
	id    types.ClipID
	cueID string

	anim  *project.Animation
	model models.Model

	// tracks is the owned set, ascending. order remembers each track's slot
	// in the originally requested list, which the phase transform indexes by.
	tracks []types.TrackID
	order  map[types.TrackID]int

	start      time.Time
	pauseAccum time.Duration
	pausedAt   time.Time
	state      types.ClipState

	// stop fade bookkeeping
	fadeOut       *project.Fade
	stopAt        time.Time
	stopRequested bool
}

// tau is clip-local time in seconds: wall time minus start minus accumulated
// pauses. Frozen while paused.
func (c *Clip) tau(now time.Time) float64 {
	if c.state == types.ClipPaused {
		now = c.pausedAt
	}
	return now.Sub(c.start).Seconds() - c.pauseAccum.Seconds()
}

// progress is tau over duration, clamped to [0,1]. Looping clips report the
// position within the current cycle.
func (c *Clip) progress(now time.Time) float64 {
	if c.anim.Duration <= 0 {
		return 0
	}
	p := c.tau(now) / c.anim.Duration
	if c.anim.Loop {
		p = p - float64(int(p))
		if p < 0 {
			p += 1
		}
		return p
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// ownedSet returns the owned tracks as a set for intersection tests.
func (c *Clip) ownedSet() map[types.TrackID]struct{} {
	set := make(map[types.TrackID]struct{}, len(c.tracks))
	for _, id := range c.tracks {
		set[id] = struct{}{}
	}
	return set
}

// ClipInfo is the UI-facing view of a clip.
type ClipInfo struct {
	ID          types.ClipID
	CueID       string
	AnimationID string
	State       types.ClipState
	Progress    float64
	Tracks      []types.TrackID
}
