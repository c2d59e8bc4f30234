package engine

import (
	"log"
	"math"
	"time"

	"github.com/marmorek/animos/internal/sink"
	"github.com/marmorek/animos/internal/transform"
	"github.com/marmorek/animos/internal/types"
)

// evaluate computes one sample for every owned track of every live clip and
// hands the batch to the sink. Track updates go out in ascending track order
// within a clip, clips in creation order, so a tick's output is reproducible.
func (e *Engine) evaluate(now time.Time) {
	e.batch = e.batch[:0]

	for _, id := range e.clipOrder {
		c := e.clips[id]
		switch c.state {
		case types.ClipPaused, types.ClipFinished:
			continue
		}

		tau := c.tau(now)
		stopElapsed := -1.0
		if c.state == types.ClipStopping {
			stopElapsed = now.Sub(c.stopAt).Seconds()
		}

		finished := false
		for _, tr := range c.tracks {
			pos, fin, err := transform.Compute(transform.Input{
				Anim:        c.anim,
				Model:       c.model,
				Track:       tr,
				TrackIndex:  c.order[tr],
				Tau:         tau,
				Initial:     e.proj.InitialPosition(tr),
				FadeOut:     c.fadeOut,
				StopElapsed: stopElapsed,
			})
			if err != nil {
				// ownership outside the formation map cannot happen by
				// construction; isolate the sample and keep the engine alive
				e.diag.FormationSkips++
				log.Printf("clip %d track %d: %v (sample skipped)", c.id, tr, err)
				continue
			}
			if !types.Finite(pos) {
				e.diag.BadSamples++
				log.Printf("clip %d track %d: non-finite sample suppressed", c.id, tr)
				continue
			}
			finished = finished || fin
			if e.changed(tr, pos) {
				e.batch = append(e.batch, sink.Update{Track: tr, Pos: pos, Space: c.anim.Space})
				e.lastEmit[tr] = pos
			}
		}
		if finished {
			// terminal sample is already in the batch; the clip goes now
			c.state = types.ClipFinished
		}
	}

	// offer the batch every tick; the sink rate-limits and coalesces
	if err := e.out.SendBatch(e.batch); err != nil {
		log.Printf("sink: %v (will retry)", err)
	}

	e.removeFinished()
}

// changed applies per-axis epsilon suppression against the last emitted
// value for the track.
func (e *Engine) changed(tr types.TrackID, pos types.Position) bool {
	last, ok := e.lastEmit[tr]
	if !ok {
		return true
	}
	eps := e.cfg.Epsilon
	return math.Abs(pos.X-last.X) >= eps ||
		math.Abs(pos.Y-last.Y) >= eps ||
		math.Abs(pos.Z-last.Z) >= eps
}
