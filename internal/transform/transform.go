// Package transform computes final track positions from a model's base
// output: clip-local timing, loop/ping-pong folding, per-track phase and
// formation offsets, and fade envelopes. Everything here is stateless.
package transform

import (
	"fmt"
	"math"

	"github.com/fogleman/ease"
	"github.com/marmorek/animos/internal/models"
	"github.com/marmorek/animos/internal/project"
	"github.com/marmorek/animos/internal/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// Input is everything needed to place one track of one clip at one instant.
type Input struct {
	Anim       *project.Animation
	Model      models.Model
	Track      types.TrackID
	TrackIndex int     // index in the clip's ordered track list
	Tau        float64 // clip-local seconds (wall time minus start minus pauses)
	Initial    types.Position

	// Stop fade. StopElapsed is seconds since the stop was requested;
	// negative when the clip is not stopping.
	FadeOut     *project.Fade
	StopElapsed float64
}

// Compute returns the track's final position, whether the clip has reached
// its terminal sample (non-looping clips past duration, or fade-out
// complete), and an error on a formation map violation.
func Compute(in Input) (types.Position, bool, error) {
	a := in.Anim
	d := a.Duration

	finished := false
	tau := in.Tau
	if tau >= d && !a.Loop {
		// emit the tau = duration sample, then the engine retires the clip
		tau = d
		finished = true
	}

	tk := trackTime(a, in.TrackIndex, in.Track, tau)
	t := normalize(tk, d, a.Loop, a.PingPong)

	pos := in.Model.Evaluate(models.Params{Values: a.Parameters, Points: a.Points}, t)

	pos, err := applySpatial(a.Transform, in.Track, pos)
	if err != nil {
		return types.Position{}, finished, err
	}

	if a.FadeIn != nil && a.FadeIn.Seconds > 0 && in.Tau < a.FadeIn.Seconds {
		p := in.Tau / a.FadeIn.Seconds
		pos = types.Lerp(in.Initial, pos, Easing(a.FadeIn.Easing)(clamp01(p)))
	}

	if in.StopElapsed >= 0 {
		if in.FadeOut == nil || in.FadeOut.Seconds <= 0 {
			return in.Initial, true, nil
		}
		p := in.StopElapsed / in.FadeOut.Seconds
		if p >= 1 {
			return in.Initial, true, nil
		}
		pos = types.Lerp(pos, in.Initial, Easing(in.FadeOut.Easing)(clamp01(p)))
	}

	return pos, finished, nil
}

// trackTime offsets clip-local time for the track's slot in the transform.
// Negative offsets clamp to zero: the track holds its t=0 sample until its
// phase activates.
func trackTime(a *project.Animation, index int, track types.TrackID, tau float64) float64 {
	switch a.Transform.Kind {
	case project.TransformPhase:
		return math.Max(0, tau-float64(index)*a.Transform.PhaseSeconds)
	case project.TransformBarycentric:
		if shift, ok := a.Transform.TimeShifts[track]; ok {
			return math.Max(0, tau-shift)
		}
	}
	return tau
}

// normalize folds clip-local seconds into the model's t in [0,1] under the
// loop/ping-pong policy.
func normalize(tau, duration float64, loop, pingPong bool) float64 {
	if duration <= 0 {
		return 0
	}
	if !loop {
		return clamp01(tau / duration)
	}
	if !pingPong {
		t := math.Mod(tau/duration, 1)
		if t < 0 {
			t += 1
		}
		return t
	}
	p := math.Mod(tau/duration, 2)
	if p < 0 {
		p += 2
	}
	if p <= 1 {
		return p
	}
	return 2 - p
}

// applySpatial adds the per-track offset for the transform variants that
// carry one. A barycentric lookup miss is an ownership invariant violation:
// the caller must never own a track outside the formation.
func applySpatial(tr project.Transform, track types.TrackID, base types.Position) (types.Position, error) {
	switch tr.Kind {
	case project.TransformRelative, project.TransformBarycentric:
		off, ok := tr.Offsets[track]
		if !ok {
			if tr.Kind == project.TransformBarycentric {
				return base, fmt.Errorf("track %d outside formation", track)
			}
			return base, nil
		}
		return r3.Add(base, off), nil
	case project.TransformPhase:
		if tr.PhaseRelative {
			if off, ok := tr.Offsets[track]; ok {
				return r3.Add(base, off), nil
			}
		}
		return base, nil
	default:
		return base, nil
	}
}

// Easing maps an envelope's easing name to its curve. Unknown names fall
// back to linear.
func Easing(name string) func(float64) float64 {
	switch name {
	case "in":
		return ease.InQuad
	case "out":
		return ease.OutQuad
	case "inout":
		return ease.InOutQuad
	default:
		return ease.Linear
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
