package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmorek/animos/internal/models"
	"github.com/marmorek/animos/internal/project"
	"github.com/marmorek/animos/internal/types"
)

// linearAnim produces position (tau/duration, 0, 0) for easy arithmetic.
func linearAnim(t *testing.T, duration float64) (*project.Animation, models.Model) {
	t.Helper()
	values, err := models.Validate("linear", map[string]float64{"end_x": 1}, 0)
	require.NoError(t, err)
	anim := &project.Animation{
		ID:         "lin",
		Type:       "linear",
		Duration:   duration,
		Parameters: values,
	}
	m, ok := models.Lookup("linear")
	require.True(t, ok)
	return anim, m
}

func TestNormalize(t *testing.T) {
	// non-looping clamps
	assert.Equal(t, 0.5, normalize(2, 4, false, false))
	assert.Equal(t, 1.0, normalize(5, 4, false, false))

	// looping wraps
	assert.InDelta(t, 0.25, normalize(5, 4, true, false), 1e-12)

	// ping-pong folds back
	assert.InDelta(t, 0.75, normalize(5, 4, true, true), 1e-12)
	// at exactly the duration, ping-pong sits on the end point
	assert.InDelta(t, 1.0, normalize(4, 4, true, true), 1e-12)
	assert.InDelta(t, 0.0, normalize(8, 4, true, true), 1e-12)
}

func TestComputeFinishesPastDuration(t *testing.T) {
	anim, m := linearAnim(t, 4)
	pos, finished, err := Compute(Input{
		Anim: anim, Model: m, Track: 1, Tau: 5, StopElapsed: -1,
	})
	require.NoError(t, err)
	assert.True(t, finished)
	// the terminal sample is the tau = duration value
	assert.InDelta(t, 1.0, pos.X, 1e-12)
}

func TestRelativeZeroOffsetsMatchNone(t *testing.T) {
	anim, m := linearAnim(t, 4)
	rel := *anim
	rel.Transform = project.Transform{
		Kind: project.TransformRelative,
		Offsets: map[types.TrackID]types.Position{
			1: {}, 2: {},
		},
	}
	for _, tau := range []float64{0, 1, 2.5, 4} {
		a, _, err := Compute(Input{Anim: anim, Model: m, Track: 1, Tau: tau, StopElapsed: -1})
		require.NoError(t, err)
		b, _, err := Compute(Input{Anim: &rel, Model: m, Track: 1, Tau: tau, StopElapsed: -1})
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestPhaseOffsets(t *testing.T) {
	anim, m := linearAnim(t, 4)
	anim.Transform = project.Transform{Kind: project.TransformPhase, PhaseSeconds: 1}

	// at tau=2: track 0 at 0.5, track 1 at 0.25, track 2 clamped to 0
	expect := []float64{0.5, 0.25, 0}
	for k, want := range expect {
		pos, _, err := Compute(Input{Anim: anim, Model: m, Track: types.TrackID(k + 1), TrackIndex: k, Tau: 2, StopElapsed: -1})
		require.NoError(t, err)
		assert.InDelta(t, want, pos.X, 1e-12, "track index %d", k)
	}
}

func TestPhaseZeroIdenticalAcrossTracks(t *testing.T) {
	anim, m := linearAnim(t, 4)
	anim.Transform = project.Transform{Kind: project.TransformPhase, PhaseSeconds: 0}
	var first types.Position
	for k := 0; k < 3; k++ {
		pos, _, err := Compute(Input{Anim: anim, Model: m, Track: types.TrackID(k + 1), TrackIndex: k, Tau: 1.5, StopElapsed: -1})
		require.NoError(t, err)
		if k == 0 {
			first = pos
		} else {
			assert.Equal(t, first, pos)
		}
	}
}

func TestBarycentricOffsetsAndShifts(t *testing.T) {
	anim, m := linearAnim(t, 4)
	anim.Transform = project.Transform{
		Kind: project.TransformBarycentric,
		Offsets: map[types.TrackID]types.Position{
			1: {Y: 1},
			2: {Y: -1},
		},
		TimeShifts: map[types.TrackID]float64{2: 2},
	}

	p1, _, err := Compute(Input{Anim: anim, Model: m, Track: 1, Tau: 2, StopElapsed: -1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p1.X, 1e-12)
	assert.InDelta(t, 1.0, p1.Y, 1e-12)

	// track 2 runs two seconds behind and carries its own offset
	p2, _, err := Compute(Input{Anim: anim, Model: m, Track: 2, Tau: 2, StopElapsed: -1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, p2.X, 1e-12)
	assert.InDelta(t, -1.0, p2.Y, 1e-12)

	// a track outside the formation map is an invariant violation
	_, _, err = Compute(Input{Anim: anim, Model: m, Track: 9, Tau: 2, StopElapsed: -1})
	assert.Error(t, err)
}

func TestFadeIn(t *testing.T) {
	anim, m := linearAnim(t, 4)
	anim.FadeIn = &project.Fade{Seconds: 2}
	initial := types.Position{X: 10}

	// at tau=0 the track sits at its initial position
	pos, _, err := Compute(Input{Anim: anim, Model: m, Track: 1, Tau: 0, Initial: initial, StopElapsed: -1})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, pos.X, 1e-12)

	// halfway through the fade: halfway between initial and the model value
	pos, _, err = Compute(Input{Anim: anim, Model: m, Track: 1, Tau: 1, Initial: initial, StopElapsed: -1})
	require.NoError(t, err)
	assert.InDelta(t, (10.0+0.25)/2, pos.X, 1e-12)

	// after the fade the model value is unmodified
	pos, _, err = Compute(Input{Anim: anim, Model: m, Track: 1, Tau: 3, Initial: initial, StopElapsed: -1})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, pos.X, 1e-12)
}

func TestStopFadeOut(t *testing.T) {
	anim, m := linearAnim(t, 4)
	anim.Loop = true
	initial := types.Position{X: -1}
	fade := &project.Fade{Seconds: 2}

	// mid-fade blends toward the initial position
	pos, finished, err := Compute(Input{
		Anim: anim, Model: m, Track: 1, Tau: 2, Initial: initial,
		FadeOut: fade, StopElapsed: 1,
	})
	require.NoError(t, err)
	assert.False(t, finished)
	assert.InDelta(t, (0.5-1)/2, pos.X, 1e-12)

	// fade complete: terminal sample at the initial position
	pos, finished, err = Compute(Input{
		Anim: anim, Model: m, Track: 1, Tau: 3, Initial: initial,
		FadeOut: fade, StopElapsed: 2,
	})
	require.NoError(t, err)
	assert.True(t, finished)
	assert.Equal(t, initial, pos)
}

func TestImmediateStop(t *testing.T) {
	anim, m := linearAnim(t, 4)
	initial := types.Position{X: 7}
	pos, finished, err := Compute(Input{
		Anim: anim, Model: m, Track: 1, Tau: 2, Initial: initial, StopElapsed: 0,
	})
	require.NoError(t, err)
	assert.True(t, finished)
	assert.Equal(t, initial, pos)
}

func TestEasingNames(t *testing.T) {
	for _, name := range []string{"", "linear", "in", "out", "inout", "unknown"} {
		fn := Easing(name)
		assert.InDelta(t, 0.0, fn(0), 1e-12, name)
		assert.InDelta(t, 1.0, fn(1), 1e-12, name)
	}
}
