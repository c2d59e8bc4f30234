package project

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmorek/animos/internal/types"
)

func testProject() *Project {
	p := &Project{
		Name: "test show",
		Tracks: []Track{
			{ID: 1, Name: "vox", Initial: types.Position{X: 1}},
			{ID: 2, Name: "synth", Initial: types.Position{Y: 2}},
			{ID: 3, Name: "drums"},
		},
		Animations: []Animation{
			{
				ID:       "anim.circle",
				Name:     "Circle",
				Type:     "circular",
				Duration: 10,
				Loop:     true,
				Parameters: map[string]float64{
					"radius": 2,
				},
			},
			{
				ID:       "anim.formation",
				Name:     "Formation",
				Type:     "linear",
				Duration: 6,
				Transform: Transform{
					Kind: TransformBarycentric,
					Offsets: map[types.TrackID]types.Position{
						1: {Y: 1},
						2: {Y: -1},
					},
					Anchor: types.Position{},
				},
			},
		},
		Cues: []Cue{
			{
				ID:     "cue.1",
				Name:   "Go circle",
				Number: 1,
				Source: CueSource{
					Kind:           SourceAnimation,
					AnimationID:    "anim.circle",
					OverrideTracks: []types.TrackID{1, 2},
				},
			},
		},
	}
	p.Reindex()
	return p
}

func TestIndexLookups(t *testing.T) {
	p := testProject()

	track, ok := p.Track(2)
	require.True(t, ok)
	assert.Equal(t, "synth", track.Name)

	_, ok = p.Track(99)
	assert.False(t, ok)

	anim, ok := p.Animation("anim.circle")
	require.True(t, ok)
	assert.Equal(t, 10.0, anim.Duration)

	cue, ok := p.CueByNumber(1)
	require.True(t, ok)
	assert.Equal(t, "cue.1", cue.ID)

	assert.Equal(t, types.Position{X: 1}, p.InitialPosition(1))
	assert.Equal(t, types.Position{}, p.InitialPosition(42))
}

func TestValidateNormalizesParams(t *testing.T) {
	p := testProject()
	require.NoError(t, p.Validate())

	anim, _ := p.Animation("anim.circle")
	// defaults filled in by validation
	assert.Equal(t, 1.0, anim.Parameters["revolutions"])
	assert.Equal(t, 2.0, anim.Parameters["radius"])
}

func TestValidateRejects(t *testing.T) {
	p := testProject()
	p.Animations[0].Parameters["radius"] = -5
	assert.Error(t, p.Validate())

	p = testProject()
	p.Animations[0].Duration = 0
	assert.Error(t, p.Validate())

	p = testProject()
	p.Animations[1].Transform.Offsets = nil
	assert.Error(t, p.Validate())

	p = testProject()
	p.Animations[1].Transform.TimeShifts = map[types.TrackID]float64{9: 1}
	assert.Error(t, p.Validate())

	p = testProject()
	p.Cues[0].Source.OverrideTracks = []types.TrackID{1, 99}
	assert.Error(t, p.Validate())

	p = testProject()
	p.Cues[0].Source.AnimationID = "missing"
	assert.Error(t, p.Validate())

	p = testProject()
	p.Animations[0].LockedTracks = []types.TrackID{88}
	assert.Error(t, p.Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"show.json", "show.json.gz"} {
		path := filepath.Join(dir, name)
		p := testProject()
		require.NoError(t, Save(p, path))

		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, p.Name, loaded.Name)
		assert.Len(t, loaded.Tracks, 3)
		assert.Len(t, loaded.Animations, 2)

		anim, ok := loaded.Animation("anim.formation")
		require.True(t, ok)
		assert.Equal(t, TransformBarycentric, anim.Transform.Kind)
		assert.Equal(t, types.Position{Y: 1}, anim.Transform.Offsets[1])

		cue, ok := loaded.Cue("cue.1")
		require.True(t, ok)
		assert.Equal(t, []types.TrackID{1, 2}, cue.Source.OverrideTracks)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestEnsureBuiltins(t *testing.T) {
	p := testProject()
	p.EnsureBuiltins()
	preset, ok := p.Preset("preset.circle")
	require.True(t, ok)
	assert.Equal(t, "circular", preset.Type)

	// idempotent
	count := len(p.Presets)
	p.EnsureBuiltins()
	assert.Equal(t, count, len(p.Presets))

	// builtin params validate against their schemas
	require.NoError(t, p.Validate())
}

func TestFormationTracksSorted(t *testing.T) {
	tr := Transform{
		Kind: TransformBarycentric,
		Offsets: map[types.TrackID]types.Position{
			5: {}, 1: {}, 3: {},
		},
	}
	assert.Equal(t, []types.TrackID{1, 3, 5}, tr.FormationTracks())
}
