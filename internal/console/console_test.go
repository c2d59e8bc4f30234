package console

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmorek/animos/internal/engine"
	"github.com/marmorek/animos/internal/project"
	"github.com/marmorek/animos/internal/types"
)

type fakeEngine struct {
	triggered []string
	stopped   []types.ClipID
	stopAll   int
	clips     []engine.ClipInfo
}

func (f *fakeEngine) TriggerCue(cueID string) (types.ClipID, error) {
	f.triggered = append(f.triggered, cueID)
	return types.ClipID(len(f.triggered)), nil
}

func (f *fakeEngine) StopClip(clip types.ClipID, fadeSeconds float64) error {
	f.stopped = append(f.stopped, clip)
	return nil
}

func (f *fakeEngine) PauseClip(clip types.ClipID) error  { return nil }
func (f *fakeEngine) ResumeClip(clip types.ClipID) error { return nil }

func (f *fakeEngine) StopAll(fadeSeconds float64) error {
	f.stopAll++
	return nil
}

func (f *fakeEngine) ActiveClips() []engine.ClipInfo { return f.clips }
func (f *fakeEngine) Stats() engine.Diagnostics      { return engine.Diagnostics{} }

func testModel() (*Model, *fakeEngine) {
	proj := &project.Project{
		Name: "console test",
		Cues: []project.Cue{
			{ID: "c1", Name: "Circle sweep", Number: 1},
			{ID: "c2", Name: "Finale", Number: 2},
		},
	}
	proj.Reindex()
	eng := &fakeEngine{}
	return New(eng, proj), eng
}

func sizedPair(t *testing.T) (*Model, *fakeEngine) {
	t.Helper()
	m, eng := testModel()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(*Model), eng
}

func TestViewListsCues(t *testing.T) {
	m, _ := sizedPair(t)
	view := m.View()
	assert.Contains(t, view, "Circle sweep")
	assert.Contains(t, view, "Finale")
	assert.Contains(t, view, "console test")
}

func TestEnterFiresSelectedCue(t *testing.T) {
	m, eng := sizedPair(t)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"c1"}, eng.triggered)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"c1", "c2"}, eng.triggered)
}

func TestDigitFiresByNumber(t *testing.T) {
	m, eng := sizedPair(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	assert.Equal(t, []string{"c2"}, eng.triggered)
}

func TestStopKeys(t *testing.T) {
	m, eng := sizedPair(t)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter}) // start clip 1
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.Equal(t, []types.ClipID{1}, eng.stopped)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("S")})
	assert.Equal(t, 1, eng.stopAll)
}

func TestActiveClipsRendered(t *testing.T) {
	m, eng := sizedPair(t)
	eng.clips = []engine.ClipInfo{
		{ID: 3, AnimationID: "anim.orbit", State: types.ClipPlaying, Progress: 0.5, Tracks: []types.TrackID{1, 2}},
	}
	view := m.View()
	assert.Contains(t, view, "anim.orbit")
	assert.Contains(t, view, "playing")
}

func TestEventLog(t *testing.T) {
	m, _ := sizedPair(t)
	m.appendEvent(engine.Event{Type: engine.EventStarted, ClipID: 9, CueID: "c1", Tracks: []types.TrackID{1}})
	m.appendEvent(engine.Event{Type: engine.EventWarning, Message: "formation subset"})
	view := m.View()
	assert.Contains(t, view, "clip 9 started")
	assert.Contains(t, view, "formation subset")
}

func TestEventChannelFeedsLog(t *testing.T) {
	m, _ := sizedPair(t)
	require.NotNil(t, m.Events())
	m.Events() <- engine.Event{Type: engine.EventFinished, ClipID: 4}
	// the wait command delivers the queued event as a message
	msg := m.waitForEvent()()
	updated, _ := m.Update(msg)
	assert.Contains(t, updated.(*Model).View(), "clip 4 finished")
}
