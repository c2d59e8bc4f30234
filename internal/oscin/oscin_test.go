package oscin

import (
	"testing"

	"github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/assert"

	"github.com/marmorek/animos/internal/project"
	"github.com/marmorek/animos/internal/types"
)

type recordEngine struct {
	triggered []string
	stopFades []float64
}

func (r *recordEngine) TriggerCue(cueID string) (types.ClipID, error) {
	r.triggered = append(r.triggered, cueID)
	return types.ClipID(len(r.triggered)), nil
}

func (r *recordEngine) StopAll(fadeSeconds float64) error {
	r.stopFades = append(r.stopFades, fadeSeconds)
	return nil
}

func testProject() *project.Project {
	p := &project.Project{
		Cues: []project.Cue{
			{ID: "opening"},
			{
				ID: "finale",
				Triggers: []project.TriggerBinding{
					{Kind: project.TriggerOSC, Address: "/show/finale"},
					{Kind: project.TriggerHotkey, Key: "f"},
				},
			},
		},
	}
	p.Reindex()
	return p
}

func TestDefaultCueAddresses(t *testing.T) {
	eng := &recordEngine{}
	d := newDispatcher(testProject(), eng)

	d.Dispatch(osc.NewMessage("/cue/opening/go"))
	d.Dispatch(osc.NewMessage("/cue/finale/go"))
	assert.Equal(t, []string{"opening", "finale"}, eng.triggered)
}

func TestExplicitOSCBinding(t *testing.T) {
	eng := &recordEngine{}
	d := newDispatcher(testProject(), eng)

	d.Dispatch(osc.NewMessage("/show/finale"))
	assert.Equal(t, []string{"finale"}, eng.triggered)
}

func TestUnknownAddressIgnored(t *testing.T) {
	eng := &recordEngine{}
	d := newDispatcher(testProject(), eng)

	d.Dispatch(osc.NewMessage("/cue/bogus/go"))
	assert.Empty(t, eng.triggered)
}

func TestStopAll(t *testing.T) {
	eng := &recordEngine{}
	d := newDispatcher(testProject(), eng)

	d.Dispatch(osc.NewMessage("/engine/stopall"))

	msg := osc.NewMessage("/engine/stopall")
	msg.Append(float32(1.5))
	d.Dispatch(msg)

	assert.Equal(t, []float64{0, 1.5}, eng.stopFades)
}
