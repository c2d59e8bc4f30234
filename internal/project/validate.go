package project

import (
	"fmt"

	"github.com/marmorek/animos/internal/models"
	"github.com/marmorek/animos/internal/types"
)

// Validate checks every animation, preset, and cue against the model registry
// and the track list. It normalizes animation parameters in place (defaults
// filled, ranges enforced) so the engine never re-validates per trigger.
func (p *Project) Validate() error {
	for i := range p.Animations {
		if err := p.validateAnimation(&p.Animations[i]); err != nil {
			return err
		}
	}
	for i := range p.Presets {
		pr := &p.Presets[i]
		if pr.Duration <= 0 {
			return fmt.Errorf("preset %s: duration must be positive", pr.ID)
		}
		values, err := models.Validate(pr.Type, pr.Parameters, len(pr.Points))
		if err != nil {
			return fmt.Errorf("preset %s: %w", pr.ID, err)
		}
		pr.Parameters = values
	}
	for i := range p.Cues {
		if err := p.validateCue(&p.Cues[i]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Project) validateAnimation(a *Animation) error {
	if a.ID == "" {
		return fmt.Errorf("animation %q: missing id", a.Name)
	}
	if a.Duration <= 0 {
		return fmt.Errorf("animation %s: duration must be positive", a.ID)
	}
	values, err := models.Validate(a.Type, a.Parameters, len(a.Points))
	if err != nil {
		return fmt.Errorf("animation %s: %w", a.ID, err)
	}
	a.Parameters = values

	switch a.Transform.Kind {
	case TransformBarycentric:
		if len(a.Transform.Offsets) == 0 {
			return fmt.Errorf("animation %s: barycentric transform with empty formation", a.ID)
		}
		for id := range a.Transform.TimeShifts {
			if _, ok := a.Transform.Offsets[id]; !ok {
				return fmt.Errorf("animation %s: time shift for track %d outside formation", a.ID, id)
			}
		}
	case TransformPhase:
		if a.Transform.PhaseSeconds < 0 {
			return fmt.Errorf("animation %s: negative phase offset", a.ID)
		}
	}

	for _, id := range a.LockedTracks {
		if _, ok := p.tracks[id]; !ok {
			return fmt.Errorf("animation %s: locked track %d not in project", a.ID, id)
		}
	}
	if a.FadeIn != nil && a.FadeIn.Seconds < 0 {
		return fmt.Errorf("animation %s: negative fade in", a.ID)
	}
	if a.FadeOut != nil && a.FadeOut.Seconds < 0 {
		return fmt.Errorf("animation %s: negative fade out", a.ID)
	}
	return nil
}

func (p *Project) validateCue(c *Cue) error {
	if c.ID == "" {
		return fmt.Errorf("cue %q: missing id", c.Name)
	}
	switch c.Source.Kind {
	case SourceAnimation:
		if _, ok := p.animations[c.Source.AnimationID]; !ok {
			return fmt.Errorf("cue %s: unknown animation %q", c.ID, c.Source.AnimationID)
		}
	case SourcePreset:
		if _, ok := p.presets[c.Source.PresetID]; !ok {
			return fmt.Errorf("cue %s: unknown preset %q", c.ID, c.Source.PresetID)
		}
	}
	check := func(ids []types.TrackID) error {
		for _, id := range ids {
			if _, ok := p.tracks[id]; !ok {
				return fmt.Errorf("cue %s: unknown track %d", c.ID, id)
			}
		}
		return nil
	}
	if err := check(c.Source.OverrideTracks); err != nil {
		return err
	}
	return check(c.Source.SelectedTracks)
}
