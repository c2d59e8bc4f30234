// Package project defines the persisted show entities the engine consumes:
// tracks, animation definitions, presets, and cues. The store format is
// JSON, gzipped when the file name ends in .gz.
package project

import (
	"fmt"
	"sort"

	"github.com/marmorek/animos/internal/types"
)

// TransformKind tags the multi-track behavior of an animation.
type TransformKind int

const (
	// TransformNone: every track gets the model's base output.
	TransformNone TransformKind = iota
	// TransformRelative: each track adds a fixed per-track offset.
	TransformRelative
	// TransformBarycentric: a formation. Offsets and time shifts were
	// captured over a specific track cohort and are immutable afterwards.
	TransformBarycentric
	// TransformPhase: track k in the cue's order evaluates at t - k*phase.
	TransformPhase
)

func (k TransformKind) String() string {
	switch k {
	case TransformRelative:
		return "relative"
	case TransformBarycentric:
		return "barycentric"
	case TransformPhase:
		return "phase"
	default:
		return "none"
	}
}

// Transform describes how a model's base output maps onto multiple tracks.
// Exactly one variant applies, selected by Kind; the other fields are only
// meaningful for their variant.
type Transform struct {
	Kind TransformKind `json:"kind"`

	// Relative and Barycentric
	Offsets map[types.TrackID]types.Position `json:"offsets,omitempty"`

	// Barycentric only
	TimeShifts map[types.TrackID]float64 `json:"time_shifts,omitempty"`
	Anchor     types.Position            `json:"anchor,omitempty"`

	// Phase only
	PhaseSeconds float64 `json:"phase_seconds,omitempty"`
	// PhaseRelative composes the phase offset with per-track offsets.
	PhaseRelative bool `json:"phase_relative,omitempty"`
}

// FormationTracks returns the saved formation cohort (the offset map keys),
// sorted ascending.
func (t Transform) FormationTracks() []types.TrackID {
	ids := make([]types.TrackID, 0, len(t.Offsets))
	for id := range t.Offsets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Fade is a fade-in or fade-out envelope on a clip's output.
type Fade struct {
	Seconds float64 `json:"seconds"`
	// Easing: "linear", "in", "out", "inout".
	Easing string `json:"easing,omitempty"`
}

// Animation is a user-authored, immutable definition. Once a clip references
// it the engine never mutates it.
type Animation struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"` // model tag
	Duration float64 `json:"duration_seconds"`
	Loop     bool    `json:"loop,omitempty"`
	PingPong bool    `json:"ping_pong,omitempty"`

	Parameters map[string]float64 `json:"parameters,omitempty"`
	Points     []types.Position   `json:"points,omitempty"`

	Transform Transform `json:"transform"`

	// LockedTracks, when present, is the exact track set the animation
	// insists on; cue overrides are ignored.
	LockedTracks []types.TrackID `json:"track_ids_locked,omitempty"`

	FadeIn  *Fade `json:"fade_in,omitempty"`
	FadeOut *Fade `json:"fade_out,omitempty"`

	Space types.CoordSpace `json:"space,omitempty"`
}

// Locked reports whether the animation carries the locked track contract.
func (a *Animation) Locked() bool { return len(a.LockedTracks) > 0 }

// Preset is a built-in or saved template a cue can instantiate over an
// arbitrary track set.
type Preset struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Type       string             `json:"type"`
	Duration   float64            `json:"duration_seconds"`
	Loop       bool               `json:"loop,omitempty"`
	PingPong   bool               `json:"ping_pong,omitempty"`
	Parameters map[string]float64 `json:"parameters,omitempty"`
	Points     []types.Position   `json:"points,omitempty"`
	Space      types.CoordSpace   `json:"space,omitempty"`
}

// CueSourceKind selects what a cue plays.
type CueSourceKind int

const (
	SourceAnimation CueSourceKind = iota
	SourcePreset
)

// CueSource binds a cue to either a saved animation or a preset template.
type CueSource struct {
	Kind CueSourceKind `json:"kind"`

	AnimationID    string          `json:"animation_id,omitempty"`
	OverrideTracks []types.TrackID `json:"override_track_ids,omitempty"`

	PresetID       string             `json:"preset_id,omitempty"`
	SelectedTracks []types.TrackID    `json:"selected_track_ids,omitempty"`
	ParamOverrides map[string]float64 `json:"param_overrides,omitempty"`
}

// TriggerKind names an external way a cue can fire. The engine does not
// consume these; the dispatcher packages do.
type TriggerKind int

const (
	TriggerManual TriggerKind = iota
	TriggerHotkey
	TriggerOSC
	TriggerTimecode
	TriggerMIDI
)

// TriggerBinding is one external binding of a cue.
type TriggerBinding struct {
	Kind    TriggerKind `json:"kind"`
	Key     string      `json:"key,omitempty"`      // hotkey
	Address string      `json:"address,omitempty"`  // osc
	Marker  string      `json:"marker,omitempty"`   // timecode marker name
	Note    int         `json:"note,omitempty"`     // midi note
	Channel int         `json:"channel,omitempty"`  // midi channel
}

// Cue is a named trigger binding.
type Cue struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Number   int              `json:"number,omitempty"`
	Source   CueSource        `json:"source"`
	Action   types.CueAction  `json:"action"`
	FadeTime float64          `json:"fade_time_seconds,omitempty"`
	Priority int              `json:"priority,omitempty"` // reserved, default 0
	Disabled bool             `json:"disabled,omitempty"`
	Triggers []TriggerBinding `json:"triggers,omitempty"`
	Color    string           `json:"color,omitempty"`
}

// Track is the slice of the external track record the engine reads.
type Track struct {
	ID      types.TrackID  `json:"id"`
	Name    string         `json:"name"`
	Initial types.Position `json:"initial_position"`
}

// Project is the loaded show file.
type Project struct {
	Name       string      `json:"name"`
	Tracks     []Track     `json:"tracks"`
	Animations []Animation `json:"animations"`
	Presets    []Preset    `json:"presets"`
	Cues       []Cue       `json:"cues"`

	tracks     map[types.TrackID]*Track
	animations map[string]*Animation
	presets    map[string]*Preset
	cues       map[string]*Cue
}

// Reindex rebuilds the lookup maps after load or direct mutation of the
// entity slices.
func (p *Project) Reindex() {
	p.tracks = make(map[types.TrackID]*Track, len(p.Tracks))
	for i := range p.Tracks {
		p.tracks[p.Tracks[i].ID] = &p.Tracks[i]
	}
	p.animations = make(map[string]*Animation, len(p.Animations))
	for i := range p.Animations {
		p.animations[p.Animations[i].ID] = &p.Animations[i]
	}
	p.presets = make(map[string]*Preset, len(p.Presets))
	for i := range p.Presets {
		p.presets[p.Presets[i].ID] = &p.Presets[i]
	}
	p.cues = make(map[string]*Cue, len(p.Cues))
	for i := range p.Cues {
		p.cues[p.Cues[i].ID] = &p.Cues[i]
	}
}

func (p *Project) Track(id types.TrackID) (*Track, bool) {
	t, ok := p.tracks[id]
	return t, ok
}

func (p *Project) Animation(id string) (*Animation, bool) {
	a, ok := p.animations[id]
	return a, ok
}

func (p *Project) Preset(id string) (*Preset, bool) {
	pr, ok := p.presets[id]
	return pr, ok
}

func (p *Project) Cue(id string) (*Cue, bool) {
	c, ok := p.cues[id]
	return c, ok
}

// InitialPosition returns the track's resting position, or the origin for an
// unknown track.
func (p *Project) InitialPosition(id types.TrackID) types.Position {
	if t, ok := p.tracks[id]; ok {
		return t.Initial
	}
	return types.Position{}
}

// CueByNumber finds a cue by its display number.
func (p *Project) CueByNumber(n int) (*Cue, bool) {
	for i := range p.Cues {
		if p.Cues[i].Number == n {
			return &p.Cues[i], true
		}
	}
	return nil, false
}

// New returns an empty, indexed project.
func New(name string) *Project {
	p := &Project{Name: name}
	p.Reindex()
	return p
}

// String implements a short summary used in logs.
func (p *Project) String() string {
	return fmt.Sprintf("%s (%d tracks, %d animations, %d presets, %d cues)",
		p.Name, len(p.Tracks), len(p.Animations), len(p.Presets), len(p.Cues))
}
