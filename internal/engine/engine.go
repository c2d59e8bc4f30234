// Package engine is the animation orchestration core: the clip registry,
// the LTP arbiter, and the fixed-rate tick loop. All mutable state lives on
// the engine thread; trigger sources talk to it through a bounded command
// queue drained at the head of each tick.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/marmorek/animos/internal/models"
	"github.com/marmorek/animos/internal/project"
	"github.com/marmorek/animos/internal/sink"
	"github.com/marmorek/animos/internal/types"
)

// Trigger rejection categories, surfaced synchronously to the caller.
var (
	ErrUnknownCue            = errors.New("unknown cue")
	ErrUnknownAnimation      = errors.New("unknown animation")
	ErrUnknownPreset         = errors.New("unknown preset")
	ErrInvalidParameters     = errors.New("invalid parameters")
	ErrEmptyTrackSet         = errors.New("empty track set")
	ErrIncompatibleFormation = errors.New("incompatible formation")
	ErrDisabledCue           = errors.New("cue disabled")
	ErrUnknownClip           = errors.New("unknown clip")
	ErrQueueFull             = errors.New("command queue full")
	ErrStopped               = errors.New("engine stopped")
)

// Config tunes the loop. Zero values fall back to the defaults.
type Config struct {
	TickInterval time.Duration // nominally 16.67ms (60 Hz)
	Epsilon      float64       // per-axis change suppression, metres
	QueueSize    int           // command queue capacity
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second / 60
	}
	if c.Epsilon <= 0 {
		c.Epsilon = 1e-4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	return c
}

// Diagnostics counts runtime anomalies the tick loop absorbed.
type Diagnostics struct {
	BadSamples     uint64 // NaN/Inf evaluator output, sample suppressed
	FormationSkips uint64 // track outside formation map, sample skipped
	Ticks          uint64
}

type cmdKind int

const (
	cmdTrigger cmdKind = iota
	cmdStop
	cmdPause
	cmdResume
	cmdStopAll
)

type command struct {
	kind  cmdKind
	cueID string
	clip  types.ClipID
	fade  float64 // seconds; 0 means use the animation's own fade-out
	resp  chan cmdResult
}

type cmdResult struct {
	clip types.ClipID
	err  error
}

// Engine owns all playback state. Construct with New, drive with Run (or
// Step directly in tests), and command from any goroutine through the
// public methods.
type Engine struct {
	proj *project.Project
	out  sink.Sink
	cfg  Config
	now  func() time.Time

	cmds chan command
	done chan struct{}

	// engine-thread state
	clips     map[types.ClipID]*Clip
	clipOrder []types.ClipID
	owners    map[types.TrackID]types.ClipID
	lastEmit  map[types.TrackID]types.Position
	nextClip  types.ClipID
	diag      Diagnostics
	batch     []sink.Update

	subsMu sync.Mutex
	subs   []func(Event)

	snapMu   sync.Mutex
	snapshot []ClipInfo
	snapDiag Diagnostics
}

// New builds an engine over a validated project and an output sink.
func New(proj *project.Project, out sink.Sink, cfg Config) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		proj:     proj,
		out:      out,
		cfg:      cfg,
		now:      time.Now,
		cmds:     make(chan command, cfg.QueueSize),
		done:     make(chan struct{}),
		clips:    make(map[types.ClipID]*Clip),
		owners:   make(map[types.TrackID]types.ClipID),
		lastEmit: make(map[types.TrackID]types.Position),
	}
}

// Run drives the fixed-rate loop until the context is cancelled. Animations
// are timed off the wall clock, so a late tick skips samples instead of
// slowing playback.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()
	defer close(e.done)
	defer e.out.Close()

	log.Printf("engine running at %v per tick", e.cfg.TickInterval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Step(e.now())
		}
	}
}

// Step executes one tick: drain commands, evaluate owned tracks, hand the
// batch to the sink, retire finished clips. Exported so tests can drive the
// engine with a synthetic clock.
func (e *Engine) Step(now time.Time) {
	e.drain(now)
	e.evaluate(now)
	e.refreshSnapshot(now)
	e.diag.Ticks++
}

// drain applies queued commands in arrival order.
func (e *Engine) drain(now time.Time) {
	for {
		select {
		case cmd := <-e.cmds:
			e.apply(cmd, now)
		default:
			return
		}
	}
}

func (e *Engine) apply(cmd command, now time.Time) {
	var res cmdResult
	switch cmd.kind {
	case cmdTrigger:
		res.clip, res.err = e.applyTrigger(cmd.cueID, now)
	case cmdStop:
		res.err = e.applyStop(cmd.clip, cmd.fade, now)
	case cmdPause:
		res.err = e.applyPause(cmd.clip, now)
	case cmdResume:
		res.err = e.applyResume(cmd.clip, now)
	case cmdStopAll:
		for _, id := range append([]types.ClipID(nil), e.clipOrder...) {
			if c := e.clips[id]; c != nil && c.state != types.ClipFinished {
				_ = e.applyStop(id, cmd.fade, now)
			}
		}
	}
	if cmd.resp != nil {
		cmd.resp <- res
	}
}

// submit enqueues a command and waits for the engine thread to process it.
func (e *Engine) submit(cmd command) cmdResult {
	cmd.resp = make(chan cmdResult, 1)
	select {
	case e.cmds <- cmd:
	default:
		return cmdResult{err: ErrQueueFull}
	}
	select {
	case res := <-cmd.resp:
		return res
	case <-e.done:
		return cmdResult{err: ErrStopped}
	}
}

// TriggerCue resolves and fires a cue. The result arrives once the engine
// thread has arbitrated ownership, at the head of the next tick.
func (e *Engine) TriggerCue(cueID string) (types.ClipID, error) {
	res := e.submit(command{kind: cmdTrigger, cueID: cueID})
	return res.clip, res.err
}

// StopClip stops a clip. fadeSeconds > 0 forces a fade of that length;
// zero uses the animation's own fade-out, if any.
func (e *Engine) StopClip(clip types.ClipID, fadeSeconds float64) error {
	return e.submit(command{kind: cmdStop, clip: clip, fade: fadeSeconds}).err
}

// PauseClip freezes a clip. Paused clips emit no updates; a paused fade is
// frozen too.
func (e *Engine) PauseClip(clip types.ClipID) error {
	return e.submit(command{kind: cmdPause, clip: clip}).err
}

// ResumeClip resumes a paused clip where it left off.
func (e *Engine) ResumeClip(clip types.ClipID) error {
	return e.submit(command{kind: cmdResume, clip: clip}).err
}

// StopAll stops every clip with the same fade rule as StopClip.
func (e *Engine) StopAll(fadeSeconds float64) error {
	return e.submit(command{kind: cmdStopAll, fade: fadeSeconds}).err
}

// ActiveClips returns the last tick's snapshot of the registry.
func (e *Engine) ActiveClips() []ClipInfo {
	e.snapMu.Lock()
	defer e.snapMu.Unlock()
	out := make([]ClipInfo, len(e.snapshot))
	copy(out, e.snapshot)
	return out
}

// Progress reports a clip's state and normalized progress.
func (e *Engine) Progress(clip types.ClipID) (types.ClipState, float64, error) {
	e.snapMu.Lock()
	defer e.snapMu.Unlock()
	for _, info := range e.snapshot {
		if info.ID == clip {
			return info.State, info.Progress, nil
		}
	}
	return types.ClipFinished, 0, ErrUnknownClip
}

// Stats returns the diagnostics counters as of the last tick.
func (e *Engine) Stats() Diagnostics {
	e.snapMu.Lock()
	defer e.snapMu.Unlock()
	return e.snapDiag
}

func (e *Engine) refreshSnapshot(now time.Time) {
	infos := make([]ClipInfo, 0, len(e.clipOrder))
	for _, id := range e.clipOrder {
		c := e.clips[id]
		infos = append(infos, ClipInfo{
			ID:          c.id,
			CueID:       c.cueID,
			AnimationID: c.anim.ID,
			State:       c.state,
			Progress:    c.progress(now),
			Tracks:      append([]types.TrackID(nil), c.tracks...),
		})
	}
	e.snapMu.Lock()
	e.snapshot = infos
	e.snapDiag = e.diag
	e.snapMu.Unlock()
}

// applyTrigger is the trigger path of the execution registry: resolve the
// cue's source, check the formation contract, arbitrate, insert.
func (e *Engine) applyTrigger(cueID string, now time.Time) (types.ClipID, error) {
	cue, ok := e.proj.Cue(cueID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCue, cueID)
	}
	if cue.Disabled {
		return 0, fmt.Errorf("%w: %s", ErrDisabledCue, cueID)
	}

	switch cue.Action {
	case types.ActionStop:
		return 0, e.stopClipsOfCue(cue, 0, now)
	case types.ActionFade:
		fade := cue.FadeTime
		if fade <= 0 {
			fade = 2
		}
		return 0, e.stopClipsOfCue(cue, fade, now)
	case types.ActionPause:
		return 0, e.pauseClipsOfCue(cue, now)
	}

	anim, requested, err := e.resolveSource(cue)
	if err != nil {
		return 0, err
	}
	if len(requested) == 0 {
		return 0, fmt.Errorf("%w: cue %s", ErrEmptyTrackSet, cueID)
	}

	owned, err := e.checkFormation(cue, anim, requested)
	if err != nil {
		return 0, err
	}

	id := e.nextClipID()
	e.arbitrate(owned)

	model, _ := models.Lookup(anim.Type) // resolved during validation
	order := make(map[types.TrackID]int, len(requested))
	for i, tr := range requested {
		order[tr] = i
	}
	clip := &Clip{
		id:     id,
		cueID:  cue.ID,
		anim:   anim,
		model:  model,
		tracks: sortedTracks(owned),
		order:  order,
		start:  now,
		state:  types.ClipPlaying,
	}
	e.clips[id] = clip
	e.clipOrder = append(e.clipOrder, id)
	for _, tr := range clip.tracks {
		e.owners[tr] = id
	}

	e.emit(Event{
		Type:        EventStarted,
		ClipID:      id,
		CueID:       cue.ID,
		AnimationID: anim.ID,
		Tracks:      append([]types.TrackID(nil), clip.tracks...),
	})
	log.Printf("clip %d started: cue=%s anim=%s tracks=%v", id, cue.ID, anim.ID, clip.tracks)
	return id, nil
}

// resolveSource turns the cue's source into an immutable animation reference
// and the requested track list, in cue order.
func (e *Engine) resolveSource(cue *project.Cue) (*project.Animation, []types.TrackID, error) {
	switch cue.Source.Kind {
	case project.SourcePreset:
		preset, ok := e.proj.Preset(cue.Source.PresetID)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownPreset, cue.Source.PresetID)
		}
		if len(cue.Source.SelectedTracks) == 0 {
			return nil, nil, fmt.Errorf("%w: cue %s", ErrEmptyTrackSet, cue.ID)
		}
		anim, err := instantiatePreset(preset, cue.Source.ParamOverrides)
		if err != nil {
			return nil, nil, err
		}
		return anim, dedupTracks(cue.Source.SelectedTracks), nil

	default:
		anim, ok := e.proj.Animation(cue.Source.AnimationID)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownAnimation, cue.Source.AnimationID)
		}
		if anim.Locked() {
			// the locked contract: overrides are ignored
			return anim, dedupTracks(anim.LockedTracks), nil
		}
		if len(cue.Source.OverrideTracks) == 0 {
			return nil, nil, fmt.Errorf("%w: cue %s", ErrEmptyTrackSet, cue.ID)
		}
		return anim, dedupTracks(cue.Source.OverrideTracks), nil
	}
}

// instantiatePreset builds a transient animation from a template, merging
// per-cue parameter overrides and validating the result against the model
// schema.
func instantiatePreset(preset *project.Preset, overrides map[string]float64) (*project.Animation, error) {
	merged := make(map[string]float64, len(preset.Parameters)+len(overrides))
	for k, v := range preset.Parameters {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	values, err := models.Validate(preset.Type, merged, len(preset.Points))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	return &project.Animation{
		ID:         "preset:" + preset.ID + ":" + uuid.NewString()[:8],
		Name:       preset.Name,
		Type:       preset.Type,
		Duration:   preset.Duration,
		Loop:       preset.Loop,
		PingPong:   preset.PingPong,
		Parameters: values,
		Points:     preset.Points,
		Space:      preset.Space,
	}, nil
}

// checkFormation enforces the formation-coherence rule for barycentric
// animations: ownership is restricted to the saved cohort, subsets warn,
// an empty intersection rejects. The formation itself is never recomputed.
func (e *Engine) checkFormation(cue *project.Cue, anim *project.Animation, requested []types.TrackID) ([]types.TrackID, error) {
	if anim.Transform.Kind != project.TransformBarycentric {
		return requested, nil
	}
	saved := anim.Transform.Offsets
	valid := make([]types.TrackID, 0, len(requested))
	dropped := make([]types.TrackID, 0)
	for _, tr := range requested {
		if _, ok := saved[tr]; ok {
			valid = append(valid, tr)
		} else {
			dropped = append(dropped, tr)
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: cue %s requests none of the formation tracks", ErrIncompatibleFormation, cue.ID)
	}
	if len(dropped) > 0 {
		msg := fmt.Sprintf("cue %s requests tracks %v outside formation %s; dropped", cue.ID, dropped, anim.ID)
		log.Print(msg)
		e.emit(Event{Type: EventWarning, CueID: cue.ID, AnimationID: anim.ID, Tracks: dropped, Message: msg})
	}
	if len(valid) < len(saved) {
		msg := fmt.Sprintf("cue %s plays formation %s with %d of %d tracks; geometry preserved for the subset",
			cue.ID, anim.ID, len(valid), len(saved))
		log.Print(msg)
		e.emit(Event{Type: EventWarning, CueID: cue.ID, AnimationID: anim.ID, Tracks: valid, Message: msg})
	}
	return valid, nil
}

// stopClipsOfCue applies a Stop/Fade action cue: it stops every live clip
// playing the cue's referenced animation or preset.
func (e *Engine) stopClipsOfCue(cue *project.Cue, fade float64, now time.Time) error {
	for _, id := range append([]types.ClipID(nil), e.clipOrder...) {
		c := e.clips[id]
		if c == nil || c.state == types.ClipFinished {
			continue
		}
		if e.clipMatchesSource(c, cue) {
			_ = e.applyStop(id, fade, now)
		}
	}
	return nil
}

func (e *Engine) pauseClipsOfCue(cue *project.Cue, now time.Time) error {
	for _, id := range e.clipOrder {
		c := e.clips[id]
		if c != nil && c.state == types.ClipPlaying && e.clipMatchesSource(c, cue) {
			_ = e.applyPause(id, now)
		}
	}
	return nil
}

func (e *Engine) clipMatchesSource(c *Clip, cue *project.Cue) bool {
	switch cue.Source.Kind {
	case project.SourcePreset:
		return strings.HasPrefix(c.anim.ID, "preset:"+cue.Source.PresetID+":")
	default:
		return c.anim.ID == cue.Source.AnimationID
	}
}

func (e *Engine) applyStop(clip types.ClipID, fadeSeconds float64, now time.Time) error {
	c, ok := e.clips[clip]
	if !ok || c.state == types.ClipFinished {
		return fmt.Errorf("%w: %d", ErrUnknownClip, clip)
	}
	if c.state == types.ClipStopping {
		return nil
	}
	if c.state == types.ClipPaused {
		// unfreeze so the fade (or immediate finish) can run
		c.pauseAccum += now.Sub(c.pausedAt)
	}
	c.state = types.ClipStopping
	c.stopRequested = true
	c.stopAt = now
	switch {
	case fadeSeconds > 0 && c.anim.FadeOut == nil:
		c.fadeOut = &project.Fade{Seconds: fadeSeconds, Easing: "inout"}
	case fadeSeconds > 0:
		c.fadeOut = &project.Fade{Seconds: fadeSeconds, Easing: c.anim.FadeOut.Easing}
	default:
		c.fadeOut = c.anim.FadeOut
	}
	log.Printf("clip %d stopping (fade=%v)", clip, c.fadeOut != nil)
	return nil
}

func (e *Engine) applyPause(clip types.ClipID, now time.Time) error {
	c, ok := e.clips[clip]
	if !ok || c.state == types.ClipFinished {
		return fmt.Errorf("%w: %d", ErrUnknownClip, clip)
	}
	if c.state == types.ClipPaused {
		return nil
	}
	// pausing a stopping clip freezes the fade; stopRequested restores the
	// stopping state on resume
	c.state = types.ClipPaused
	c.pausedAt = now
	return nil
}

func (e *Engine) applyResume(clip types.ClipID, now time.Time) error {
	c, ok := e.clips[clip]
	if !ok || c.state == types.ClipFinished {
		return fmt.Errorf("%w: %d", ErrUnknownClip, clip)
	}
	if c.state != types.ClipPaused {
		return nil
	}
	paused := now.Sub(c.pausedAt)
	c.pauseAccum += paused
	if c.stopRequested {
		// a frozen stop fade resumes where it stopped
		c.stopAt = c.stopAt.Add(paused)
		c.state = types.ClipStopping
		return nil
	}
	c.state = types.ClipPlaying
	return nil
}

func (e *Engine) nextClipID() types.ClipID {
	e.nextClip++
	return e.nextClip
}

func sortedTracks(ids []types.TrackID) []types.TrackID {
	out := append([]types.TrackID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func dedupTracks(ids []types.TrackID) []types.TrackID {
	seen := make(map[types.TrackID]struct{}, len(ids))
	out := make([]types.TrackID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
