package types

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Position is a point in metres. It aliases gonum's r3.Vec so the transform
// math can use the r3 helpers directly.
type Position = r3.Vec

// TrackID identifies a spatial audio source. Track records live in the project
// store; the engine only reads ids and initial positions.
type TrackID int

// ClipID is assigned monotonically per trigger. Higher id means later trigger,
// which is the LTP tie-break.
type ClipID int64

type ClipState int

const (
	ClipPlaying ClipState = iota
	ClipPaused
	ClipStopping
	ClipFinished
)

func (s ClipState) String() string {
	switch s {
	case ClipPlaying:
		return "playing"
	case ClipPaused:
		return "paused"
	case ClipStopping:
		return "stopping"
	case ClipFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// CueAction is what a cue does when it fires.
type CueAction int

const (
	ActionPlay CueAction = iota
	ActionStop
	ActionPause
	ActionFade
)

func (a CueAction) String() string {
	switch a {
	case ActionPlay:
		return "play"
	case ActionStop:
		return "stop"
	case ActionPause:
		return "pause"
	case ActionFade:
		return "fade"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// CoordSpace selects the wire form the sink uses for a clip's updates.
type CoordSpace int

const (
	SpaceXYZ CoordSpace = iota // absolute cartesian, metres
	SpaceAED                   // azimuth/elevation degrees, distance metres
)

func (c CoordSpace) String() string {
	if c == SpaceAED {
		return "aed"
	}
	return "xyz"
}

// ReleaseReason says why a clip lost tracks.
type ReleaseReason int

const (
	ReleaseLTP ReleaseReason = iota
	ReleaseFinished
	ReleaseStop
)

func (r ReleaseReason) String() string {
	switch r {
	case ReleaseLTP:
		return "ltp"
	case ReleaseFinished:
		return "finished"
	case ReleaseStop:
		return "stop"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// AED holds a spherical position: azimuth and elevation in degrees, distance
// in metres. Azimuth 0 is +Y (front), positive clockwise toward +X.
type AED struct {
	Azimuth   float64
	Elevation float64
	Distance  float64
}

// ToAED converts a cartesian position to spherical.
func ToAED(p Position) AED {
	d := r3.Norm(p)
	if d == 0 {
		return AED{}
	}
	return AED{
		Azimuth:   math.Atan2(p.X, p.Y) * 180 / math.Pi,
		Elevation: math.Asin(p.Z/d) * 180 / math.Pi,
		Distance:  d,
	}
}

// FromAED converts a spherical position back to cartesian.
func FromAED(a AED) Position {
	az := a.Azimuth * math.Pi / 180
	el := a.Elevation * math.Pi / 180
	return Position{
		X: a.Distance * math.Cos(el) * math.Sin(az),
		Y: a.Distance * math.Cos(el) * math.Cos(az),
		Z: a.Distance * math.Sin(el),
	}
}

// Lerp interpolates between two positions, t in [0,1].
func Lerp(a, b Position, t float64) Position {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Finite reports whether every axis is a real number. The engine suppresses
// samples that fail this instead of putting NaN on the wire.
func Finite(p Position) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}
