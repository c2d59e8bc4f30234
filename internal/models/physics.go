package models

import (
	"math"

	"github.com/marmorek/animos/internal/types"
)

// Physics models carry no state across frames. Anything that looks like state
// (decay, oscillation count) is a closed-form function of normalized time, so
// the evaluators stay pure and the engine can call them per clip concurrently.

func init() {
	register(Meta{
		Tag:      "pendulum",
		Name:     "Pendulum",
		Category: "physics",
		Params: []ParamSpec{
			{Name: "length", Min: 0.01, Max: 100, Default: 2, Doc: "metres"},
			{Name: "amplitude", Min: 0, Max: 90, Default: 30, Doc: "degrees"},
			{Name: "swings", Min: 1, Max: 64, Default: 4},
			{Name: "damping", Min: 0, Max: 10, Default: 0, Doc: "decay rate over the cycle"},
		},
	}, func(p Params, t float64) types.Position {
		amp := p.Get("amplitude") * math.Pi / 180 * math.Exp(-p.Get("damping")*t)
		theta := amp * math.Cos(tau*p.Get("swings")*t)
		l := p.Get("length")
		return types.Position{X: l * math.Sin(theta), Y: 0, Z: -l * math.Cos(theta)}
	})

	register(Meta{
		Tag:      "spring",
		Name:     "Spring",
		Category: "physics",
		Params: []ParamSpec{
			{Name: "offset_x", Min: -1000, Max: 1000, Default: 1, Doc: "initial displacement"},
			{Name: "offset_y", Min: -1000, Max: 1000, Default: 0},
			{Name: "offset_z", Min: -1000, Max: 1000, Default: 0},
			{Name: "oscillations", Min: 1, Max: 64, Default: 3},
			{Name: "damping", Min: 0, Max: 20, Default: 4},
		},
	}, func(p Params, t float64) types.Position {
		// damped oscillation from the displaced start toward rest at origin
		env := math.Exp(-p.Get("damping")*t) * math.Cos(tau*p.Get("oscillations")*t)
		off := types.Position{X: p.Get("offset_x"), Y: p.Get("offset_y"), Z: p.Get("offset_z")}
		return types.Position{X: off.X * env, Y: off.Y * env, Z: off.Z * env}
	})

	register(Meta{
		Tag:      "bounce",
		Name:     "Bounce",
		Category: "physics",
		Params: []ParamSpec{
			{Name: "height", Min: 0, Max: 1000, Default: 2, Doc: "metres of the first bounce"},
			{Name: "bounces", Min: 1, Max: 32, Default: 4},
			{Name: "restitution", Min: 0, Max: 1, Default: 0.6, Doc: "height kept per bounce"},
			{Name: "floor", Min: -1000, Max: 1000, Default: 0},
		},
	}, func(p Params, t float64) types.Position {
		n := p.Get("bounces")
		phase := t * n
		k := math.Floor(phase)
		if k >= n {
			k = n - 1
		}
		h := p.Get("height") * math.Pow(p.Get("restitution"), k)
		// parabolic arc within the bounce
		u := phase - k
		z := p.Get("floor") + 4*h*u*(1-u)
		return types.Position{X: 0, Y: 0, Z: z}
	})
}
