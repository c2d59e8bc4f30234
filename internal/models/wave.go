package models

import (
	"math"

	"github.com/marmorek/animos/internal/types"
)

func init() {
	register(Meta{
		Tag:      "sine",
		Name:     "Sine Wave",
		Category: "wave",
		Params: []ParamSpec{
			{Name: "amplitude", Min: 0, Max: 1000, Default: 1},
			{Name: "cycles", Min: 1, Max: 64, Default: 1},
			{Name: "axis", Min: 0, Max: 2, Default: 0, Doc: "0=x 1=y 2=z"},
			{Name: "phase", Min: -360, Max: 360, Default: 0, Doc: "degrees"},
		},
	}, func(p Params, t float64) types.Position {
		v := p.Get("amplitude") * math.Sin(tau*p.Get("cycles")*t+p.Get("phase")*math.Pi/180)
		switch int(p.Get("axis")) {
		case 1:
			return types.Position{Y: v}
		case 2:
			return types.Position{Z: v}
		default:
			return types.Position{X: v}
		}
	})

	register(Meta{
		Tag:      "lissajous",
		Name:     "Lissajous",
		Category: "wave",
		Params: []ParamSpec{
			{Name: "amp_x", Min: 0, Max: 1000, Default: 1},
			{Name: "amp_y", Min: 0, Max: 1000, Default: 1},
			{Name: "amp_z", Min: 0, Max: 1000, Default: 0},
			{Name: "freq_x", Min: 1, Max: 32, Default: 3},
			{Name: "freq_y", Min: 1, Max: 32, Default: 2},
			{Name: "freq_z", Min: 1, Max: 32, Default: 1},
			{Name: "delta", Min: -360, Max: 360, Default: 90, Doc: "x phase lead, degrees"},
		},
	}, func(p Params, t float64) types.Position {
		d := p.Get("delta") * math.Pi / 180
		return types.Position{
			X: p.Get("amp_x") * math.Sin(tau*p.Get("freq_x")*t+d),
			Y: p.Get("amp_y") * math.Sin(tau*p.Get("freq_y")*t),
			Z: p.Get("amp_z") * math.Sin(tau*p.Get("freq_z")*t),
		}
	})
}
