package models

import (
	"math"

	"github.com/marmorek/animos/internal/types"
)

const tau = 2 * math.Pi

func init() {
	register(Meta{
		Tag:      "linear",
		Name:     "Linear",
		Category: "basic",
		Params: []ParamSpec{
			{Name: "start_x", Min: -1000, Max: 1000, Default: 0},
			{Name: "start_y", Min: -1000, Max: 1000, Default: 0},
			{Name: "start_z", Min: -1000, Max: 1000, Default: 0},
			{Name: "end_x", Min: -1000, Max: 1000, Default: 1},
			{Name: "end_y", Min: -1000, Max: 1000, Default: 0},
			{Name: "end_z", Min: -1000, Max: 1000, Default: 0},
		},
	}, func(p Params, t float64) types.Position {
		start := types.Position{X: p.Get("start_x"), Y: p.Get("start_y"), Z: p.Get("start_z")}
		end := types.Position{X: p.Get("end_x"), Y: p.Get("end_y"), Z: p.Get("end_z")}
		return types.Lerp(start, end, t)
	})

	register(Meta{
		Tag:      "circular",
		Name:     "Circle",
		Category: "basic",
		Params: []ParamSpec{
			{Name: "radius", Min: 0, Max: 1000, Default: 1},
			{Name: "height", Min: -1000, Max: 1000, Default: 0},
			{Name: "revolutions", Min: 1, Max: 64, Default: 1, Doc: "whole turns per cycle"},
			{Name: "clockwise", Min: 0, Max: 1, Default: 0},
			{Name: "start_angle", Min: -360, Max: 360, Default: 0, Doc: "degrees"},
		},
	}, func(p Params, t float64) types.Position {
		angle := p.Get("start_angle")*math.Pi/180 + tau*p.Get("revolutions")*t
		if p.Get("clockwise") >= 0.5 {
			angle = -angle
		}
		r := p.Get("radius")
		return types.Position{X: r * math.Cos(angle), Y: r * math.Sin(angle), Z: p.Get("height")}
	})

	register(Meta{
		Tag:      "orbit",
		Name:     "Orbit",
		Category: "basic",
		Params: []ParamSpec{
			{Name: "radius_x", Min: 0, Max: 1000, Default: 1},
			{Name: "radius_y", Min: 0, Max: 1000, Default: 1},
			{Name: "tilt", Min: -90, Max: 90, Default: 0, Doc: "degrees around X"},
			{Name: "height", Min: -1000, Max: 1000, Default: 0},
			{Name: "revolutions", Min: 1, Max: 64, Default: 1},
		},
	}, func(p Params, t float64) types.Position {
		angle := tau * p.Get("revolutions") * t
		x := p.Get("radius_x") * math.Cos(angle)
		y := p.Get("radius_y") * math.Sin(angle)
		tilt := p.Get("tilt") * math.Pi / 180
		// rotate the orbit plane around the X axis
		return types.Position{
			X: x,
			Y: y * math.Cos(tilt),
			Z: p.Get("height") + y*math.Sin(tilt),
		}
	})
}
