package models

import (
	"math"

	"github.com/marmorek/animos/internal/types"
)

func init() {
	register(Meta{
		Tag:      "radial",
		Name:     "Radial",
		Category: "spatial",
		Params: []ParamSpec{
			{Name: "azimuth", Min: -360, Max: 360, Default: 0, Doc: "degrees"},
			{Name: "elevation", Min: -90, Max: 90, Default: 0, Doc: "degrees"},
			{Name: "distance_start", Min: 0, Max: 1000, Default: 1},
			{Name: "distance_end", Min: 0, Max: 1000, Default: 4},
		},
	}, func(p Params, t float64) types.Position {
		d := p.Get("distance_start") + t*(p.Get("distance_end")-p.Get("distance_start"))
		az := p.Get("azimuth") * math.Pi / 180
		el := p.Get("elevation") * math.Pi / 180
		return types.Position{
			X: d * math.Cos(el) * math.Sin(az),
			Y: d * math.Cos(el) * math.Cos(az),
			Z: d * math.Sin(el),
		}
	})
}
