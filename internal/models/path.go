package models

import (
	"math"

	"github.com/fogleman/ease"
	"github.com/marmorek/animos/internal/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// Path models evaluate an ordered point list from the animation definition.

func init() {
	register(Meta{
		Tag:       "bezier",
		Name:      "Bezier",
		Category:  "path",
		MinPoints: 2,
	}, func(p Params, t float64) types.Position {
		return deCasteljau(p.Points, t)
	})

	register(Meta{
		Tag:       "catmullrom",
		Name:      "Catmull-Rom",
		Category:  "path",
		MinPoints: 2,
		Params: []ParamSpec{
			{Name: "closed", Min: 0, Max: 1, Default: 0, Doc: "wrap the spline back to the first point"},
		},
	}, func(p Params, t float64) types.Position {
		return catmullRom(p.Points, t, p.Get("closed") >= 0.5)
	})

	register(Meta{
		Tag:       "waypoints",
		Name:      "Waypoints",
		Category:  "path",
		MinPoints: 2,
		Params: []ParamSpec{
			{Name: "easing", Min: 0, Max: 3, Default: 0, Doc: "0=linear 1=in 2=out 3=inout, per segment"},
		},
	}, func(p Params, t float64) types.Position {
		pts := p.Points
		segs := len(pts) - 1
		u := t * float64(segs)
		k := int(math.Floor(u))
		if k >= segs {
			k = segs - 1
		}
		frac := u - float64(k)
		switch int(p.Get("easing")) {
		case 1:
			frac = ease.InQuad(frac)
		case 2:
			frac = ease.OutQuad(frac)
		case 3:
			frac = ease.InOutQuad(frac)
		}
		return types.Lerp(pts[k], pts[k+1], frac)
	})
}

// deCasteljau evaluates a Bezier curve of arbitrary order over the control
// points.
func deCasteljau(pts []types.Position, t float64) types.Position {
	work := make([]types.Position, len(pts))
	copy(work, pts)
	for n := len(work) - 1; n > 0; n-- {
		for i := 0; i < n; i++ {
			work[i] = types.Lerp(work[i], work[i+1], t)
		}
	}
	return work[0]
}

// catmullRom interpolates through the points with a uniform Catmull-Rom
// spline, clamping the end tangents when the path is open.
func catmullRom(pts []types.Position, t float64, closed bool) types.Position {
	n := len(pts)
	segs := n - 1
	if closed {
		segs = n
	}
	u := t * float64(segs)
	k := int(math.Floor(u))
	if k >= segs {
		k = segs - 1
	}
	frac := u - float64(k)

	at := func(i int) types.Position {
		if closed {
			return pts[((i%n)+n)%n]
		}
		if i < 0 {
			return pts[0]
		}
		if i >= n {
			return pts[n-1]
		}
		return pts[i]
	}
	p0, p1, p2, p3 := at(k-1), at(k), at(k+1), at(k+2)

	t2 := frac * frac
	t3 := t2 * frac
	// standard uniform Catmull-Rom basis
	a := r3.Scale(-0.5*t3+t2-0.5*frac, p0)
	b := r3.Scale(1.5*t3-2.5*t2+1, p1)
	c := r3.Scale(-1.5*t3+2*t2+0.5*frac, p2)
	d := r3.Scale(0.5*t3-0.5*t2, p3)
	return r3.Add(r3.Add(a, b), r3.Add(c, d))
}
