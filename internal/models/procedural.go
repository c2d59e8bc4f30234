package models

import (
	"math"

	"github.com/marmorek/animos/internal/types"
)

// Procedural models derive all randomness from the seed parameter so repeated
// evaluation of the same (params, t) gives the same position.

func init() {
	register(Meta{
		Tag:      "perlin",
		Name:     "Perlin Drift",
		Category: "procedural",
		Params: []ParamSpec{
			{Name: "amplitude", Min: 0, Max: 1000, Default: 1},
			{Name: "scale", Min: 0.01, Max: 100, Default: 2, Doc: "noise distance sampled per cycle"},
			{Name: "seed", Min: 0, Max: 1 << 20, Default: 0},
		},
	}, func(p Params, t float64) types.Position {
		amp := p.Get("amplitude")
		s := p.Get("scale") * t
		seed := uint32(p.Get("seed"))
		return types.Position{
			X: amp * gradientNoise(s, seed),
			Y: amp * gradientNoise(s, seed+101),
			Z: amp * gradientNoise(s, seed+211),
		}
	})

	register(Meta{
		Tag:      "randomwalk",
		Name:     "Random Walk",
		Category: "procedural",
		Params: []ParamSpec{
			{Name: "amplitude", Min: 0, Max: 1000, Default: 1},
			{Name: "harmonics", Min: 1, Max: 16, Default: 5},
			{Name: "seed", Min: 0, Max: 1 << 20, Default: 0},
		},
	}, func(p Params, t float64) types.Position {
		// sum of seeded sines: wanders like a walk but closes at t=1 so
		// looping clips do not jump
		amp := p.Get("amplitude")
		n := int(p.Get("harmonics"))
		seed := uint32(p.Get("seed"))
		var pos types.Position
		for k := 1; k <= n; k++ {
			w := amp / float64(k)
			pos.X += w * math.Sin(tau*float64(k)*t+phaseFor(seed, k, 0))
			pos.Y += w * math.Sin(tau*float64(k)*t+phaseFor(seed, k, 1))
			pos.Z += w * 0.5 * math.Sin(tau*float64(k)*t+phaseFor(seed, k, 2))
		}
		return pos
	})
}

// hash32 is a small integer mixer (xorshift-multiply) used to derive
// deterministic gradients and phases from the seed.
func hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

func phaseFor(seed uint32, k, axis int) float64 {
	h := hash32(seed ^ uint32(k*73856093) ^ uint32(axis*19349663))
	return tau * float64(h) / float64(math.MaxUint32)
}

// gradientNoise is 1D Perlin-style gradient noise in [-1, 1].
func gradientNoise(x float64, seed uint32) float64 {
	x0 := math.Floor(x)
	f := x - x0
	i := uint32(int64(x0))

	grad := func(cell uint32) float64 {
		if hash32(cell^seed)&1 == 0 {
			return 1
		}
		return -1
	}
	// smoothstep fade between the two cell gradients
	u := f * f * f * (f*(f*6-15) + 10)
	g0 := grad(i) * f
	g1 := grad(i+1) * (f - 1)
	return g0 + u*(g1-g0)
}
