package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAEDRoundTrip(t *testing.T) {
	cases := []Position{
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 2, Z: 0},
		{X: 0, Y: 0, Z: 3},
		{X: 1, Y: 2, Z: -0.5},
		{X: -4, Y: 0.25, Z: 2},
	}
	for _, p := range cases {
		back := FromAED(ToAED(p))
		assert.InDelta(t, p.X, back.X, 1e-9)
		assert.InDelta(t, p.Y, back.Y, 1e-9)
		assert.InDelta(t, p.Z, back.Z, 1e-9)
	}
}

func TestAEDConventions(t *testing.T) {
	// front (+Y) is azimuth 0
	front := ToAED(Position{Y: 2})
	assert.InDelta(t, 0.0, front.Azimuth, 1e-9)
	assert.InDelta(t, 2.0, front.Distance, 1e-9)

	// right (+X) is azimuth 90
	right := ToAED(Position{X: 1})
	assert.InDelta(t, 90.0, right.Azimuth, 1e-9)

	// straight up is elevation 90
	up := ToAED(Position{Z: 1.5})
	assert.InDelta(t, 90.0, up.Elevation, 1e-9)

	// origin degrades to zeros rather than NaN
	assert.Equal(t, AED{}, ToAED(Position{}))
}

func TestLerp(t *testing.T) {
	a := Position{X: 1, Y: 2, Z: 3}
	b := Position{X: 3, Y: 0, Z: 3}
	assert.Equal(t, a, Lerp(a, b, 0))
	assert.Equal(t, b, Lerp(a, b, 1))
	mid := Lerp(a, b, 0.5)
	assert.InDelta(t, 2.0, mid.X, 1e-12)
	assert.InDelta(t, 1.0, mid.Y, 1e-12)
	assert.InDelta(t, 3.0, mid.Z, 1e-12)
}

func TestFinite(t *testing.T) {
	assert.True(t, Finite(Position{X: 1, Y: -2, Z: 0}))
	assert.False(t, Finite(Position{X: math.NaN()}))
	assert.False(t, Finite(Position{Z: math.Inf(1)}))
}
