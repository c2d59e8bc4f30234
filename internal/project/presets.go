package project

// BuiltinPresets are templates available in every project without authoring.
// Cues reference them by id; the engine instantiates a transient animation
// over the cue's selected tracks.
func BuiltinPresets() []Preset {
	return []Preset{
		{
			ID:       "preset.circle",
			Name:     "Circle",
			Type:     "circular",
			Duration: 8,
			Loop:     true,
			Parameters: map[string]float64{
				"radius": 2,
			},
		},
		{
			ID:       "preset.sweep",
			Name:     "Sweep",
			Type:     "linear",
			Duration: 4,
			PingPong: true,
			Loop:     true,
			Parameters: map[string]float64{
				"start_x": -3,
				"end_x":   3,
			},
		},
		{
			ID:       "preset.orbit",
			Name:     "Tilted Orbit",
			Type:     "orbit",
			Duration: 12,
			Loop:     true,
			Parameters: map[string]float64{
				"radius_x": 3,
				"radius_y": 1.5,
				"tilt":     30,
			},
		},
		{
			ID:       "preset.pendulum",
			Name:     "Pendulum",
			Type:     "pendulum",
			Duration: 6,
			Loop:     true,
			Parameters: map[string]float64{
				"length":    2,
				"amplitude": 45,
				"swings":    2,
			},
		},
		{
			ID:       "preset.drift",
			Name:     "Perlin Drift",
			Type:     "perlin",
			Duration: 20,
			Loop:     true,
			Parameters: map[string]float64{
				"amplitude": 1.5,
				"scale":     3,
			},
		},
		{
			ID:       "preset.rise",
			Name:     "Radial Rise",
			Type:     "radial",
			Duration: 5,
			Parameters: map[string]float64{
				"elevation":      30,
				"distance_start": 1,
				"distance_end":   5,
			},
		},
	}
}

// EnsureBuiltins appends any builtin preset the project does not already
// define, then reindexes.
func (p *Project) EnsureBuiltins() {
	for _, preset := range BuiltinPresets() {
		if _, ok := p.presets[preset.ID]; !ok {
			p.Presets = append(p.Presets, preset)
		}
	}
	p.Reindex()
}
