package audio

import (
	"errors"
	"fmt"
	"sort"
)

const (
	PaletteElectronic = "electronic"
	PaletteWoody      = "woody"
)

var ErrUnknownPalette = errors.New("unknown palette")

type shape int

const (
	shapeSine   shape = iota
	shapeDriven       // sine pushed through tanh
	shapeNoise
	shapeSweep // sine gliding linearly from freq to freqEnd
)

// layer is one decaying partial of a sound.
type layer struct {
	shape   shape
	freq    float64
	freqEnd float64
	drive   float64
	amp     float64
	decay   float64 // 1/s
}

type recipe struct {
	duration float64 // seconds
	layers   []layer
}

type palette [NumKinds]recipe

var (
	snare = recipe{0.15, []layer{
		{shape: shapeNoise, amp: 0.8, decay: 30},
		{shape: shapeSine, freq: 180, amp: 0.4, decay: 15},
	}}
	hihat  = recipe{0.1, []layer{{shape: shapeNoise, amp: 0.81, decay: 80}}}
	shaker = recipe{0.1, []layer{{shape: shapeNoise, amp: 0.64, decay: 50}}}
)

var palettes = map[string]palette{
	PaletteElectronic: {
		Accent: {0.1, []layer{
			{shape: shapeSine, freq: 2000, amp: 0.3, decay: 8},
			{shape: shapeSine, freq: 4000, amp: 0.15, decay: 8},
		}},
		Backbeat:  snare,
		Quarter:   {0.1, []layer{{shape: shapeDriven, freq: 800, drive: 5, amp: 0.5, decay: 20}}},
		Eighth:    hihat,
		Sixteenth: shaker,
		Triplet:   {0.1, []layer{{shape: shapeSweep, freq: 1000, freqEnd: 500, amp: 0.6, decay: 30}}},
	},
	// short mechanical clicks, like a pendulum metronome
	PaletteWoody: {
		Accent: {0.1, []layer{
			{shape: shapeSine, freq: 600, amp: 0.6, decay: 100},
			{shape: shapeSine, freq: 1200, amp: 0.3, decay: 150},
			{shape: shapeNoise, amp: 0.005, decay: 200},
		}},
		Backbeat: snare,
		Quarter: {0.1, []layer{
			{shape: shapeSine, freq: 500, amp: 0.5, decay: 110},
			{shape: shapeSine, freq: 1000, amp: 0.2, decay: 160},
		}},
		Eighth:    hihat,
		Sixteenth: shaker,
		Triplet: {0.1, []layer{
			{shape: shapeSine, freq: 580, amp: 0.38, decay: 125},
			{shape: shapeSine, freq: 1150, amp: 0.14, decay: 175},
		}},
	},
}

// Palettes returns the names of the available tone palettes.
func Palettes() []string {
	var names []string
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupPalette(name string) (palette, error) {
	p, ok := palettes[name]
	if !ok {
		return palette{}, fmt.Errorf("%w: %v", ErrUnknownPalette, name)
	}
	return p, nil
}
