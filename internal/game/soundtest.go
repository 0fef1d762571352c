package game

import "strings"

// Sound test layout: a grid of horizontal gates in front of the player,
// one per multiplier, so every gate tone can be heard by shooting through.
const (
	soundTestGates   = 12
	soundTestColumns = 4
	soundTestSpacing = 250
	soundTestHalfLen = 80
)

// BlankLevel returns a level of empty rows scrolling at speed.
func BlankLevel(name string, rows int, speed float64) *Level {
	cells := make([]string, rowCells)
	for i := range cells {
		cells[i] = strings.Repeat(" ", cellRunes)
	}
	l := &Level{Name: name, Rows: make([]Row, rows)}
	for i := range l.Rows {
		l.Rows[i] = Row{Speed: speed, Cells: cells}
	}
	return l
}

// SoundTestGates lays out normal gates with multipliers 0..11 above the
// player start position.
func SoundTestGates(tu Tuning) []GateSpec {
	startY := tu.GameHeightLong * tu.TankStartYRatio
	specs := make([]GateSpec, 0, soundTestGates)
	for m := 0; m < soundTestGates; m++ {
		col := m % soundTestColumns
		row := m / soundTestColumns
		c := Vec{
			X: tu.GameWidth / soundTestColumns * (float64(col) + 0.5),
			Y: startY - soundTestSpacing*float64(row+1),
		}
		specs = append(specs, GateSpec{
			Type:       GateNormal,
			Start:      Vec{c.X - soundTestHalfLen, c.Y},
			End:        Vec{c.X + soundTestHalfLen, c.Y},
			Multiplier: m,
		})
	}
	return specs
}

// NewSoundTestWorld builds a sandbox world holding only the sound test
// gates. Force-forward is off so the player can stand still.
func NewSoundTestWorld(opts ...WorldOption) (*World, error) {
	tu := DefaultTuning()
	tu.ForceForward = false
	rows := int(tu.GameHeightLong / platformHeight)
	all := append([]WorldOption{WithTuning(tu)}, opts...)
	all = append(all, WithSandbox())
	w, err := NewWorld(BlankLevel("sound-test", rows, 0), all...)
	if err != nil {
		return nil, err
	}
	for _, gs := range SoundTestGates(w.Tuning) {
		w.addGate(gs)
	}
	return w, nil
}
