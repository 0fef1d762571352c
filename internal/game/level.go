package game

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

//go:embed levels/*.lvl
var levelFS embed.FS

// Level content errors. All are fatal: they mean a corrupt level asset.
var (
	ErrBadRow          = errors.New("bad level row")
	ErrBadCell         = errors.New("bad level cell")
	ErrUnknownEntity   = errors.New("unknown entity code")
	ErrUnknownGateType = errors.New("unknown gate type")
	ErrUnknownPill     = errors.New("unknown pill code")
	ErrUnknownTank     = errors.New("unknown tank code")
)

// Row is one horizontal strip of the level.
type Row struct {
	Speed float64 // scroll multiplier; 0 marks the end zone
	Cells []string
}

// Level is the ordered row list. Row 0 is the far end of the map.
type Level struct {
	Name string
	Rows []Row
}

// GateSpec is a decoded gate cell.
type GateSpec struct {
	Type       GateType
	Start      Vec
	End        Vec
	Multiplier int
}

// CellKind is the leading rune class of a cell code.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellPlatform
	CellSpike
	CellPill
	CellTank
	CellGate
)

const (
	codeEmpty    = "      "
	codePlatform = "██████"
	codeSpike    = "░░░░░░"
)

// LoadLevel reads a level from the embedded set by file name.
func LoadLevel(name string) (*Level, error) {
	f, err := levelFS.Open("levels/" + name)
	if err != nil {
		return nil, fmt.Errorf("open level %q: %w", name, err)
	}
	defer f.Close()
	lvl, err := ParseLevel(f)
	if err != nil {
		return nil, fmt.Errorf("level %q: %w", name, err)
	}
	lvl.Name = name
	return lvl, nil
}

// MustLoadLevel is LoadLevel for the embedded assets that ship with the game.
func MustLoadLevel(name string) *Level {
	lvl, err := LoadLevel(name)
	if err != nil {
		panic(err)
	}
	return lvl
}

// ParseLevel reads the text format:
//
//	# comment
//	<speed> [<10 cells of 6 runes>]
//
// Every cell is decoded once here, so runtime streaming never sees bad codes.
func ParseLevel(r io.Reader) (*Level, error) {
	lvl := &Level{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		row, err := parseRowLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := validateRow(row, len(lvl.Rows)); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		lvl.Rows = append(lvl.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(lvl.Rows) == 0 {
		return nil, fmt.Errorf("no rows: %w", ErrBadRow)
	}
	return lvl, nil
}

func parseRowLine(text string) (Row, error) {
	open := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if open < 0 || end < open {
		return Row{}, fmt.Errorf("missing [cells]: %w", ErrBadRow)
	}
	speed, err := strconv.ParseFloat(strings.TrimSpace(text[:open]), 64)
	if err != nil {
		return Row{}, fmt.Errorf("speed: %v: %w", err, ErrBadRow)
	}
	cells, err := splitCells(text[open+1 : end])
	if err != nil {
		return Row{}, err
	}
	return Row{Speed: speed, Cells: cells}, nil
}

// splitCells cuts a row body into six-rune cells.
func splitCells(body string) ([]string, error) {
	runes := []rune(body)
	if len(runes) != rowCells*cellRunes {
		return nil, fmt.Errorf("row has %d runes, want %d: %w", len(runes), rowCells*cellRunes, ErrBadRow)
	}
	cells := make([]string, rowCells)
	for j := range cells {
		cells[j] = string(runes[j*cellRunes : (j+1)*cellRunes])
	}
	return cells, nil
}

// validateRow decodes every cell of row i and reports the first failure.
func validateRow(row Row, i int) error {
	if len(row.Cells) != rowCells {
		return fmt.Errorf("row %d has %d cells: %w", i, len(row.Cells), ErrBadRow)
	}
	for j, code := range row.Cells {
		if _, err := ClassifyCell(code); err != nil {
			return fmt.Errorf("row %d col %d: %w", i, j, err)
		}
		var err error
		switch code[0] {
		case 't':
			_, err = DecodeTank(code)
		case 'g':
			_, err = DecodeGate(code, i, j)
		case 'p':
			_, err = DecodePill(code)
		}
		if err != nil {
			return fmt.Errorf("row %d col %d: %w", i, j, err)
		}
	}
	return nil
}

// ClassifyCell checks the cell length and its leading rune.
func ClassifyCell(code string) (CellKind, error) {
	if n := utf8.RuneCountInString(code); n != cellRunes {
		return 0, fmt.Errorf("cell %q has %d runes: %w", code, n, ErrBadCell)
	}
	first, _ := utf8.DecodeRuneInString(code)
	switch first {
	case ' ':
		return CellEmpty, nil
	case '█':
		return CellPlatform, nil
	case '░':
		return CellSpike, nil
	case 'p':
		return CellPill, nil
	case 't':
		return CellTank, nil
	case 'g':
		return CellGate, nil
	default:
		return 0, fmt.Errorf("cell %q: %w", code, ErrUnknownEntity)
	}
}

// tankDirections maps the direction rune of a tank code to a turret rotation.
var tankDirections = map[byte]float64{
	'|':  math.Pi,
	'/':  math.Pi * 1.25,
	'\\': math.Pi * 0.75,
	'l':  0,
	'r':  math.Pi * 0.5,
}

// DecodeTank decodes "t k <kind><tier> <dir> <move>", e.g. "tkb3|m".
func DecodeTank(code string) (EnemySpec, error) {
	if len(code) != cellRunes || code[0] != 't' {
		return EnemySpec{}, fmt.Errorf("tank %q: %w", code, ErrUnknownTank)
	}
	var spec EnemySpec
	switch code[2:4] {
	case "c1":
		spec.Type = TankCircleSingle
	case "b1":
		spec.Type = TankBoxSingle
	case "b2":
		spec.Type = TankBoxDouble
	case "b3":
		spec.Type = TankBoxTriple
	default:
		return EnemySpec{}, fmt.Errorf("tank %q tier %q: %w", code, code[2:4], ErrUnknownTank)
	}
	rot, ok := tankDirections[code[4]]
	if !ok {
		return EnemySpec{}, fmt.Errorf("tank %q direction %q: %w", code, code[4], ErrUnknownTank)
	}
	spec.Rotation = rot
	switch code[5] {
	case 'm':
		spec.Move = MoveEllipse
	case 's':
		spec.Move = MoveStationary
	default:
		return EnemySpec{}, fmt.Errorf("tank %q movement %q: %w", code, code[5], ErrUnknownTank)
	}
	return spec, nil
}

var gateLengths = map[byte]float64{
	's': 0.5,
	'm': 1 / math.Sqrt2,
	'l': 1,
	'x': 2,
}

// DecodeGate decodes "g <len> <type> <orient> <mult> <offset>" placed in
// cell (row, col), e.g. "gxm|4r".
func DecodeGate(code string, row, col int) (GateSpec, error) {
	if len(code) != cellRunes || code[0] != 'g' {
		return GateSpec{}, fmt.Errorf("gate %q: %w", code, ErrBadCell)
	}
	l, ok := gateLengths[code[1]]
	if !ok {
		return GateSpec{}, fmt.Errorf("gate %q length %q: %w", code, code[1], ErrBadCell)
	}

	var spec GateSpec
	switch code[2] {
	case 'n':
		spec.Type = GateNormal
	case 'm':
		spec.Type = GateMirror
	case 'r':
		spec.Type = GateRefract
	default:
		return GateSpec{}, fmt.Errorf("gate %q type %q: %w", code, code[2], ErrUnknownGateType)
	}

	if code[4] < '0' || code[4] > '9' {
		return GateSpec{}, fmt.Errorf("gate %q multiplier %q: %w", code, code[4], ErrBadCell)
	}
	spec.Multiplier = int(code[4] - '0')

	var off Vec
	switch code[5] {
	case '.':
	case 'l':
		off.X = -platformWidth / 2
	case 'r':
		off.X = platformWidth / 2
	case 'u':
		off.Y = -platformHeight / 2
	case 'd':
		off.Y = platformHeight / 2
	default:
		return GateSpec{}, fmt.Errorf("gate %q offset %q: %w", code, code[5], ErrBadCell)
	}

	c := CellCenter(col, row)
	w := platformWidth * l
	h := platformHeight * l
	switch code[3] {
	case '-':
		spec.Start = Vec{c.X - w, c.Y}
		spec.End = Vec{c.X + w, c.Y}
	case '|':
		spec.Start = Vec{c.X, c.Y - h}
		spec.End = Vec{c.X, c.Y + h}
	case '/':
		spec.Start = Vec{c.X + w, c.Y - h}
		spec.End = Vec{c.X - w, c.Y + h}
	case '\\':
		spec.Start = Vec{c.X - w, c.Y - h}
		spec.End = Vec{c.X + w, c.Y + h}
	default:
		return GateSpec{}, fmt.Errorf("gate %q orientation %q: %w", code, code[3], ErrBadCell)
	}

	// Gates anchor on the cell corner rather than its centre.
	anchor := Vec{-platformWidth / 2, -platformHeight / 2}
	spec.Start = spec.Start.Add(off).Add(anchor)
	spec.End = spec.End.Add(off).Add(anchor)
	return spec, nil
}

// DecodePill decodes one of the four pill codes.
func DecodePill(code string) (PillType, error) {
	pt, ok := pillCodes[code]
	if !ok {
		return 0, fmt.Errorf("pill %q: %w", code, ErrUnknownPill)
	}
	return pt, nil
}

// RowIndexAt maps a world y to its row.
func RowIndexAt(y float64) int {
	return int(math.Floor(y / platformHeight))
}

// Speed returns the scroll speed of row i. Rows outside the level read as
// the nearest edge row.
func (l *Level) Speed(i int) float64 {
	if len(l.Rows) == 0 {
		return 0
	}
	if i < 0 {
		i = 0
	}
	if i >= len(l.Rows) {
		i = len(l.Rows) - 1
	}
	return l.Rows[i].Speed
}

// Count returns how many cells of a kind the level holds.
func (l *Level) Count(kind CellKind) int {
	n := 0
	for _, row := range l.Rows {
		for _, code := range row.Cells {
			if k, err := ClassifyCell(code); err == nil && k == kind {
				n++
			}
		}
	}
	return n
}
