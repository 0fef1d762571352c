package game

import "math"

// TileKind identifies the static content of one level cell.
type TileKind uint8

const (
	TileEmpty    TileKind = iota // open ground
	TilePlatform                 // solid block
	TileSpike                    // solid block, lethal from below
)

func (tk TileKind) String() string {
	switch tk {
	case TileEmpty:
		return "empty"
	case TilePlatform:
		return "platform"
	case TileSpike:
		return "spike"
	default:
		return "unknown"
	}
}

// Solid reports whether the tile blocks tanks.
func (tk TileKind) Solid() bool {
	return tk == TilePlatform || tk == TileSpike
}

// TileMap is the grid of platforms built from the level at load time.
type TileMap struct {
	Cols  int
	Rows  int
	Tiles []TileKind // row-major: index = row*Cols + col
}

// NewTileMap creates an empty tile map.
func NewTileMap(cols, rows int) *TileMap {
	return &TileMap{Cols: cols, Rows: rows, Tiles: make([]TileKind, cols*rows)}
}

func (tm *TileMap) inBounds(col, row int) bool {
	return col >= 0 && col < tm.Cols && row >= 0 && row < tm.Rows
}

// At returns the tile at (col, row). Out of bounds reads as empty.
func (tm *TileMap) At(col, row int) TileKind {
	if !tm.inBounds(col, row) {
		return TileEmpty
	}
	return tm.Tiles[row*tm.Cols+col]
}

// Set writes a tile. Out of bounds writes are dropped.
func (tm *TileMap) Set(col, row int, tk TileKind) {
	if !tm.inBounds(col, row) {
		return
	}
	tm.Tiles[row*tm.Cols+col] = tk
}

// CellWidth and CellHeight are the world size of one level cell.
const (
	CellWidth  = platformWidth
	CellHeight = platformHeight
)

// CellAt converts a world point to its cell.
func CellAt(p Vec) (col, row int) {
	return int(math.Floor(p.X / platformWidth)), int(math.Floor(p.Y / platformHeight))
}

// CellCenter returns the world-space centre of a cell.
func CellCenter(col, row int) Vec {
	return Vec{
		X: float64(col*platformWidth + platformWidth/2),
		Y: float64(row*platformHeight + platformHeight/2),
	}
}

// cellBounds returns the box of a cell as minX, minY, maxX, maxY.
func cellBounds(col, row int) (float64, float64, float64, float64) {
	x := float64(col * platformWidth)
	y := float64(row * platformHeight)
	return x, y, x + platformWidth, y + platformHeight
}

// Count returns how many tiles of a kind exist.
func (tm *TileMap) Count(tk TileKind) int {
	n := 0
	for _, t := range tm.Tiles {
		if t == tk {
			n++
		}
	}
	return n
}
