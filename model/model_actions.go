package model

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	ErrBadLayout  = errors.New("bad level layout")
	ErrNoFreeTile = errors.New("not enough unoccupied tiles")
)

// NewBoard builds a board from a row-major layout of exactly Cols*Rows glyphs.
func NewBoard(layout string) (*Board, error) {
	glyphs := []rune(layout)
	if len(glyphs) != Cols*Rows {
		return nil, fmt.Errorf("%w: %d glyphs, want %d", ErrBadLayout, len(glyphs), Cols*Rows)
	}
	b := &Board{
		layout:  glyphs,
		blocked: make(map[Point]bool),
		water:   make(map[Point]bool),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for i, glyph := range glyphs {
		p := Point{X: i % Cols, Y: i / Cols}
		switch TileOf(glyph) {
		case TileWall:
			b.blocked[p] = true
		case TileWater:
			b.water[p] = true
		}
	}
	return b, nil
}

func (b *Board) SetRand(r *rand.Rand) {
	b.rnd = r
}

func (b *Board) Layout() string {
	return string(b.layout)
}

func InBounds(x, y int) bool {
	return x >= 0 && x < Cols && y >= 0 && y < Rows
}

func (b *Board) Tile(x, y int) Tile {
	if !InBounds(x, y) {
		return TileWall
	}
	return TileOf(b.layout[y*Cols+x])
}

func (b *Board) Glyph(x, y int) rune {
	if !InBounds(x, y) {
		return ' '
	}
	return b.layout[y*Cols+x]
}

func (b *Board) IsFreeTile(x, y int) bool {
	return InBounds(x, y) && !b.blocked[Point{x, y}]
}

func (b *Board) IsWaterTile(x, y int) bool {
	return b.water[Point{x, y}]
}

// IsUnoccupiedTile reports whether something may be placed at (x, y). Water
// is walkable but never a spawn point.
func (b *Board) IsUnoccupiedTile(x, y int) bool {
	if !b.IsFreeTile(x, y) || b.IsWaterTile(x, y) {
		return false
	}
	for _, f := range b.fishes {
		if f.X == x && f.Y == y {
			return false
		}
	}
	for _, p := range b.penguins {
		if p.X == x && p.Y == y {
			return false
		}
	}
	return true
}

func (b *Board) SetPenguins(penguins []*Penguin) {
	b.penguins = penguins
}

func (b *Board) SetFishes(fishes []*Fish) {
	b.fishes = fishes
}

func (b *Board) AddFish(f *Fish) {
	b.fishes = append(b.fishes, f)
}

func (b *Board) Penguins() []*Penguin {
	return b.penguins
}

func (b *Board) Fishes() []*Fish {
	return b.fishes
}

func (b *Board) Penguin(id string) *Penguin {
	for _, p := range b.penguins {
		if p.Id == id {
			return p
		}
	}
	return nil
}

func (b *Board) RemovePenguin(id string) {
	for i, p := range b.penguins {
		if p.Id == id {
			b.penguins = append(b.penguins[:i], b.penguins[i+1:]...)
			return
		}
	}
}

// MovePenguin steps the penguin one tile in d. It returns false, leaving the
// penguin untouched, when the target is outside the board or blocked.
func (b *Board) MovePenguin(id string, d Direction) bool {
	p := b.Penguin(id)
	if p == nil || !d.Valid() {
		return false
	}
	dx, dy := d.Delta()
	x, y := p.X+dx, p.Y+dy
	if !b.IsFreeTile(x, y) {
		return false
	}
	p.X, p.Y = x, y
	p.Facing = d
	return true
}

// PenguinAteFish removes and returns the first fish lying under the penguin.
func (b *Board) PenguinAteFish(id string) *Fish {
	p := b.Penguin(id)
	if p == nil {
		return nil
	}
	for i, f := range b.fishes {
		if f.X == p.X && f.Y == p.Y {
			b.fishes = append(b.fishes[:i], b.fishes[i+1:]...)
			return f
		}
	}
	return nil
}

func (b *Board) unoccupiedCount() int {
	n := 0
	for y := 0; y < Rows; y++ {
		for x := 0; x < Cols; x++ {
			if b.IsUnoccupiedTile(x, y) {
				n++
			}
		}
	}
	return n
}

func (b *Board) RandomUnoccupiedTile() (Point, error) {
	tiles, err := b.RandomUnoccupiedTiles(1)
	if err != nil {
		return Point{}, err
	}
	return tiles[0], nil
}

// RandomUnoccupiedTiles draws n distinct unoccupied tiles, each draw uniform
// over the whole grid.
func (b *Board) RandomUnoccupiedTiles(n int) ([]Point, error) {
	if free := b.unoccupiedCount(); n > free {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNoFreeTile, n, free)
	}
	tiles := make([]Point, 0, n)
	taken := make(map[Point]bool, n)
	for len(tiles) < n {
		p := Point{X: b.rnd.Intn(Cols), Y: b.rnd.Intn(Rows)}
		if taken[p] || !b.IsUnoccupiedTile(p.X, p.Y) {
			continue
		}
		taken[p] = true
		tiles = append(tiles, p)
	}
	return tiles, nil
}

func (b *Board) BestFishCount() int {
	best := 0
	for _, p := range b.penguins {
		if p.FishCount > best {
			best = p.FishCount
		}
	}
	return best
}

// NoWinner is true when at least two penguins share the best score.
func (b *Board) NoWinner() bool {
	best := b.BestFishCount()
	leaders := 0
	for _, p := range b.penguins {
		if p.FishCount == best {
			leaders++
		}
	}
	return leaders >= 2
}

// Leader returns the penguin with the best score, nil on a tie or an empty board.
func (b *Board) Leader() *Penguin {
	if len(b.penguins) == 0 || b.NoWinner() {
		return nil
	}
	best := b.BestFishCount()
	for _, p := range b.penguins {
		if p.FishCount == best {
			return p
		}
	}
	return nil
}
