package model

import (
	"fmt"
	"math/rand"
)

const (
	Cols = 16
	Rows = 10

	FishTypes = 4
)

type Direction string

const (
	Up    Direction = "Up"
	Down  Direction = "Down"
	Left  Direction = "Left"
	Right Direction = "Right"
)

var Directions = []Direction{Up, Down, Left, Right}

func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// Delta returns the single step offset for d. Invalid directions do not move.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Right:
		return 1, 0
	case Left:
		return -1, 0
	}
	return 0, 0
}

type Point struct {
	X, Y int
}

type Tile int

const (
	TileGround Tile = iota
	TileWall
	TileIce
	TileWater
)

// TileOf classifies a level glyph. Wall and ice variants only differ in how
// they are drawn.
func TileOf(glyph rune) Tile {
	switch glyph {
	case '#', '?', '|', '.', '[', '=', ']':
		return TileWall
	case '<', '-', '>', '^', '/', ',':
		return TileIce
	case '~':
		return TileWater
	default:
		return TileGround
	}
}

var Colors = []string{"white", "red", "yellow", "green", "cyan", "blue", "magenta", "orange"}

type Penguin struct {
	Id        string    `json:"id"`
	Number    int       `json:"number"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	FishCount int       `json:"fish_count"`
	Moving    bool      `json:"-"`
	Facing    Direction `json:"facing"`
	Color     string    `json:"color"`
}

func (p *Penguin) EatFish() int {
	p.FishCount++
	return p.FishCount
}

// DropIntoWater costs the penguin 5 fish, never going below zero.
func (p *Penguin) DropIntoWater() int {
	p.FishCount -= 5
	if p.FishCount < 0 {
		p.FishCount = 0
	}
	return p.FishCount
}

func (p *Penguin) Stop() {
	p.Moving = false
}

func (p *Penguin) Name() string {
	return fmt.Sprintf("Player %d", p.Number)
}

type Fish struct {
	Type int `json:"type"`
	X    int `json:"x"`
	Y    int `json:"y"`
}

type Board struct {
	layout   []rune
	blocked  map[Point]bool
	water    map[Point]bool
	penguins []*Penguin
	fishes   []*Fish
	rnd      *rand.Rand
}
