package model

import (
	"math/rand"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/pingwin/data"
)

func emptyLayout() []rune {
	return []rune(strings.Repeat(" ", Cols*Rows))
}

func layoutWith(glyphs map[Point]rune) string {
	l := emptyLayout()
	for p, g := range glyphs {
		l[p.Y*Cols+p.X] = g
	}
	return string(l)
}

func newTestBoard(t *testing.T, glyphs map[Point]rune) *Board {
	t.Helper()
	b, err := NewBoard(layoutWith(glyphs))
	require.NoError(t, err)
	b.SetRand(rand.New(rand.NewSource(1)))
	return b
}

func TestNewBoardRejectsWrongSize(t *testing.T) {
	_, err := NewBoard("   ")
	assert.ErrorIs(t, err, ErrBadLayout)
}

func TestIsFreeTileOutOfBounds(t *testing.T) {
	b := newTestBoard(t, nil)
	for _, p := range []Point{{-1, 0}, {0, -1}, {Cols, 0}, {0, Rows}, {Cols, Rows}, {-5, 20}} {
		assert.False(t, b.IsFreeTile(p.X, p.Y), "%v", p)
	}
	assert.True(t, b.IsFreeTile(0, 0))
	assert.True(t, b.IsFreeTile(Cols-1, Rows-1))
}

func TestIsFreeTileGlyphs(t *testing.T) {
	glyphs := []rune("#?|.[=]<->^/,~ xZ")
	l := emptyLayout()
	copy(l, glyphs)
	b, err := NewBoard(string(l))
	require.NoError(t, err)

	for i, g := range glyphs {
		wall := strings.ContainsRune("#?|.[=]", g)
		assert.Equal(t, !wall, b.IsFreeTile(i%Cols, i/Cols), "glyph %q", g)
	}
	assert.True(t, b.IsWaterTile(13, 0))
	assert.Equal(t, TileIce, b.Tile(7, 0))
	assert.Equal(t, TileGround, b.Tile(0, 1))
	assert.Equal(t, TileWall, b.Tile(Cols, 0))
}

func TestUnknownGlyphIsGround(t *testing.T) {
	assert.Equal(t, TileGround, TileOf('Z'))
	assert.Equal(t, TileGround, TileOf('*'))
}

func TestMovePenguin(t *testing.T) {
	b := newTestBoard(t, map[Point]rune{{6, 5}: '#', {5, 4}: '~'})
	p := &Penguin{Id: "a", X: 5, Y: 5, Facing: Down}
	b.SetPenguins([]*Penguin{p})

	assert.False(t, b.MovePenguin("a", Right), "wall")
	assert.Equal(t, Point{5, 5}, Point{p.X, p.Y})
	assert.Equal(t, Down, p.Facing)

	assert.True(t, b.MovePenguin("a", Up), "water is walkable")
	assert.Equal(t, Point{5, 4}, Point{p.X, p.Y})
	assert.Equal(t, Up, p.Facing)

	assert.False(t, b.MovePenguin("nobody", Up))
	assert.False(t, b.MovePenguin("a", Direction("Sideways")))
}

func TestMovePenguinSingleStep(t *testing.T) {
	b := newTestBoard(t, map[Point]rune{{3, 3}: '|'})
	r := rand.New(rand.NewSource(7))
	p := &Penguin{Id: "a", X: 2, Y: 2}
	b.SetPenguins([]*Penguin{p})

	for i := 0; i < 500; i++ {
		d := Directions[r.Intn(len(Directions))]
		x, y := p.X, p.Y
		if b.MovePenguin("a", d) {
			dx, dy := d.Delta()
			assert.Equal(t, x+dx, p.X)
			assert.Equal(t, y+dy, p.Y)
			assert.True(t, b.IsFreeTile(p.X, p.Y))
		} else {
			assert.Equal(t, x, p.X)
			assert.Equal(t, y, p.Y)
		}
	}
}

func TestMovePenguinEdges(t *testing.T) {
	b := newTestBoard(t, nil)
	p := &Penguin{Id: "a", X: 0, Y: 0}
	b.SetPenguins([]*Penguin{p})
	assert.False(t, b.MovePenguin("a", Left))
	assert.False(t, b.MovePenguin("a", Up))
	p.X, p.Y = Cols-1, Rows-1
	assert.False(t, b.MovePenguin("a", Right))
	assert.False(t, b.MovePenguin("a", Down))
}

func TestPenguinAteFish(t *testing.T) {
	b := newTestBoard(t, nil)
	p := &Penguin{Id: "a", X: 1, Y: 1}
	first := &Fish{Type: 0, X: 2, Y: 1}
	second := &Fish{Type: 1, X: 2, Y: 1}
	other := &Fish{Type: 2, X: 9, Y: 9}
	b.SetPenguins([]*Penguin{p})
	b.SetFishes([]*Fish{other, first, second})

	assert.Nil(t, b.PenguinAteFish("a"))
	require.True(t, b.MovePenguin("a", Right))

	assert.Same(t, first, b.PenguinAteFish("a"))
	assert.Len(t, b.Fishes(), 2)
	assert.Same(t, second, b.PenguinAteFish("a"))
	assert.Nil(t, b.PenguinAteFish("a"))
	assert.Equal(t, []*Fish{other}, b.Fishes())
}

func TestIsUnoccupiedTile(t *testing.T) {
	b := newTestBoard(t, map[Point]rune{{0, 0}: '=', {1, 0}: '~', {2, 0}: '-'})
	b.SetPenguins([]*Penguin{{Id: "a", X: 3, Y: 0}})
	b.SetFishes([]*Fish{{X: 4, Y: 0}})

	assert.False(t, b.IsUnoccupiedTile(0, 0), "wall")
	assert.False(t, b.IsUnoccupiedTile(1, 0), "water")
	assert.True(t, b.IsUnoccupiedTile(2, 0), "ice")
	assert.False(t, b.IsUnoccupiedTile(3, 0), "penguin")
	assert.False(t, b.IsUnoccupiedTile(4, 0), "fish")
	assert.False(t, b.IsUnoccupiedTile(-1, 0))
}

func TestRandomUnoccupiedTiles(t *testing.T) {
	b := newTestBoard(t, map[Point]rune{{0, 0}: '#', {1, 1}: '~'})
	b.SetPenguins([]*Penguin{{Id: "a", X: 2, Y: 2}})

	tiles, err := b.RandomUnoccupiedTiles(40)
	require.NoError(t, err)
	require.Len(t, tiles, 40)
	seen := map[Point]bool{}
	for _, p := range tiles {
		assert.False(t, seen[p], "duplicate %v", p)
		seen[p] = true
		assert.True(t, b.IsUnoccupiedTile(p.X, p.Y), "%v", p)
	}
}

func TestRandomUnoccupiedTilesCapacity(t *testing.T) {
	l := []rune(strings.Repeat("#", Cols*Rows))
	l[0], l[1] = ' ', ' '
	b, err := NewBoard(string(l))
	require.NoError(t, err)

	tiles, err := b.RandomUnoccupiedTiles(2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Point{{0, 0}, {1, 0}}, tiles)

	_, err = b.RandomUnoccupiedTiles(3)
	assert.ErrorIs(t, err, ErrNoFreeTile)

	b.SetPenguins([]*Penguin{{X: 0, Y: 0}, {X: 1, Y: 0}})
	_, err = b.RandomUnoccupiedTile()
	assert.ErrorIs(t, err, ErrNoFreeTile)
}

func TestNoWinner(t *testing.T) {
	b := newTestBoard(t, nil)
	a := &Penguin{Id: "a", FishCount: 3}
	c := &Penguin{Id: "c", FishCount: 3}
	d := &Penguin{Id: "d", FishCount: 1}
	b.SetPenguins([]*Penguin{a, c, d})

	assert.Equal(t, 3, b.BestFishCount())
	assert.True(t, b.NoWinner())
	assert.Nil(t, b.Leader())

	c.EatFish()
	assert.False(t, b.NoWinner())
	assert.Same(t, c, b.Leader())
}

func TestPenguinScore(t *testing.T) {
	p := &Penguin{Number: 2}
	assert.Equal(t, 1, p.EatFish())
	assert.Equal(t, 0, p.DropIntoWater())
	for i := 0; i < 7; i++ {
		p.EatFish()
	}
	assert.Equal(t, 2, p.DropIntoWater())
	assert.Equal(t, "Player 2", p.Name())
}

func TestLoadLevel(t *testing.T) {
	rows := make([]string, Rows)
	for i := range rows {
		rows[i] = strings.Repeat(" ", Cols)
	}
	rows[5] = "|     #        |"
	store := fstest.MapFS{
		"arena": {Data: []byte(strings.Join(rows, "\r\n") + "\n")},
		"short": {Data: []byte("|  |\n")},
	}

	layout, err := LoadLevel(store, "arena")
	require.NoError(t, err)
	b, err := NewBoard(layout)
	require.NoError(t, err)
	assert.False(t, b.IsFreeTile(6, 5))
	assert.False(t, b.IsFreeTile(0, 5))
	assert.True(t, b.IsFreeTile(5, 5))

	_, err = LoadLevel(store, "short")
	assert.ErrorIs(t, err, ErrBadLayout)

	_, err = LoadLevel(store, "missing")
	assert.Error(t, err)

	for _, name := range []string{"", "../arena", "a/b", `a\b`} {
		_, err = LoadLevel(store, name)
		assert.ErrorIs(t, err, ErrBadLevelName, name)
	}
}

func TestEmbeddedLevels(t *testing.T) {
	for _, name := range []string{"default", "lake"} {
		layout, err := LoadLevel(data.Levels(), name)
		require.NoError(t, err, name)
		_, err = NewBoard(layout)
		require.NoError(t, err, name)
	}

	layout, err := LoadLevel(data.Levels(), "default")
	require.NoError(t, err)
	b, err := NewBoard(layout)
	require.NoError(t, err)
	assert.True(t, b.IsFreeTile(5, 5))
	assert.False(t, b.IsFreeTile(6, 5))
	assert.False(t, b.IsFreeTile(6, 4))
	assert.True(t, b.IsWaterTile(11, 2))
	assert.True(t, b.IsWaterTile(12, 2))
	assert.True(t, b.IsFreeTile(10, 2))
}
