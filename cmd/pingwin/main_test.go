package main

import (
	"testing"
	"time"

	"github.com/nsf/termbox-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/pingwin/client"
	"github.com/zucenko/pingwin/model"
)

func TestKeyInput(t *testing.T) {
	tests := []struct {
		ev   termbox.Event
		want client.Input
	}{
		{termbox.Event{Key: termbox.KeyArrowUp}, client.Input{Direction: model.Up}},
		{termbox.Event{Key: termbox.KeyArrowDown}, client.Input{Direction: model.Down}},
		{termbox.Event{Key: termbox.KeyArrowLeft}, client.Input{Direction: model.Left}},
		{termbox.Event{Key: termbox.KeyArrowRight}, client.Input{Direction: model.Right}},
		{termbox.Event{Ch: 'w'}, client.Input{Direction: model.Up}},
		{termbox.Event{Ch: 'S'}, client.Input{Direction: model.Down}},
		{termbox.Event{Ch: 'a'}, client.Input{Direction: model.Left}},
		{termbox.Event{Ch: 'd'}, client.Input{Direction: model.Right}},
		{termbox.Event{Key: termbox.KeyEsc}, client.Quit},
		{termbox.Event{Key: termbox.KeyCtrlC}, client.Quit},
		{termbox.Event{Ch: 'q'}, client.Quit},
	}
	for _, tt := range tests {
		in, ok := keyInput(tt.ev)
		assert.True(t, ok, "%+v", tt.ev)
		assert.Equal(t, tt.want, in)
	}

	_, ok := keyInput(termbox.Event{Ch: 'x'})
	assert.False(t, ok)
	_, ok = keyInput(termbox.Event{Key: termbox.KeyEnter})
	assert.False(t, ok)
}

func TestTileCell(t *testing.T) {
	glyph, _, bg := tileCell(model.TileWall, '[')
	assert.Equal(t, '[', glyph)
	assert.Equal(t, termbox.ColorBlack, bg)

	glyph, _, bg = tileCell(model.TileWater, '~')
	assert.Equal(t, '~', glyph)
	assert.Equal(t, termbox.ColorBlue, bg)

	_, _, bg = tileCell(model.TileIce, '<')
	assert.Equal(t, termbox.ColorCyan, bg)

	glyph, _, bg = tileCell(model.TileGround, 'x')
	assert.Equal(t, ' ', glyph)
	assert.Equal(t, termbox.ColorDefault, bg)
}

func TestPenguinCell(t *testing.T) {
	seen := map[[2]termbox.Attribute]string{}
	for _, color := range model.Colors {
		fg, bg := penguinCell(&model.Penguin{Color: color})
		assert.NotEqual(t, fg, bg, color)
		assert.NotEqual(t, termbox.ColorBlack, fg, color)
		assert.NotEqual(t, termbox.ColorDefault, fg, color)
		if prev, dup := seen[[2]termbox.Attribute{fg, bg}]; dup {
			t.Errorf("%s is drawn like %s", color, prev)
		}
		seen[[2]termbox.Attribute{fg, bg}] = color
	}
	assert.NotContains(t, model.Colors, "black")

	fg, bg := penguinCell(&model.Penguin{Color: "mauve"})
	assert.Equal(t, termbox.ColorDefault, fg)
	assert.Equal(t, termbox.ColorDefault, bg)
}

func TestFlags(t *testing.T) {
	t.Setenv("PINGWIN_ADDRESS", "ws://example.com/play")
	cfg := &Config{}
	require.NoError(t, newCmd(cfg).ParseFlags([]string{"--linger", "1s"}))
	assert.Equal(t, "ws://example.com/play", cfg.address)
	assert.Equal(t, time.Second, cfg.linger)
	assert.Equal(t, 100*time.Millisecond, cfg.moveDebounce)
	assert.NoError(t, cfg.validate())

	cfg.moveDebounce = -time.Second
	assert.Error(t, cfg.validate())
	cfg.moveDebounce = 0
	cfg.address = ""
	assert.Error(t, cfg.validate())
}

func TestLevelsFS(t *testing.T) {
	assert.Nil(t, levelsFS(""))
	assert.NotNil(t, levelsFS(t.TempDir()))
}
