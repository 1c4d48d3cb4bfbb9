package main

import (
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"
	"github.com/zucenko/pingwin/model"
)

// cellWidth keeps tiles roughly square in a terminal.
const cellWidth = 2

type cellColor struct {
	fg, bg termbox.Attribute
}

// The eight basic terminal colours have no orange, so it is drawn as a
// yellow cell with red text.
var penguinColors = map[string]cellColor{
	"white":   {termbox.ColorWhite, termbox.ColorDefault},
	"red":     {termbox.ColorRed, termbox.ColorDefault},
	"yellow":  {termbox.ColorYellow, termbox.ColorDefault},
	"green":   {termbox.ColorGreen, termbox.ColorDefault},
	"cyan":    {termbox.ColorCyan, termbox.ColorDefault},
	"blue":    {termbox.ColorBlue, termbox.ColorDefault},
	"magenta": {termbox.ColorMagenta, termbox.ColorDefault},
	"orange":  {termbox.ColorRed, termbox.ColorYellow},
}

var facingGlyphs = map[model.Direction]rune{
	model.Up:    '^',
	model.Down:  'v',
	model.Left:  '<',
	model.Right: '>',
}

type termDisplay struct {
	board     *model.Board
	me        string
	text      string
	remaining func() time.Duration
}

func (d *termDisplay) ShowText(text string) {
	d.text = text
}

func (d *termDisplay) SetBoard(board *model.Board, me string) {
	d.board, d.me = board, me
}

func (d *termDisplay) Refresh() {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	row := 0
	if d.board != nil {
		d.drawBoard()
		row = model.Rows + 1
		row = d.drawScores(row)
	}
	drawString(0, row, d.text, termbox.ColorDefault|termbox.AttrBold, termbox.ColorDefault)
	termbox.Flush()
}

func (d *termDisplay) drawBoard() {
	for y := 0; y < model.Rows; y++ {
		for x := 0; x < model.Cols; x++ {
			glyph, fg, bg := tileCell(d.board.Tile(x, y), d.board.Glyph(x, y))
			for i := 0; i < cellWidth; i++ {
				termbox.SetCell(x*cellWidth+i, y, glyph, fg, bg)
			}
		}
	}
	for _, f := range d.board.Fishes() {
		_, _, bg := tileCell(d.board.Tile(f.X, f.Y), ' ')
		termbox.SetCell(f.X*cellWidth, f.Y, '>', fishColor(f.Type), bg)
		termbox.SetCell(f.X*cellWidth+1, f.Y, '<', fishColor(f.Type), bg)
	}
	for _, p := range d.board.Penguins() {
		fg, bg := penguinCell(p)
		if p.Id == d.me {
			fg |= termbox.AttrBold | termbox.AttrUnderline
		}
		termbox.SetCell(p.X*cellWidth, p.Y, rune('0'+p.Number%10), fg, bg)
		termbox.SetCell(p.X*cellWidth+1, p.Y, facingGlyphs[p.Facing], fg, bg)
	}
}

func (d *termDisplay) drawScores(row int) int {
	if d.remaining != nil {
		if left := d.remaining(); left > 0 {
			drawString(0, row, fmt.Sprintf("Time left: %ds", int(left.Round(time.Second)/time.Second)), termbox.ColorDefault, termbox.ColorDefault)
			row++
		}
	}
	for _, p := range d.board.Penguins() {
		fg, bg := penguinCell(p)
		line := fmt.Sprintf("%s: %d fish", p.Name(), p.FishCount)
		if p.Id == d.me {
			line += " (you)"
		}
		drawString(0, row, line, fg, bg)
		row++
	}
	return row
}

func tileCell(t model.Tile, glyph rune) (rune, termbox.Attribute, termbox.Attribute) {
	switch t {
	case model.TileWall:
		return glyph, termbox.ColorWhite, termbox.ColorBlack
	case model.TileIce:
		return ' ', termbox.ColorDefault, termbox.ColorCyan
	case model.TileWater:
		return '~', termbox.ColorWhite, termbox.ColorBlue
	default:
		return ' ', termbox.ColorDefault, termbox.ColorDefault
	}
}

func fishColor(fishType int) termbox.Attribute {
	switch fishType % model.FishTypes {
	case 0:
		return termbox.ColorYellow
	case 1:
		return termbox.ColorGreen
	case 2:
		return termbox.ColorMagenta
	default:
		return termbox.ColorRed
	}
}

func penguinCell(p *model.Penguin) (termbox.Attribute, termbox.Attribute) {
	c, ok := penguinColors[p.Color]
	if !ok {
		return termbox.ColorDefault, termbox.ColorDefault
	}
	return c.fg, c.bg
}

func drawString(x, y int, s string, fg, bg termbox.Attribute) {
	for _, r := range s {
		termbox.SetCell(x, y, r, fg, bg)
		x += runewidth.RuneWidth(r)
	}
}
