package main

import (
	"time"

	"github.com/nsf/termbox-go"
	"github.com/zucenko/pingwin/client"
	"github.com/zucenko/pingwin/model"
)

// keyInput maps a key press to a game input.
func keyInput(ev termbox.Event) (client.Input, bool) {
	switch ev.Key {
	case termbox.KeyArrowUp:
		return client.Input{Direction: model.Up}, true
	case termbox.KeyArrowDown:
		return client.Input{Direction: model.Down}, true
	case termbox.KeyArrowLeft:
		return client.Input{Direction: model.Left}, true
	case termbox.KeyArrowRight:
		return client.Input{Direction: model.Right}, true
	case termbox.KeyEsc, termbox.KeyCtrlC:
		return client.Quit, true
	}
	switch ev.Ch {
	case 'w', 'W':
		return client.Input{Direction: model.Up}, true
	case 's', 'S':
		return client.Input{Direction: model.Down}, true
	case 'a', 'A':
		return client.Input{Direction: model.Left}, true
	case 'd', 'D':
		return client.Input{Direction: model.Right}, true
	case 'q', 'Q':
		return client.Quit, true
	}
	return client.Input{}, false
}

// loopKeyboard blocks on the terminal and forwards key presses until done.
func loopKeyboard(inputs chan<- client.Input, done <-chan struct{}) {
	for {
		ev := termbox.PollEvent()
		var in client.Input
		switch ev.Type {
		case termbox.EventKey:
			var ok bool
			if in, ok = keyInput(ev); !ok {
				continue
			}
		case termbox.EventResize:
		case termbox.EventError:
			in = client.Quit
		case termbox.EventInterrupt:
			return
		default:
			continue
		}
		select {
		case inputs <- in:
		case <-done:
			return
		}
		if in.Quit {
			return
		}
	}
}

// loopTicker redraws the countdown once a second.
func loopTicker(inputs chan<- client.Input, done <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			select {
			case inputs <- client.Input{}:
			case <-done:
				return
			}
		case <-done:
			return
		}
	}
}
