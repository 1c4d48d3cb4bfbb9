package client

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/pingwin/data"
	"github.com/zucenko/pingwin/model"
	"github.com/zucenko/pingwin/protocol"
)

var (
	ErrServerFull     = errors.New("server full or game already started")
	ErrConnectionLost = errors.New("connection to server lost")
)

// Display shows the local mirror of the game. All calls come from the
// goroutine running Client.Run.
type Display interface {
	ShowText(text string)
	SetBoard(board *model.Board, me string)
	Refresh()
}

// Input is one event from the player's input device. A zero Input only
// redraws the display.
type Input struct {
	Direction model.Direction
	Quit      bool
}

var Quit = Input{Quit: true}

type Client struct {
	Id       string
	Level    string
	Board    *model.Board
	Deadline time.Time

	// MoveDebounce drops moves issued sooner than this after the previous
	// one, so the local prediction stays in step with the server.
	MoveDebounce time.Duration

	stream   protocol.Stream
	display  Display
	levels   fs.FS
	started  bool
	lastMove time.Time
	now      func() time.Time
}

// New wraps a connected stream. A nil levels store means the embedded levels.
func New(stream protocol.Stream, display Display, levels fs.FS) *Client {
	if levels == nil {
		levels = data.Levels()
	}
	return &Client{
		MoveDebounce: 100 * time.Millisecond,
		stream:       stream,
		display:      display,
		levels:       levels,
		now:          time.Now,
	}
}

// Run plays one game. It returns nil once the game has ended or the player
// quit, and closes the stream before returning.
func (c *Client) Run(ctx context.Context, inputs <-chan Input) error {
	stop := make(chan struct{})
	defer close(stop)
	defer c.stream.Close()

	incoming := make(chan protocol.Message)
	go c.loopRead(incoming, stop)

	c.display.ShowText("Connecting...")
	c.display.Refresh()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-incoming:
			if !ok {
				if c.Id == "" {
					return ErrServerFull
				}
				return ErrConnectionLost
			}
			over, err := c.handle(m)
			if err != nil {
				return err
			}
			c.display.Refresh()
			if over {
				return nil
			}
		case in, ok := <-inputs:
			if !ok || in.Quit {
				log.Info("Player quit.")
				return nil
			}
			if err := c.input(in.Direction); err != nil {
				return err
			}
			c.display.Refresh()
		}
	}
}

// Remaining is the time left before the current deadline.
func (c *Client) Remaining() time.Duration {
	if !c.started {
		return 0
	}
	if d := c.Deadline.Sub(c.now()); d > 0 {
		return d
	}
	return 0
}

func (c *Client) loopRead(incoming chan<- protocol.Message, stop <-chan struct{}) {
	defer close(incoming)
	scanner := protocol.NewScanner(c.stream)
	for scanner.Scan() {
		m, err := protocol.Decode(scanner.Bytes())
		if err != nil {
			log.Warnf("Dropping malformed message: %v", err)
			continue
		}
		select {
		case incoming <- m:
		case <-stop:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		log.Debugf("loopRead ended: %v", err)
	}
}

// handle applies one server message to the local mirror and reports whether
// the game is over.
func (c *Client) handle(m protocol.Message) (bool, error) {
	switch m := m.(type) {
	case *protocol.Welcome:
		layout, err := model.LoadLevel(c.levels, m.LevelName)
		if err != nil {
			return false, err
		}
		board, err := model.NewBoard(layout)
		if err != nil {
			return false, err
		}
		c.Id, c.Level, c.Board = m.PlayerId, m.LevelName, board
		c.display.SetBoard(board, c.Id)
		c.display.ShowText("Waiting for other players...")
		log.WithField("player", c.Id).Infof("Welcome to level %q.", m.LevelName)
	case *protocol.StartGame:
		if c.Board == nil {
			return false, fmt.Errorf("%w: %s before %s", protocol.ErrMalformed, m.Kind(), protocol.KindWelcome)
		}
		penguins := make([]*model.Penguin, 0, len(m.Penguins))
		for i := range m.Penguins {
			p := m.Penguins[i]
			penguins = append(penguins, &p)
		}
		fishes := make([]*model.Fish, 0, len(m.Fishes))
		for i := range m.Fishes {
			f := m.Fishes[i]
			fishes = append(fishes, &f)
		}
		c.Board.SetPenguins(penguins)
		c.Board.SetFishes(fishes)
		c.Deadline = c.now().Add(time.Duration(m.GameDuration) * time.Second)
		c.started = true
		if me := c.Board.Penguin(c.Id); me != nil {
			c.display.ShowText(fmt.Sprintf("Game started, you are %s.", me.Name()))
		} else {
			c.display.ShowText("Game started.")
		}
	default:
		if !c.started {
			log.Warnf("Ignoring %s before the game started.", m.Kind())
			return false, nil
		}
		return c.handleInGame(m), nil
	}
	return false, nil
}

func (c *Client) handleInGame(m protocol.Message) bool {
	switch m := m.(type) {
	case *protocol.MoveOtherTo:
		if c.Board.MovePenguin(m.PenguinId, m.Direction) {
			c.Board.PenguinAteFish(m.PenguinId)
		} else {
			log.Warnf("Server moved %s %s into a blocked tile.", m.PenguinId, m.Direction)
		}
	case *protocol.TurnOtherTo:
		if p := c.Board.Penguin(m.PenguinId); p != nil {
			p.Facing = m.Direction
		}
	case *protocol.ScoreUpdate:
		if p := c.Board.Penguin(m.PenguinId); p != nil {
			p.FishCount = m.FishCount
		}
	case *protocol.NewFish:
		f := m.Fish
		c.Board.AddFish(&f)
	case *protocol.RiseGameDuration:
		c.Deadline = c.Deadline.Add(time.Duration(m.Seconds) * time.Second)
		c.display.ShowText(fmt.Sprintf("Draw! Game extended by %d seconds.", m.Seconds))
	case *protocol.EndGame:
		c.started = false
		c.display.ShowText(c.result())
		return true
	default:
		log.Warnf("Ignoring unexpected %s from server.", m.Kind())
	}
	return false
}

// input predicts the player's move locally before telling the server. A
// blocked move only turns the penguin.
func (c *Client) input(d model.Direction) error {
	if !c.started || !d.Valid() {
		return nil
	}
	if c.MoveDebounce > 0 && c.now().Sub(c.lastMove) < c.MoveDebounce {
		return nil
	}
	var m protocol.Message
	if c.Board.MovePenguin(c.Id, d) {
		c.Board.PenguinAteFish(c.Id)
		c.lastMove = c.now()
		m = &protocol.MoveMeTo{Direction: d}
	} else if p := c.Board.Penguin(c.Id); p != nil {
		p.Facing = d
		m = &protocol.TurnMeTo{Direction: d}
	} else {
		return nil
	}
	if err := protocol.Write(c.stream, m); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}
	return nil
}

func (c *Client) result() string {
	leader := c.Board.Leader()
	switch {
	case leader == nil:
		return fmt.Sprintf("Game over, draw at %d fish.", c.Board.BestFishCount())
	case leader.Id == c.Id:
		return fmt.Sprintf("Game over, you win with %d fish!", leader.FishCount)
	default:
		return fmt.Sprintf("Game over, %s wins with %d fish.", leader.Name(), leader.FishCount)
	}
}
