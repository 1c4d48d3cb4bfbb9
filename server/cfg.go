package server

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/zucenko/pingwin/data"
	"github.com/zucenko/pingwin/model"
)

type Config struct {
	LevelName string
	// Levels is the level store; nil means the embedded levels.
	Levels fs.FS

	Players      int
	Fishes       int
	NewFishDelay time.Duration
	GameDuration time.Duration
	Extension    time.Duration
	// MoveDebounce is how long a moved penguin stays marked moving, 0 never
	// marks it. Moves are accepted regardless.
	MoveDebounce time.Duration

	MaxMalformed int
	SendQueue    int
	Seed         int64
}

func DefaultConfig() Config {
	return Config{
		LevelName:    "default",
		Players:      2,
		Fishes:       7,
		NewFishDelay: 5 * time.Second,
		GameDuration: 60 * time.Second,
		Extension:    10 * time.Second,
		MoveDebounce: 100 * time.Millisecond,
		MaxMalformed: 5,
		SendQueue:    64,
	}
}

func (c Config) Validate() error {
	switch {
	case c.LevelName == "":
		return errors.New("level name must not be empty")
	case c.Players < 2 || c.Players > len(model.Colors):
		return fmt.Errorf("invalid number of players (must be between 2-%d inclusive): %d", len(model.Colors), c.Players)
	case c.Fishes < 0:
		return fmt.Errorf("invalid number of fishes: %d", c.Fishes)
	case c.NewFishDelay <= 0:
		return fmt.Errorf("invalid fish spawn interval: %s", c.NewFishDelay)
	case c.GameDuration < time.Second:
		return fmt.Errorf("invalid game duration (must be at least 1s): %s", c.GameDuration)
	case c.GameDuration%time.Second != 0:
		return fmt.Errorf("invalid game duration (must be whole seconds): %s", c.GameDuration)
	case c.Extension < time.Second:
		return fmt.Errorf("invalid game extension (must be at least 1s): %s", c.Extension)
	case c.Extension%time.Second != 0:
		return fmt.Errorf("invalid game extension (must be whole seconds): %s", c.Extension)
	case c.MoveDebounce < 0:
		return fmt.Errorf("invalid move debounce: %s", c.MoveDebounce)
	case c.MaxMalformed < 1:
		return fmt.Errorf("invalid malformed message limit: %d", c.MaxMalformed)
	case c.SendQueue < 1:
		return fmt.Errorf("invalid send queue size: %d", c.SendQueue)
	}
	return nil
}

// Load reads the configured level and checks it leaves room for every
// penguin and fish.
func (c Config) Load() (string, error) {
	levels := c.Levels
	if levels == nil {
		levels = data.Levels()
	}
	layout, err := model.LoadLevel(levels, c.LevelName)
	if err != nil {
		return "", err
	}
	board, err := model.NewBoard(layout)
	if err != nil {
		return "", err
	}
	free := 0
	for y := 0; y < model.Rows; y++ {
		for x := 0; x < model.Cols; x++ {
			if board.IsUnoccupiedTile(x, y) {
				free++
			}
		}
	}
	if need := c.Players + c.Fishes; need > free {
		return "", fmt.Errorf("level %q: %w: need %d, have %d", c.LevelName, model.ErrNoFreeTile, need, free)
	}
	return layout, nil
}
