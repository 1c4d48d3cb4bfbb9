package server

import (
	"errors"
	"fmt"
	"time"
)

var ErrServerFull = errors.New("server full")

func (gss SessionState) Name() string {
	switch gss {
	case GS_WAIT:
		return "GS_WAIT"
	case GS_PLAY:
		return "GS_PLAY"
	case GS_EXTRA:
		return "GS_EXTRA"
	case GS_OVER:
		return "GS_OVER"
	default:
		return fmt.Sprintf("n/a:%d", gss)
	}
}

func (gss SessionState) InProgress() bool {
	return gss == GS_PLAY || gss == GS_EXTRA
}

type PlayerStatus struct {
	Id          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Addr        string    `json:"addr"`
	X           int       `json:"x"`
	Y           int       `json:"y"`
	FishCount   int       `json:"fish_count"`
	InMessages  int       `json:"in_messages"`
	OutMessages int       `json:"out_messages"`
	LastMessage time.Time `json:"last_message,omitempty"`
	Connected   time.Time `json:"connected"`
}

type Status struct {
	State     string         `json:"state"`
	Level     string         `json:"level"`
	Players   []PlayerStatus `json:"players"`
	Wanted    int            `json:"wanted_players"`
	Fishes    int            `json:"fishes"`
	Remaining time.Duration  `json:"remaining_ns"`
}
