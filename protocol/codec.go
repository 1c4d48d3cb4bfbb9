// Package protocol is the wire format shared by the pingwin server and its
// clients: a closed set of message kinds, each encoded as a versioned JSON
// record and terminated by a single 0 byte.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const Version = 1

type Kind string

const (
	KindWelcome          Kind = "welcome"
	KindStartGame        Kind = "start_game"
	KindMoveOtherTo      Kind = "move_other_to"
	KindTurnOtherTo      Kind = "turn_other_to"
	KindScoreUpdate      Kind = "score_update"
	KindNewFish          Kind = "new_fish"
	KindRiseGameDuration Kind = "rise_game_duration"
	KindEndGame          Kind = "end_game"
	KindMoveMeTo         Kind = "move_me_to"
	KindTurnMeTo         Kind = "turn_me_to"
)

var (
	ErrMalformed          = errors.New("malformed message")
	ErrUnknownKind        = errors.New("unknown message kind")
	ErrUnsupportedVersion = errors.New("unsupported protocol version")
)

// Message is implemented only by the message kinds of this package.
type Message interface {
	Kind() Kind
	message()
}

var kinds = map[Kind]func() Message{
	KindWelcome:          func() Message { return &Welcome{} },
	KindStartGame:        func() Message { return &StartGame{} },
	KindMoveOtherTo:      func() Message { return &MoveOtherTo{} },
	KindTurnOtherTo:      func() Message { return &TurnOtherTo{} },
	KindScoreUpdate:      func() Message { return &ScoreUpdate{} },
	KindNewFish:          func() Message { return &NewFish{} },
	KindRiseGameDuration: func() Message { return &RiseGameDuration{} },
	KindEndGame:          func() Message { return &EndGame{} },
	KindMoveMeTo:         func() Message { return &MoveMeTo{} },
	KindTurnMeTo:         func() Message { return &TurnMeTo{} },
}

type envelope struct {
	Version int             `json:"v"`
	Kind    Kind            `json:"kind"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func Encode(m Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil message", ErrMalformed)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Kind(), err)
	}
	return json.Marshal(envelope{Version: Version, Kind: m.Kind(), Data: data})
}

func Decode(record []byte) (Message, error) {
	if len(record) == 0 {
		return nil, fmt.Errorf("%w: empty record", ErrMalformed)
	}
	var env envelope
	if err := json.Unmarshal(record, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	newMessage, found := kinds[env.Kind]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
	}
	m := newMessage()
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, m); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, env.Kind, err)
		}
	}
	return m, nil
}
