package protocol

import "github.com/zucenko/pingwin/model"

type MoveMeTo struct {
	Direction model.Direction `json:"direction"`
}

type TurnMeTo struct {
	Direction model.Direction `json:"direction"`
}

func (*MoveMeTo) Kind() Kind { return KindMoveMeTo }
func (*TurnMeTo) Kind() Kind { return KindTurnMeTo }

func (*MoveMeTo) message() {}
func (*TurnMeTo) message() {}
