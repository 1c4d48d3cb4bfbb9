package protocol

import "github.com/zucenko/pingwin/model"

type Welcome struct {
	PlayerId  string `json:"player_id"`
	LevelName string `json:"level_name"`
}

type StartGame struct {
	Penguins     []model.Penguin `json:"penguins"`
	Fishes       []model.Fish    `json:"fishes"`
	GameDuration int             `json:"game_duration"`
}

type MoveOtherTo struct {
	PenguinId string          `json:"penguin_id"`
	Direction model.Direction `json:"direction"`
}

type TurnOtherTo struct {
	PenguinId string          `json:"penguin_id"`
	Direction model.Direction `json:"direction"`
}

type ScoreUpdate struct {
	PenguinId string `json:"penguin_id"`
	FishCount int    `json:"fish_count"`
}

type NewFish struct {
	Fish model.Fish `json:"fish"`
}

type RiseGameDuration struct {
	Seconds int `json:"seconds"`
}

type EndGame struct{}

func (*Welcome) Kind() Kind          { return KindWelcome }
func (*StartGame) Kind() Kind        { return KindStartGame }
func (*MoveOtherTo) Kind() Kind      { return KindMoveOtherTo }
func (*TurnOtherTo) Kind() Kind      { return KindTurnOtherTo }
func (*ScoreUpdate) Kind() Kind      { return KindScoreUpdate }
func (*NewFish) Kind() Kind          { return KindNewFish }
func (*RiseGameDuration) Kind() Kind { return KindRiseGameDuration }
func (*EndGame) Kind() Kind          { return KindEndGame }

func (*Welcome) message()          {}
func (*StartGame) message()        {}
func (*MoveOtherTo) message()      {}
func (*TurnOtherTo) message()      {}
func (*ScoreUpdate) message()      {}
func (*NewFish) message()          {}
func (*RiseGameDuration) message() {}
func (*EndGame) message()          {}
