package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/kuba-backend/internal/apperror"
	"github.com/rocketscienceinc/kuba-backend/internal/kuba"
)

const (
	StatusWaiting  = "waiting"
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"
)

var (
	ErrUnknownGameStatus = errors.New("unknown game status")
	ErrNoEngine          = errors.New("game has no engine state")
)

type Game struct {
	ID      string     `json:"id"`
	Status  string     `json:"status"`
	Winner  string     `json:"winner,omitempty"`
	Players []*Player  `json:"players,omitempty"`
	Engine  *kuba.Game `json:"engine"`
}

func NewGame(id string, engine *kuba.Game) *Game {
	game := &Game{
		ID:     id,
		Engine: engine,
	}

	for _, player := range engine.Players() {
		game.Players = append(game.Players, &Player{
			ID:     player.Name,
			Color:  player.Color,
			GameID: id,
		})
	}

	game.UpdateGameState()

	return game
}

// UpdateGameState - copies status and winner from the engine.
func (that *Game) UpdateGameState() {
	if that.Engine == nil {
		return
	}

	switch that.Engine.Status() {
	case kuba.StatusNotStarted:
		that.Status = StatusWaiting
	case kuba.StatusInProgress:
		that.Status = StatusOngoing
	case kuba.StatusFinished:
		that.Status = StatusFinished
	}

	that.Winner = that.Engine.Winner()
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

// ConfirmPlayable - a game accepts moves until it is finished; the first move starts it.
func (that *Game) ConfirmPlayable() error {
	if that.Engine == nil {
		return ErrNoEngine
	}

	switch {
	case that.IsWaiting(), that.IsOngoing():
		return nil
	case that.IsFinished():
		return apperror.ErrGameFinished
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) Player(id string) (*Player, bool) {
	for _, player := range that.Players {
		if player.ID == id {
			return player, true
		}
	}

	return nil, false
}
