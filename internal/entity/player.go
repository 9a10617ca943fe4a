package entity

import "github.com/rocketscienceinc/kuba-backend/internal/kuba"

// Player - a named participant. The ID doubles as the player's name inside the engine.
type Player struct {
	ID     string    `json:"id"`
	Color  kuba.Cell `json:"color,omitempty"`
	GameID string    `json:"game_id,omitempty"`
}

func (that *Player) InGame() bool {
	return that.GameID != ""
}
