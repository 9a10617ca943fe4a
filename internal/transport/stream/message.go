package stream

import (
	"encoding/json"

	"github.com/rocketscienceinc/kuba-backend/internal/entity"
	"github.com/rocketscienceinc/kuba-backend/internal/kuba"
)

const (
	actionNewGame    = "game:new"
	actionMove       = "game:move"
	actionGetGame    = "game:get"
	actionLegalMoves = "game:moves"
	actionDeleteGame = "game:delete"
)

// Message is a single line of the stream: an action and its payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type NewGamePayload struct {
	Players [2]kuba.Player `json:"players"`
}

type MovePayload struct {
	Player string    `json:"player"`
	Move   kuba.Move `json:"move"`
}

type GamePayload struct {
	GameID string `json:"game_id,omitempty"`
	Player string `json:"player,omitempty"`
}

type ResponsePayload struct {
	Game  *entity.Game `json:"game,omitempty"`
	Moves []kuba.Move  `json:"moves,omitempty"`
	Error string       `json:"error,omitempty"`
}
