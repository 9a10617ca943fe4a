package stream

import (
	"context"
	"encoding/json"
	"fmt"
)

func (that *Server) handleNewGame(ctx context.Context, raw json.RawMessage) (ResponsePayload, error) {
	var payload NewGamePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to unmarshal players: %w", err)
	}

	game, err := that.game.CreateGame(ctx, payload.Players[0], payload.Players[1])
	if err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to create game: %w", err)
	}

	return ResponsePayload{Game: game}, nil
}

// handleMove - a rejected move still answers with the current game next to the error.
func (that *Server) handleMove(ctx context.Context, raw json.RawMessage) (ResponsePayload, error) {
	var payload MovePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to unmarshal move: %w", err)
	}

	game, err := that.game.MakeMove(ctx, payload.Player, payload.Move)
	if err != nil {
		return ResponsePayload{Game: game}, fmt.Errorf("failed to make move: %w", err)
	}

	return ResponsePayload{Game: game}, nil
}

func (that *Server) handleGetGame(ctx context.Context, raw json.RawMessage) (ResponsePayload, error) {
	var payload GamePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to unmarshal game id: %w", err)
	}

	game, err := that.game.GetGame(ctx, payload.GameID)
	if err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to get game: %w", err)
	}

	return ResponsePayload{Game: game}, nil
}

func (that *Server) handleLegalMoves(ctx context.Context, raw json.RawMessage) (ResponsePayload, error) {
	var payload GamePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	moves, err := that.game.LegalMoves(ctx, payload.Player)
	if err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to list moves: %w", err)
	}

	return ResponsePayload{Moves: moves}, nil
}

func (that *Server) handleDeleteGame(ctx context.Context, raw json.RawMessage) (ResponsePayload, error) {
	var payload GamePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to unmarshal game id: %w", err)
	}

	if err := that.game.DeleteGame(ctx, payload.GameID); err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to delete game: %w", err)
	}

	return ResponsePayload{}, nil
}
