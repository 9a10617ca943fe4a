package kuba

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CapturesToWin is the number of red marbles a player has to push off to win.
const CapturesToWin = 7

var (
	ErrInvalidColor  = errors.New("player color must be white or black")
	ErrSameColor     = errors.New("players must have different colors")
	ErrInvalidName   = errors.New("player name must not be empty")
	ErrDuplicateName = errors.New("players must have different names")
	ErrUnknownPlayer = errors.New("unknown player")
	ErrNotYourTurn   = errors.New("it's not your turn")
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

type Player struct {
	Name  string `json:"name"`
	Color Cell   `json:"color"`
}

// history keeps the boards that preceded the current one.
type history struct {
	oneMoveAgo  *Board
	twoMovesAgo *Board
}

func (that *history) push(board Board) {
	that.twoMovesAgo = that.oneMoveAgo
	that.oneMoveAgo = &board
}

// Game is a single Kuba match between two players.
// It is not safe for concurrent use.
type Game struct {
	players  [2]Player
	board    Board
	history  history
	captured [2]int
	turn     string
	winner   string
}

func NewGame(first, second Player) (*Game, error) {
	for _, player := range []Player{first, second} {
		if player.Name == "" {
			return nil, ErrInvalidName
		}

		if !player.Color.IsPlayerColor() {
			return nil, fmt.Errorf("%w: %s has %s", ErrInvalidColor, player.Name, player.Color)
		}
	}

	if first.Color == second.Color {
		return nil, ErrSameColor
	}

	if first.Name == second.Name {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, first.Name)
	}

	return &Game{
		players: [2]Player{first, second},
		board:   NewBoard(),
	}, nil
}

// MakeMove validates and applies a move for the named player. A rejected move leaves the game
// untouched and returns the reason.
func (that *Game) MakeMove(name string, pos Position, dir Direction) error {
	mover, ok := that.playerIndex(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
	}

	color := that.players[mover].Color

	if err := ValidateMove(&that.board, color, pos, dir, that.winner != ""); err != nil {
		return err
	}

	// the first move of the game claims the turn for its mover
	if that.turn != "" && that.turn != name {
		return ErrNotYourTurn
	}

	if err := checkNoUndo(&that.board, pos, dir, that.history.oneMoveAgo); err != nil {
		return err
	}

	before := that.board
	redBefore := before.Count(Red)

	that.board, _ = ApplyMove(before, pos, dir)
	that.history.push(before)

	if captured := redBefore - that.board.Count(Red); captured > 0 {
		that.captured[mover] += captured
	}

	opponent := 1 - mover
	if that.hasWon(mover, opponent) {
		that.winner = name
	}

	that.turn = that.players[opponent].Name

	return nil
}

// SubmitMove reports whether the move was accepted.
func (that *Game) SubmitMove(name string, pos Position, dir Direction) bool {
	return that.MakeMove(name, pos, dir) == nil
}

func (that *Game) hasWon(mover, opponent int) bool {
	if that.captured[mover] >= CapturesToWin {
		return true
	}

	opponentColor := that.players[opponent].Color
	if that.board.Count(opponentColor) == 0 {
		return true
	}

	// the opponent may not recreate the board that stood before this move
	return !hasLegalMove(&that.board, opponentColor, that.history.oneMoveAgo)
}

// LegalMoves lists every move the named player could submit right now.
func (that *Game) LegalMoves(name string) []Move {
	index, ok := that.playerIndex(name)
	if !ok || that.winner != "" {
		return nil
	}

	if that.turn != "" && that.turn != name {
		return nil
	}

	return legalMoves(&that.board, that.players[index].Color, that.history.oneMoveAgo)
}

func (that *Game) HasLegalMove(name string) bool {
	return len(that.LegalMoves(name)) > 0
}

func (that *Game) playerIndex(name string) (int, bool) {
	for i, player := range that.players {
		if player.Name == name {
			return i, true
		}
	}

	return 0, false
}

// Board returns a copy of the current board.
func (that *Game) Board() Board {
	return that.board
}

func (that *Game) Players() [2]Player {
	return that.players
}

// PlayerColor returns Empty for unknown names.
func (that *Game) PlayerColor(name string) Cell {
	index, ok := that.playerIndex(name)
	if !ok {
		return Empty
	}

	return that.players[index].Color
}

// Captured returns the number of red marbles pushed off by the named player.
func (that *Game) Captured(name string) int {
	index, ok := that.playerIndex(name)
	if !ok {
		return 0
	}

	return that.captured[index]
}

// MarbleCounts returns the number of white, black and red marbles on the board.
func (that *Game) MarbleCounts() (int, int, int) {
	return that.board.MarbleCounts()
}

// Winner returns the winner's name, or "" while the game is running.
func (that *Game) Winner() string {
	return that.winner
}

// CurrentTurn returns the name of the player to move, or "" before the first move.
func (that *Game) CurrentTurn() string {
	return that.turn
}

func (that *Game) Status() Status {
	switch {
	case that.winner != "":
		return StatusFinished
	case that.turn == "":
		return StatusNotStarted
	default:
		return StatusInProgress
	}
}

type gameState struct {
	Players     [2]Player `json:"players"`
	Board       Board     `json:"board"`
	OneMoveAgo  *Board    `json:"one_move_ago,omitempty"`
	TwoMovesAgo *Board    `json:"two_moves_ago,omitempty"`
	Captured    [2]int    `json:"captured"`
	Turn        string    `json:"turn"`
	Winner      string    `json:"winner"`
}

func (that *Game) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(gameState{
		Players:     that.players,
		Board:       that.board,
		OneMoveAgo:  that.history.oneMoveAgo,
		TwoMovesAgo: that.history.twoMovesAgo,
		Captured:    that.captured,
		Turn:        that.turn,
		Winner:      that.winner,
	})
	if err != nil {
		return nil, fmt.Errorf("could not marshal game: %w", err)
	}

	return data, nil
}

func (that *Game) UnmarshalJSON(data []byte) error {
	var state gameState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("could not unmarshal game: %w", err)
	}

	restored, err := NewGame(state.Players[0], state.Players[1])
	if err != nil {
		return fmt.Errorf("invalid stored players: %w", err)
	}

	restored.board = state.Board
	restored.history = history{oneMoveAgo: state.OneMoveAgo, twoMovesAgo: state.TwoMovesAgo}
	restored.captured = state.Captured
	restored.turn = state.Turn
	restored.winner = state.Winner

	*that = *restored

	return nil
}
