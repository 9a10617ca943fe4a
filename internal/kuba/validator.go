package kuba

import "errors"

var (
	ErrOutOfBounds        = errors.New("position is outside the board")
	ErrNotOwnMarble       = errors.New("no marble of the player's color at position")
	ErrBlockedBehind      = errors.New("square behind the marble is occupied")
	ErrOwnMarblePushedOff = errors.New("move would push off the player's own marble")
	ErrGameFinished       = errors.New("game is already finished")
	ErrUndoesLastMove     = errors.New("move would undo the opponent's last move")
)

// Move is a single push: the marble at Position goes one square in Direction.
type Move struct {
	Position  Position  `json:"position"`
	Direction Direction `json:"direction"`
}

// ValidateMove runs every geometric rule check and returns the first one that fails.
// The repetition rule is checked separately by checkNoUndo.
func ValidateMove(board *Board, color Cell, pos Position, dir Direction, finished bool) error {
	if err := checkCoordinatesAndColor(board, color, pos); err != nil {
		return err
	}

	if !dir.Valid() {
		return ErrInvalidDirection
	}

	if err := checkOpenBack(board, pos, dir); err != nil {
		return err
	}

	if err := checkPushOffColor(board, color, pos, dir); err != nil {
		return err
	}

	if finished {
		return ErrGameFinished
	}

	return nil
}

// IsLegalMove - boolean form of ValidateMove.
func IsLegalMove(board *Board, color Cell, pos Position, dir Direction, finished bool) bool {
	return ValidateMove(board, color, pos, dir, finished) == nil
}

func checkCoordinatesAndColor(board *Board, color Cell, pos Position) error {
	if !pos.InBounds() {
		return ErrOutOfBounds
	}

	if !color.IsPlayerColor() || board.At(pos) != color {
		return ErrNotOwnMarble
	}

	return nil
}

// checkOpenBack - a marble can only be pushed from an empty square or from off the board.
func checkOpenBack(board *Board, pos Position, dir Direction) error {
	behind := pos.stepBack(dir)
	if behind.InBounds() && board.At(behind) != Empty {
		return ErrBlockedBehind
	}

	return nil
}

func checkPushOffColor(board *Board, color Cell, pos Position, dir Direction) error {
	end, open := pushEnd(board, pos, dir)
	if !open && board.At(end) == color {
		return ErrOwnMarblePushedOff
	}

	return nil
}

// checkNoUndo rejects a move whose result equals forbidden. A nil forbidden board means the
// opponent has not moved yet.
func checkNoUndo(board *Board, pos Position, dir Direction, forbidden *Board) error {
	if forbidden == nil {
		return nil
	}

	if next, _ := ApplyMove(*board, pos, dir); next == *forbidden {
		return ErrUndoesLastMove
	}

	return nil
}

// legalMoves lists every move the given color can make, including the repetition rule.
func legalMoves(board *Board, color Cell, forbidden *Board) []Move {
	var moves []Move
	for row := range BoardSize {
		for column := range BoardSize {
			pos := Position{Row: row, Column: column}
			if board.At(pos) != color {
				continue
			}

			for _, dir := range Directions {
				if ValidateMove(board, color, pos, dir, false) != nil {
					continue
				}

				if checkNoUndo(board, pos, dir, forbidden) != nil {
					continue
				}

				moves = append(moves, Move{Position: pos, Direction: dir})
			}
		}
	}

	return moves
}

func hasLegalMove(board *Board, color Cell, forbidden *Board) bool {
	return len(legalMoves(board, color, forbidden)) > 0
}
