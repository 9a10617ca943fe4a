package kuba

import (
	"errors"
	"fmt"
	"strings"
)

const BoardSize = 7

var ErrUnknownCell = errors.New("unknown cell value")

// Cell is the content of a single board square.
type Cell uint8

const (
	Empty Cell = iota
	White
	Black
	Red
)

func (that Cell) String() string {
	switch that {
	case Empty:
		return "X"
	case White:
		return "W"
	case Black:
		return "B"
	case Red:
		return "R"
	default:
		return "?"
	}
}

// IsPlayerColor reports whether the cell is a color a player can own.
func (that Cell) IsPlayerColor() bool {
	return that == White || that == Black
}

func ParseCell(s string) (Cell, error) {
	switch s {
	case "X", "":
		return Empty, nil
	case "W":
		return White, nil
	case "B":
		return Black, nil
	case "R":
		return Red, nil
	default:
		return Empty, fmt.Errorf("%w: %q", ErrUnknownCell, s)
	}
}

func (that Cell) MarshalText() ([]byte, error) {
	if that > Red {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCell, that)
	}

	return []byte(that.String()), nil
}

func (that *Cell) UnmarshalText(text []byte) error {
	cell, err := ParseCell(string(text))
	if err != nil {
		return err
	}

	*that = cell

	return nil
}

// Position addresses a square by row and column, both in [0, BoardSize).
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

func (that Position) InBounds() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Column >= 0 && that.Column < BoardSize
}

func (that Position) step(dir Direction) Position {
	dr, dc := dir.delta()
	return Position{Row: that.Row + dr, Column: that.Column + dc}
}

func (that Position) stepBack(dir Direction) Position {
	dr, dc := dir.delta()
	return Position{Row: that.Row - dr, Column: that.Column - dc}
}

// Board is a value type: assigning it copies the whole grid.
type Board [BoardSize][BoardSize]Cell

// NewBoard returns the standard starting layout.
func NewBoard() Board {
	const (
		w = White
		b = Black
		r = Red
		x = Empty
	)

	return Board{
		{w, w, x, x, x, b, b},
		{w, w, x, r, x, b, b},
		{x, x, r, r, r, x, x},
		{x, r, r, r, r, r, x},
		{x, x, r, r, r, x, x},
		{b, b, x, r, x, w, w},
		{b, b, x, x, x, w, w},
	}
}

// At returns Empty for positions outside the board.
func (that *Board) At(pos Position) Cell {
	if !pos.InBounds() {
		return Empty
	}

	return that[pos.Row][pos.Column]
}

func (that *Board) set(pos Position, cell Cell) {
	that[pos.Row][pos.Column] = cell
}

func (that *Board) Count(cell Cell) int {
	count := 0
	for _, row := range that {
		for _, c := range row {
			if c == cell {
				count++
			}
		}
	}

	return count
}

// MarbleCounts returns the number of white, black and red marbles on the board.
func (that *Board) MarbleCounts() (int, int, int) {
	return that.Count(White), that.Count(Black), that.Count(Red)
}

// String renders the board as tab-separated rows, one line per row.
func (that Board) String() string {
	rows := make([]string, 0, BoardSize)
	for _, row := range that {
		cells := make([]string, 0, BoardSize)
		for _, c := range row {
			cells = append(cells, c.String())
		}
		rows = append(rows, strings.Join(cells, "\t"))
	}

	return strings.Join(rows, "\n")
}
