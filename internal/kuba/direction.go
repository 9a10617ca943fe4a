package kuba

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidDirection = errors.New("invalid direction")

// Direction is the way a marble is pushed. The zero value is not a valid direction.
type Direction uint8

const (
	DirNone Direction = iota
	Forward
	Backward
	Left
	Right
)

// Directions lists every legal direction.
var Directions = [...]Direction{Forward, Backward, Left, Right}

func (that Direction) Valid() bool {
	return that >= Forward && that <= Right
}

// delta - row/column offset of a single step. Forward goes towards row 0.
func (that Direction) delta() (int, int) {
	switch that {
	case Forward:
		return -1, 0
	case Backward:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	default:
		return 0, 0
	}
}

func (that Direction) String() string {
	switch that {
	case Forward:
		return "F"
	case Backward:
		return "B"
	case Left:
		return "L"
	case Right:
		return "R"
	default:
		return "-"
	}
}

// ParseDirection accepts the short form (F, B, L, R) or the full name, case-insensitive.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "F", "FORWARD":
		return Forward, nil
	case "B", "BACKWARD":
		return Backward, nil
	case "L", "LEFT":
		return Left, nil
	case "R", "RIGHT":
		return Right, nil
	default:
		return DirNone, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

func (that Direction) MarshalText() ([]byte, error) {
	if !that.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, that)
	}

	return []byte(that.String()), nil
}

func (that *Direction) UnmarshalText(text []byte) error {
	dir, err := ParseDirection(string(text))
	if err != nil {
		return err
	}

	*that = dir

	return nil
}
