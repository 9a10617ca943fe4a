package kuba

// pushEnd walks from the square next to pos towards the edge. It returns the first empty
// square, or the last square before the edge and false when the line is full up to the edge.
// When pos itself sits on the edge the result is pos.
func pushEnd(board *Board, pos Position, dir Direction) (Position, bool) {
	end := pos
	for cur := pos.step(dir); cur.InBounds(); cur = cur.step(dir) {
		end = cur
		if board.At(cur) == Empty {
			return end, true
		}
	}

	return end, false
}

// ApplyMove pushes the marble at pos one square in dir and returns the resulting board together
// with the marble pushed off the edge (Empty if nothing fell off).
// The board argument is a copy, so the caller's board is never touched.
// ApplyMove does not check legality.
func ApplyMove(board Board, pos Position, dir Direction) (Board, Cell) {
	if !pos.InBounds() || !dir.Valid() {
		return board, Empty
	}

	end, open := pushEnd(&board, pos, dir)

	pushedOff := Empty
	if !open {
		pushedOff = board.At(end)
	}

	// every square from the end back to pos takes the value of its neighbour closer to pos
	for cur := end; cur != pos; cur = cur.stepBack(dir) {
		board.set(cur, board.At(cur.stepBack(dir)))
	}

	board.set(pos, Empty)

	return board, pushedOff
}
