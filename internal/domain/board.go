package domain

func NewBoard() Board {
	return Board{}
}

func InBounds(c Coordinate) bool {
	return c.X >= 0 && c.X < BoardSize && c.Y >= 0 && c.Y < BoardSize
}

// At returns the seat occupying the cell. Callers must bounds-check first.
func (b *Board) At(c Coordinate) Seat {
	return b[c.Y][c.X]
}

func (b *Board) Mark(c Coordinate, seat Seat) {
	b[c.Y][c.X] = seat
}

// MarkCount counts non-empty cells. On a well-formed session it always
// equals MovesMade.
func (b *Board) MarkCount() int {
	count := 0
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if b[y][x] != Empty {
				count++
			}
		}
	}
	return count
}
