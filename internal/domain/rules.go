package domain

// CheckWin reports whether the given seat owns any of the 8 winning
// lines: 3 rows, 3 columns and the 2 diagonals.
func CheckWin(board Board, seat Seat) bool {
	for i := 0; i < BoardSize; i++ {
		if board[i][0] == seat && board[i][1] == seat && board[i][2] == seat {
			return true
		}
		if board[0][i] == seat && board[1][i] == seat && board[2][i] == seat {
			return true
		}
	}

	if board[0][0] == seat && board[1][1] == seat && board[2][2] == seat {
		return true
	}
	if board[0][2] == seat && board[1][1] == seat && board[2][0] == seat {
		return true
	}

	return false
}

func IsBoardFull(board Board) bool {
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if board[y][x] == Empty {
				return false
			}
		}
	}
	return true
}
