package engine

import "github.com/chesscore/moveorder/internal/board"

// Evaluate returns a material-only score from the side-to-move's
// perspective. It exists only so the search driver has a leaf value to
// stand-pat on in quiescence; it carries no positional knowledge.
func Evaluate(pos *board.Position) int {
	score := pos.Material()
	if pos.SideToMove == board.Black {
		score = -score
	}
	return score
}
