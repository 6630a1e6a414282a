// Package exchange implements static exchange evaluation: given a move and
// a threshold, it answers whether the sequence of captures that follows on
// the move's destination square nets at least that much material for the
// side to move, without playing out a search.
package exchange

import "github.com/chesscore/moveorder/internal/board"

// See reports whether playing mv and continuing the capture sequence on its
// destination square, both sides capturing with their least valuable
// attacker first, nets at least threshold centipawns for the side to move.
// Castling always passes.
func See(pos *board.Position, mv board.Move, threshold int) bool {
	if mv.IsCastling() {
		return true
	}

	// In the best case, we win a piece, but still end up with a negative balance.
	balance := moveValue(pos, mv) - threshold
	if balance < 0 {
		return false
	}

	// In the worst case, we lose the moving piece, but still end up with a
	// non-negative balance.
	if mv.IsPromotion() {
		balance -= board.PieceValue[mv.Promotion()]
	} else {
		balance -= pos.PieceAt(mv.From()).Value()
	}
	if balance >= 0 {
		return true
	}

	occupancies := pos.AllOccupied
	occupancies = occupancies.Clear(mv.From())
	occupancies = occupancies.Set(mv.To())

	if mv.IsEnPassant() {
		occupancies = occupancies.Clear(board.Square(uint8(mv.To()) ^ 8))
	}

	attackers := pos.AttackersTo(mv.To(), occupancies) & occupancies
	stm := pos.SideToMove.Other()

	diagonal := byType(pos, board.Bishop) | byType(pos, board.Queen)
	orthogonal := byType(pos, board.Rook) | byType(pos, board.Queen)

	whiteKing := pos.KingSquare[board.White]
	blackKing := pos.KingSquare[board.Black]

	whitePins := pos.Pinned(board.White) &^ board.Between(whiteKing, mv.To())
	blackPins := pos.Pinned(board.Black) &^ board.Between(blackKing, mv.To())

	whitePinner := pos.Pinner(board.White) &^ board.RayPass(blackKing, mv.To())
	blackPinner := pos.Pinner(board.Black) &^ board.RayPass(whiteKing, mv.To())

	allowed := ^(whitePins | blackPins)
	unalignedPinners := whitePinner | blackPinner

	for {
		// Allow only pieces on this side to move that aren't disallowed by a pin.
		ourAttackers := attackers & allowed & pos.Occupied[stm]
		if ourAttackers == board.Empty {
			break
		}

		attacker := leastValuableAttacker(pos, stm, ourAttackers)

		// The king cannot capture a protected piece; the side to move loses
		// the exchange.
		if attacker == board.King && attackers&pos.Occupied[stm.Other()] != 0 {
			break
		}

		theAttacker := (pos.Pieces[stm][attacker] & ourAttackers).LSB()

		if board.SquareBB(theAttacker)&unalignedPinners != 0 {
			allowed |= board.Between(pos.KingSquare[stm.Other()], theAttacker)
		}

		occupancies = occupancies.Clear(theAttacker)
		stm = stm.Other()

		// Assume our piece is going to be captured back.
		balance = -balance - 1 - board.PieceValue[attacker]
		if balance >= 0 {
			break
		}

		// Capturing a piece may reveal a new sliding attacker.
		if attacker == board.Pawn || attacker == board.Bishop || attacker == board.Queen {
			attackers |= board.BishopAttacks(mv.To(), occupancies) & diagonal
		}
		if attacker == board.Rook || attacker == board.Queen {
			attackers |= board.RookAttacks(mv.To(), occupancies) & orthogonal
		}
		attackers &= occupancies
	}

	// The last side to move has failed to capture back, since it has no
	// more attackers, and is therefore losing.
	return stm != pos.SideToMove
}

func byType(pos *board.Position, pt board.PieceType) board.Bitboard {
	return pos.Pieces[board.White][pt] | pos.Pieces[board.Black][pt]
}

func moveValue(pos *board.Position, mv board.Move) int {
	if mv.IsEnPassant() {
		return board.PieceValue[board.Pawn]
	}

	capturedType := pos.PieceAt(mv.To()).Type()

	if mv.IsPromotion() {
		return board.PieceValue[capturedType] + board.PieceValue[mv.Promotion()] - board.PieceValue[board.Pawn]
	}
	return board.PieceValue[capturedType]
}

func leastValuableAttacker(pos *board.Position, stm board.Color, attackers board.Bitboard) board.PieceType {
	for pt := board.Pawn; pt <= board.King; pt++ {
		if pos.Pieces[stm][pt]&attackers != 0 {
			return pt
		}
	}
	panic("exchange: no attacker in non-empty bitboard")
}
