// Package threat computes incremental attacker/victim relation changes on
// the board: given a piece added, removed, moved, or mutated in place, it
// reports which (attacker, victim) threat relations came into existence or
// went away, including slider x-ray reveals. The deltas are intended to
// feed an NNUE-style incremental feature accumulator; this package only
// generates them, it does not store or consume an accumulator itself.
package threat

import "github.com/chesscore/moveorder/internal/board"

// Delta records one attacker/victim relation that either appeared or
// disappeared. IsAddition is true for an addition, false for a removal.
type Delta struct {
	Attacker     board.Piece
	AttackerSq   board.Square
	Victim       board.Piece
	VictimSq     board.Square
	IsAddition   bool
}

// Accumulator collects the deltas produced by a sequence of board edits.
// Callers drain Deltas after each edit and feed them to their own feature
// accumulator; Accumulator itself holds no NNUE state.
type Accumulator struct {
	Deltas []Delta
}

// Reset empties the accumulator for reuse.
func (a *Accumulator) Reset() {
	a.Deltas = a.Deltas[:0]
}

func (a *Accumulator) push(attacker board.Piece, attackerSq board.Square, victim board.Piece, victimSq board.Square, add bool) {
	a.Deltas = append(a.Deltas, Delta{
		Attacker:   attacker,
		AttackerSq: attackerSq,
		Victim:     victim,
		VictimSq:   victimSq,
		IsAddition: add,
	})
}

// OnChange generates the threat deltas caused by placing (add=true) or
// removing (add=false) piece at square on pos. pos must already reflect the
// post-edit occupancy; square still holds piece for the purposes of attack
// generation from that square.
func OnChange(accum *Accumulator, pos *board.Position, piece board.Piece, square board.Square, add bool) {
	pushThreatsSingle(accum, pos, pos.AllOccupied, piece, square, add)
}

// OnMove generates the threat deltas caused by sliding piece from from to
// to, treating it as a removal at from followed by an addition at to. Both
// passes use pos's occupancy with to's bit toggled: on a board that still
// shows the pre-move position, to counts as occupied and from stays occupied.
func OnMove(accum *Accumulator, pos *board.Position, piece board.Piece, from, to board.Square) {
	occupied := pos.AllOccupied ^ board.SquareBB(to)
	pushThreatsSingle(accum, pos, occupied, piece, from, false)
	pushThreatsSingle(accum, pos, occupied, piece, to, true)
}

// OnMutate generates the threat deltas caused by piece on square changing
// identity in place (promotion, or any edit that changes piece type/color
// without changing occupancy) from oldPiece to newPiece.
func OnMutate(accum *Accumulator, pos *board.Position, oldPiece, newPiece board.Piece, square board.Square) {
	occupied := pos.AllOccupied

	pushAttacked(accum, pos, occupied, oldPiece, square, false)
	pushAttacked(accum, pos, occupied, newPiece, square, true)

	rookAttacks := board.RookAttacks(square, occupied)
	bishopAttacks := board.BishopAttacks(square, occupied)

	diagonal := (pos.Pieces[board.White][board.Bishop] | pos.Pieces[board.Black][board.Bishop] |
		pos.Pieces[board.White][board.Queen] | pos.Pieces[board.Black][board.Queen]) & bishopAttacks
	orthogonal := (pos.Pieces[board.White][board.Rook] | pos.Pieces[board.Black][board.Rook] |
		pos.Pieces[board.White][board.Queen] | pos.Pieces[board.Black][board.Queen]) & rookAttacks

	knights := (pos.Pieces[board.White][board.Knight] | pos.Pieces[board.Black][board.Knight]) & board.KnightAttacks(square)
	kings := (pos.Pieces[board.White][board.King] | pos.Pieces[board.Black][board.King]) & board.KingAttacks(square)
	blackPawns := pos.Pieces[board.Black][board.Pawn] & board.PawnAttacks(square, board.White)
	whitePawns := pos.Pieces[board.White][board.Pawn] & board.PawnAttacks(square, board.Black)

	attackers := (blackPawns | whitePawns | knights | kings | diagonal | orthogonal)
	attackers.ForEach(func(from board.Square) {
		attacker := pos.PieceAt(from)
		accum.push(attacker, from, oldPiece, square, false)
		accum.push(attacker, from, newPiece, square, true)
	})
}

func pushThreatsSingle(accum *Accumulator, pos *board.Position, occupied board.Bitboard, piece board.Piece, square board.Square, add bool) {
	pushAttacked(accum, pos, occupied, piece, square, add)

	rookAttacks := board.RookAttacks(square, occupied)
	bishopAttacks := board.BishopAttacks(square, occupied)
	queenAttacks := rookAttacks | bishopAttacks

	diagonal := (pos.Pieces[board.White][board.Bishop] | pos.Pieces[board.Black][board.Bishop] |
		pos.Pieces[board.White][board.Queen] | pos.Pieces[board.Black][board.Queen]) & bishopAttacks
	orthogonal := (pos.Pieces[board.White][board.Rook] | pos.Pieces[board.Black][board.Rook] |
		pos.Pieces[board.White][board.Queen] | pos.Pieces[board.Black][board.Queen]) & rookAttacks

	(diagonal | orthogonal).ForEach(func(from board.Square) {
		slidingPiece := pos.PieceAt(from)
		threatened := board.RayPass(from, square) & occupied & queenAttacks &^ board.SquareBB(from)

		if threatened != board.Empty {
			to := threatened.LSB()
			accum.push(slidingPiece, from, pos.PieceAt(to), to, !add)
		}

		accum.push(slidingPiece, from, piece, square, add)
	})

	blackPawns := pos.Pieces[board.Black][board.Pawn] & board.PawnAttacks(square, board.White)
	whitePawns := pos.Pieces[board.White][board.Pawn] & board.PawnAttacks(square, board.Black)
	knights := (pos.Pieces[board.White][board.Knight] | pos.Pieces[board.Black][board.Knight]) & board.KnightAttacks(square)
	kings := (pos.Pieces[board.White][board.King] | pos.Pieces[board.Black][board.King]) & board.KingAttacks(square)

	(blackPawns | whitePawns | knights | kings).ForEach(func(from board.Square) {
		accum.push(pos.PieceAt(from), from, piece, square, add)
	})
}

// pushAttacked pushes one delta per square piece at square currently
// attacks, recording whether that relation is appearing or disappearing.
func pushAttacked(accum *Accumulator, pos *board.Position, occupied board.Bitboard, piece board.Piece, square board.Square, add bool) {
	attacked := board.Attacks(piece, square, occupied) & occupied
	attacked.ForEach(func(to board.Square) {
		accum.push(piece, square, pos.PieceAt(to), to, add)
	})
}
