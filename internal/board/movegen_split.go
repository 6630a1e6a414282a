package board

// GenerateNoisyMoves generates every legal capture, en passant, and
// promotion (capturing or not) — the "noisy" half of the move list the
// move picker scores and searches first. GenerateCaptures already covers
// exactly this set, despite its name: it includes non-capturing promotions
// because those carry the same kind of material swing a capture does.
func (p *Position) GenerateNoisyMoves() *MoveList {
	return p.GenerateCaptures()
}

// GenerateQuietMoves generates every legal move that GenerateNoisyMoves
// does not: non-capturing, non-promoting pawn pushes, non-capturing piece
// moves, and castling.
func (p *Position) GenerateQuietMoves() *MoveList {
	ml := NewMoveList()
	p.generateQuietMoves(ml)
	return p.filterLegalMoves(ml)
}

func (p *Position) generateQuietMoves(ml *MoveList) {
	us := p.SideToMove
	occupied := p.AllOccupied
	empty := ^occupied

	p.generateQuietPawnMoves(ml, us, empty)

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		attacks := KnightAttacks(from) & empty
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		attacks := BishopAttacks(from, occupied) & empty
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		attacks := RookAttacks(from, occupied) & empty
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		attacks := QueenAttacks(from, occupied) & empty
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	from := p.KingSquare[us]
	attacks := KingAttacks(from) & empty
	for attacks != 0 {
		to := attacks.PopLSB()
		ml.Add(NewMove(from, to))
	}

	p.generateCastlingMoves(ml, us)
}

// generateQuietPawnMoves adds non-capturing, non-promoting pushes: the
// complement of the push half of generatePawnMoves/generateCaptures.
func (p *Position) generateQuietPawnMoves(ml *MoveList, us Color, empty Bitboard) {
	pawns := p.Pieces[us][Pawn]

	var push1, push2 Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		promotionRank = Rank1
		pushDir = -8
	}

	nonPromo := push1 & ^promotionRank
	for nonPromo != 0 {
		to := nonPromo.PopLSB()
		from := Square(int(to) - pushDir)
		ml.Add(NewMove(from, to))
	}

	for push2 != 0 {
		to := push2.PopLSB()
		from := Square(int(to) - 2*pushDir)
		ml.Add(NewMove(from, to))
	}
}
