// Package movepick implements a staged, lazily-sorted move picker: rather
// than generating and sorting every move up front, it hands out the hash
// move, then winning captures, then quiet moves, then losing captures, each
// stage generated and scored only once the previous stage runs dry.
package movepick

import (
	"math"

	"github.com/chesscore/moveorder/internal/board"
	"github.com/chesscore/moveorder/internal/exchange"
	"github.com/chesscore/moveorder/internal/history"
)

// Stage identifies which phase of move generation a picker is in.
type Stage int

const (
	HashMove Stage = iota
	GenerateNoisy
	GoodNoisy
	GenerateQuiet
	Quiet
	BadNoisy
	done
)

// entry pairs a move with the ordering score it was assigned in its stage.
type entry struct {
	mv    board.Move
	score int
}

// MovePicker hands out moves for one node of a search, one at a time, in
// best-first order within each stage.
type MovePicker struct {
	list         []entry
	ttMove       board.Move
	threshold    int
	hasThreshold bool
	stage        Stage
	badNoisy     []board.Move
	badNoisyIdx  int
}

// New returns a picker for a normal search node: it tries ttMove first (if
// it's not board.NoMove), then proceeds through the full staged order.
func New(ttMove board.Move) *MovePicker {
	stage := GenerateNoisy
	if ttMove != board.NoMove {
		stage = HashMove
	}
	return &MovePicker{ttMove: ttMove, stage: stage}
}

// NewProbCut returns a picker with no hash move whose good/bad noisy split
// uses the fixed SEE threshold instead of the score-derived one. Noisy moves
// that fail it are still handed out in the BadNoisy stage, and quiet moves
// are handed out unless the caller passes skipQuiets.
func NewProbCut(threshold int) *MovePicker {
	return &MovePicker{ttMove: board.NoMove, stage: GenerateNoisy, threshold: threshold, hasThreshold: true}
}

// NewQuiescence returns a picker for quiescence search: the same stages as
// New(board.NoMove), with no hash move. Quiet moves are left out only when
// the caller passes skipQuiets, as the quiescence search does.
func NewQuiescence() *MovePicker {
	return &MovePicker{ttMove: board.NoMove, stage: GenerateNoisy}
}

// CurrentStage reports which stage the picker is currently in or about to
// enter.
func (mp *MovePicker) CurrentStage() Stage {
	return mp.stage
}

// Next returns the next move to search, or (board.NoMove, false) once every
// stage is exhausted. skipQuiets skips straight from the noisy stages to bad
// captures, the way a search does once it has decided quiet moves at this
// node aren't worth generating. isRoot re-scores the remaining list after
// handing out a move, matching how a root search keeps reordering its
// remaining candidates as aspiration windows narrow.
func (mp *MovePicker) Next(pos *board.Position, tables *history.Tables, ply int, skipQuiets, isRoot bool) (board.Move, bool) {
	if mp.stage == HashMove {
		mp.stage = GenerateNoisy
		if pos.GeneratePseudoLegalMoves().Contains(mp.ttMove) && pos.IsLegal(mp.ttMove) {
			return mp.ttMove, true
		}
	}

	if mp.stage == GenerateNoisy {
		mp.stage = GoodNoisy
		mp.appendNoisy(pos)
		mp.scoreNoisy(pos, tables)
	}

	if mp.stage == GoodNoisy {
		for len(mp.list) > 0 {
			idx := mp.findBestScoreIndex()
			e := mp.list[idx]
			mp.list = append(mp.list[:idx], mp.list[idx+1:]...)

			if e.mv == mp.ttMove {
				continue
			}

			threshold := mp.threshold
			if !mp.hasThreshold {
				threshold = -e.score/46 + 109
			}
			if !exchange.See(pos, e.mv, threshold) {
				mp.badNoisy = append(mp.badNoisy, e.mv)
				continue
			}

			if isRoot {
				mp.scoreNoisy(pos, tables)
			}
			return e.mv, true
		}
		mp.stage = GenerateQuiet
	}

	if mp.stage == GenerateQuiet {
		if skipQuiets {
			mp.stage = BadNoisy
		} else {
			mp.stage = Quiet
			mp.appendQuiet(pos)
			mp.scoreQuiet(pos, tables, ply)
		}
	}

	if mp.stage == Quiet {
		if !skipQuiets {
			for len(mp.list) > 0 {
				idx := mp.findBestScoreIndex()
				e := mp.list[idx]
				mp.list = append(mp.list[:idx], mp.list[idx+1:]...)

				if e.mv == mp.ttMove {
					continue
				}

				if isRoot {
					mp.scoreQuiet(pos, tables, ply)
				}
				return e.mv, true
			}
		}
		mp.stage = BadNoisy
	}

	for mp.badNoisyIdx < len(mp.badNoisy) {
		mv := mp.badNoisy[mp.badNoisyIdx]
		mp.badNoisyIdx++
		if mv == mp.ttMove {
			continue
		}
		return mv, true
	}

	mp.stage = done
	return board.NoMove, false
}

func (mp *MovePicker) appendNoisy(pos *board.Position) {
	ml := pos.GenerateNoisyMoves()
	for i := 0; i < ml.Len(); i++ {
		mp.list = append(mp.list, entry{mv: ml.Get(i)})
	}
}

func (mp *MovePicker) appendQuiet(pos *board.Position) {
	ml := pos.GenerateQuietMoves()
	for i := 0; i < ml.Len(); i++ {
		mp.list = append(mp.list, entry{mv: ml.Get(i)})
	}
}

// findBestScoreIndex returns the index of the highest-scoring entry still
// in the list. Ties resolve to the LAST matching index, not the first: the
// comparison uses >=, so a later entry with an equal score always displaces
// an earlier one. This is a faithful port of the reference picker's tie
// break, not a deliberate design choice of this package.
func (mp *MovePicker) findBestScoreIndex() int {
	bestIndex := 0
	bestScore := math.MinInt32
	for i, e := range mp.list {
		if e.score >= bestScore {
			bestIndex = i
			bestScore = e.score
		}
	}
	return bestIndex
}

func (mp *MovePicker) scoreNoisy(pos *board.Position, tables *history.Tables) {
	threats := pos.Threats()

	for i := range mp.list {
		mv := mp.list[i].mv
		if mv == mp.ttMove {
			mp.list[i].score = math.MinInt32
			continue
		}

		var captured board.PieceType
		if mv.IsEnPassant() {
			captured = board.Pawn
		} else {
			captured = pos.PieceAt(mv.To()).Type()
		}

		movedPiece := pos.PieceAt(mv.From())
		mp.list[i].score = 16*board.PieceValue[captured] + tables.Noisy.Get(threats, movedPiece, mv.To(), captured)
	}
}

func (mp *MovePicker) scoreQuiet(pos *board.Position, tables *history.Tables, ply int) {
	threats := pos.Threats()
	side := pos.SideToMove
	them := side.Other()
	occ := pos.AllOccupied

	pawnThreats := board.PawnAttacksSetwise(pos.Pieces[them][board.Pawn], them)

	var minorThreats board.Bitboard
	pos.Pieces[them][board.Knight].ForEach(func(sq board.Square) {
		minorThreats |= board.KnightAttacks(sq)
	})
	pos.Pieces[them][board.Bishop].ForEach(func(sq board.Square) {
		minorThreats |= board.BishopAttacks(sq, occ)
	})
	minorThreats |= pawnThreats

	var rookThreats board.Bitboard
	pos.Pieces[them][board.Rook].ForEach(func(sq board.Square) {
		rookThreats |= board.RookAttacks(sq, occ)
	})
	rookThreats |= minorThreats

	threatened := (pos.Pieces[side][board.Queen] & rookThreats) |
		(pos.Pieces[side][board.Rook] & minorThreats) |
		(pos.Pieces[side][board.Knight] & pawnThreats) |
		(pos.Pieces[side][board.Bishop] & pawnThreats)

	for i := range mp.list {
		mv := mp.list[i].mv
		if mv == mp.ttMove {
			mp.list[i].score = math.MinInt32
			continue
		}

		movedPiece := pos.PieceAt(mv.From())
		score := tables.Quiet.Get(threats, side, mv.From(), mv.To()) + tables.ContinuationScore(ply, movedPiece, mv.To())

		if threatened&board.SquareBB(mv.From()) != 0 {
			switch movedPiece.Type() {
			case board.Queen:
				score += 40000
			case board.Rook:
				score += 15000
			case board.Pawn:
				// A threatened pawn moving away isn't worth a bonus on its own.
			default:
				score += 8000
			}
		}

		if pos.CheckingSquares(movedPiece.Type())&board.SquareBB(mv.To()) != 0 {
			score += 10000
		}

		mp.list[i].score = score
	}
}
