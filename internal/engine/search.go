package engine

import (
	"sync/atomic"

	"github.com/chesscore/moveorder/internal/board"
	"github.com/chesscore/moveorder/internal/history"
	"github.com/chesscore/moveorder/internal/movepick"
)

// Search constants.
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

// PVTable stores the principal variation found by the last search.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Searcher drives a single-threaded negamax search, consulting a
// movepick.MovePicker (which uses exchange.See to split good and bad
// captures) for move order at every node; quiescence prunes with a plain
// material delta test. It carries no evaluation beyond material.
type Searcher struct {
	pos    *board.Position
	tt     *TranspositionTable
	tables *history.Tables

	nodes    uint64
	stopFlag atomic.Bool

	pv PVTable

	undoStack [MaxPly]board.UndoInfo
}

// NewSearcher creates a searcher backed by the given transposition table and
// history tables. The history tables are shared with the caller so move
// order keeps improving across successive searches.
func NewSearcher(tt *TranspositionTable, tables *history.Tables) *Searcher {
	return &Searcher{tt: tt, tables: tables}
}

// Stop signals the search to return as soon as it next checks.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Reset clears per-search node and stop-flag state ahead of a new search.
// The history tables are left untouched: they are meant to persist across
// searches, only cleared explicitly by the caller.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
}

// Nodes returns the number of nodes visited by the last search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Search runs a fixed-depth negamax to the given depth from pos and returns the
// best move found along with its score.
func (s *Searcher) Search(pos *board.Position, depth int) (board.Move, int) {
	s.pos = pos.Copy()
	s.Reset()
	s.tt.NewSearch()

	score := s.negamax(depth, 0, -Infinity, Infinity)

	var bestMove board.Move
	if s.pv.length[0] > 0 {
		bestMove = s.pv.moves[0][0]
	}
	return bestMove, score
}

func (s *Searcher) negamax(depth, ply int, alpha, beta int) int {
	if s.nodes&4095 == 0 && s.stopFlag.Load() {
		return 0
	}
	s.nodes++
	s.pv.length[ply] = ply

	if ply > 0 && s.isDraw() {
		return 0
	}

	var ttMove board.Move
	ttEntry, found := s.tt.Probe(s.pos.Hash)
	if found {
		ttMove = ttEntry.BestMove
		if int(ttEntry.Depth) >= depth {
			score := AdjustScoreFromTT(int(ttEntry.Score), ply)
			switch ttEntry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score > alpha {
					alpha = score
				}
			case TTUpperBound:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
	}

	if depth <= 0 {
		return s.quiescence(ply, alpha, beta)
	}

	inCheck := s.pos.InCheck()

	mp := movepick.New(ttMove)

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := TTUpperBound
	movesSeen := 0

	for {
		mv, ok := mp.Next(s.pos, s.tables, ply, false, ply == 0)
		if !ok {
			break
		}
		movesSeen++

		movedPiece := s.pos.PieceAt(mv.From())
		s.undoStack[ply] = s.pos.MakeMove(mv)
		if !s.undoStack[ply].Valid {
			s.pos.UnmakeMove(mv, s.undoStack[ply])
			movesSeen--
			continue
		}

		s.tables.Stack.Record(ply, movedPiece, mv.To())

		score := -s.negamax(depth-1, ply+1, -beta, -alpha)

		s.pos.UnmakeMove(mv, s.undoStack[ply])

		if s.stopFlag.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = mv

			if score > alpha {
				alpha = score
				flag = TTExact

				s.pv.moves[ply][ply] = mv
				for j := ply + 1; j < s.pv.length[ply+1]; j++ {
					s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
				}
				s.pv.length[ply] = s.pv.length[ply+1]
			}
		}

		if score >= beta {
			s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(score, ply), TTLowerBound, bestMove)

			if !mv.IsCapture(s.pos) {
				bonus := depth * depth
				s.tables.Quiet.Update(s.pos.Threats(), s.pos.SideToMove, mv.From(), mv.To(), bonus)
				s.tables.UpdateContinuation(ply, movedPiece, mv.To(), bonus)
			}
			return score
		}
	}

	if movesSeen == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove)
	return bestScore
}

// quiescence searches noisy moves only, to settle the position before
// handing a score back to the parent ply.
func (s *Searcher) quiescence(ply int, alpha, beta int) int {
	const maxQuiescencePly = 32
	if ply >= MaxPly || ply > maxQuiescencePly {
		return Evaluate(s.pos)
	}
	if s.stopFlag.Load() {
		return 0
	}
	s.nodes++

	standPat := Evaluate(s.pos)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	bigDelta := board.PieceValue[board.Queen]
	if standPat+bigDelta < alpha {
		return alpha
	}

	mp := movepick.NewQuiescence()

	for {
		mv, ok := mp.Next(s.pos, s.tables, ply, true, false)
		if !ok {
			break
		}

		if !s.pos.InCheck() {
			var captureValue int
			if mv.IsEnPassant() {
				captureValue = board.PieceValue[board.Pawn]
			} else if captured := s.pos.PieceAt(mv.To()); captured != board.NoPiece {
				captureValue = board.PieceValue[captured.Type()]
			}
			if mv.IsPromotion() {
				captureValue += board.PieceValue[board.Queen] - board.PieceValue[board.Pawn]
			}
			if standPat+captureValue+200 < alpha {
				continue
			}
		}

		undo := s.pos.MakeMove(mv)
		if !undo.Valid {
			s.pos.UnmakeMove(mv, undo)
			continue
		}

		score := -s.quiescence(ply+1, -beta, -alpha)
		s.pos.UnmakeMove(mv, undo)

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}

func (s *Searcher) isDraw() bool {
	if s.pos.HalfMoveClock >= 100 {
		return true
	}
	return s.pos.IsInsufficientMaterial()
}

// GetPV returns the principal variation found by the last Search call.
func (s *Searcher) GetPV() []board.Move {
	pv := make([]board.Move, s.pv.length[0])
	for i := 0; i < s.pv.length[0]; i++ {
		pv[i] = s.pv.moves[0][i]
	}
	return pv
}
