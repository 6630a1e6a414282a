package movepick

import (
	"testing"

	"github.com/chesscore/moveorder/internal/board"
	"github.com/chesscore/moveorder/internal/history"
)

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func drain(pos *board.Position, tables *history.Tables, mp *MovePicker, skipQuiets bool) []board.Move {
	var out []board.Move
	for {
		mv, ok := mp.Next(pos, tables, 0, skipQuiets, false)
		if !ok {
			return out
		}
		out = append(out, mv)
	}
}

func contains(moves []board.Move, mv board.Move) bool {
	for _, m := range moves {
		if m == mv {
			return true
		}
	}
	return false
}

func TestMovePickerReturnsHashMoveFirst(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3p4/8/8/3Q4/4K3 w - - 0 1")
	tables := history.NewTables()
	ttMove := board.NewMove(board.D2, board.D5)

	mp := New(ttMove)
	if mp.CurrentStage() != HashMove {
		t.Fatalf("expected picker with a legal ttMove to start at HashMove, got %v", mp.CurrentStage())
	}

	mv, ok := mp.Next(pos, tables, 0, false, false)
	if !ok || mv != ttMove {
		t.Fatalf("expected the hash move %v first, got %v (ok=%v)", ttMove, mv, ok)
	}

	rest := drain(pos, tables, mp, false)
	if contains(rest, ttMove) {
		t.Error("the hash move should not be handed out a second time by a later stage")
	}
}

func TestMovePickerWithNoMoveStartsPastHashMove(t *testing.T) {
	mp := New(board.NoMove)
	if mp.CurrentStage() != GenerateNoisy {
		t.Fatalf("a picker with no tt move should skip straight to GenerateNoisy, got %v", mp.CurrentStage())
	}
}

func TestMovePickerSkipsIllegalHashMove(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3p4/8/8/3Q4/4K3 w - - 0 1")
	tables := history.NewTables()

	// A move that is not legal in this position at all.
	bogus := board.NewMove(board.A1, board.A8)
	mp := New(bogus)

	mv, ok := mp.Next(pos, tables, 0, false, false)
	if !ok {
		t.Fatal("expected at least one legal move after an illegal hash move is discarded")
	}
	if mv == bogus {
		t.Error("an illegal hash move must never be returned")
	}
}

func TestMovePickerGoodNoisyBeforeQuiet(t *testing.T) {
	// White queen can win a pawn for free (d2xd5), plus has quiet king moves.
	pos := mustFEN(t, "4k3/8/8/3p4/8/8/3Q4/4K3 w - - 0 1")
	tables := history.NewTables()

	mp := New(board.NoMove)
	winningCapture := board.NewMove(board.D2, board.D5)

	mv, ok := mp.Next(pos, tables, 0, false, false)
	if !ok || mv != winningCapture {
		t.Fatalf("expected the winning capture first, got %v (ok=%v)", mv, ok)
	}
	if mp.CurrentStage() != GoodNoisy {
		t.Fatalf("expected to still be in GoodNoisy after handing out one good capture, got %v", mp.CurrentStage())
	}
}

func TestMovePickerDrainsAllStagesExactlyOnce(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3p4/8/8/3Q4/4K3 w - - 0 1")
	tables := history.NewTables()
	mp := New(board.NoMove)

	moves := drain(pos, tables, mp, false)
	if len(moves) == 0 {
		t.Fatal("expected at least one move")
	}

	seen := map[board.Move]bool{}
	for _, mv := range moves {
		if seen[mv] {
			t.Fatalf("move %v was returned more than once", mv)
		}
		seen[mv] = true
	}

	legal := pos.GenerateLegalMoves()
	if len(moves) != legal.Len() {
		t.Fatalf("expected picker to exhaust exactly the %d legal moves, got %d", legal.Len(), len(moves))
	}
	if mp.CurrentStage() != done {
		t.Fatalf("expected the picker to reach done, got %v", mp.CurrentStage())
	}
}

func TestMovePickerSkipQuietsOmitsQuietMoves(t *testing.T) {
	// A position with both a capture and plenty of quiet moves available.
	pos := mustFEN(t, "4k3/8/8/3p4/8/8/3Q4/4K3 w - - 0 1")
	tables := history.NewTables()
	mp := New(board.NoMove)

	moves := drain(pos, tables, mp, true)

	quiets := pos.GenerateQuietMoves()
	for i := 0; i < quiets.Len(); i++ {
		if contains(moves, quiets.Get(i)) {
			t.Errorf("skipQuiets should have excluded quiet move %v", quiets.Get(i))
		}
	}
}

func TestMovePickerBadNoisySeparatedFromGoodNoisy(t *testing.T) {
	// White queen takes a pawn defended by a king, a losing trade once the
	// king recaptures, so See should fail it into the bad-noisy bucket.
	pos := mustFEN(t, "8/8/2k5/3p4/8/8/3Q4/4K3 w - - 0 1")
	tables := history.NewTables()
	losingCapture := board.NewMove(board.D2, board.D5)

	mp := New(board.NoMove)
	moves := drain(pos, tables, mp, false)

	idx := -1
	for i, mv := range moves {
		if mv == losingCapture {
			idx = i
		}
	}
	if idx == -1 {
		t.Fatal("expected the losing capture to still be returned eventually")
	}

	quiets := pos.GenerateQuietMoves()
	if quiets.Len() > 0 {
		quietIdx := -1
		for i, mv := range moves {
			if mv == quiets.Get(0) {
				quietIdx = i
			}
		}
		if quietIdx != -1 && idx < quietIdx {
			t.Error("a losing capture (bad noisy) should be ordered after quiet moves, not before")
		}
	}
}

func TestFindBestScoreIndexPrefersLatestOnTie(t *testing.T) {
	mp := &MovePicker{
		list: []entry{
			{mv: board.NewMove(board.A2, board.A3), score: 10},
			{mv: board.NewMove(board.B2, board.B3), score: 10},
			{mv: board.NewMove(board.C2, board.C3), score: 5},
		},
	}

	idx := mp.findBestScoreIndex()
	if idx != 1 {
		t.Fatalf("expected the later of two equally-scored entries (index 1) to win the tie, got index %d", idx)
	}
}

func TestNewProbCutUsesFixedThreshold(t *testing.T) {
	mp := NewProbCut(200)
	if !mp.hasThreshold || mp.threshold != 200 {
		t.Fatalf("expected a fixed threshold of 200, got hasThreshold=%v threshold=%d", mp.hasThreshold, mp.threshold)
	}
	if mp.CurrentStage() != GenerateNoisy {
		t.Fatalf("ProbCut picker should start at GenerateNoisy, got %v", mp.CurrentStage())
	}
}

func TestNewQuiescenceHasNoHashMove(t *testing.T) {
	mp := NewQuiescence()
	if mp.ttMove != board.NoMove {
		t.Fatalf("quiescence picker should have no hash move, got %v", mp.ttMove)
	}
	if mp.CurrentStage() != GenerateNoisy {
		t.Fatalf("quiescence picker should start at GenerateNoisy, got %v", mp.CurrentStage())
	}
}
