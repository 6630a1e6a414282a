package engine

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

func newTestSearcher() *Searcher {
	return NewSearcher(NewTranspositionTable(4), history.NewTables())
}

func TestSearchFindsMateInOne(t *testing.T) {
	// White to move mates in one with Qb8: the queen covers the back rank
	// and the king on g6 covers g7 and h7, boxing in the black king on h8.
	pos := mustFEN(t, "7k/8/6K1/8/8/8/8/1Q6 w - - 0 1")
	s := newTestSearcher()

	mv, score := s.Search(pos, 3)
	if mv == board.NoMove {
		t.Fatal("expected a move from a position with a forced mate")
	}
	if score < MateScore-MaxPly {
		t.Errorf("expected a mate score, got %d for move %v", score, mv)
	}
}

func TestSearchReturnsLegalMoveFromStartPosition(t *testing.T) {
	pos := board.NewPosition()
	s := newTestSearcher()

	mv, _ := s.Search(pos, 3)
	if mv == board.NoMove {
		t.Fatal("expected a move from the starting position")
	}

	legal := pos.GenerateLegalMoves()
	found := false
	for i := 0; i < legal.Len(); i++ {
		if legal.Get(i) == mv {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("search returned %v, which is not a legal move from the starting position", mv)
	}
}

func TestSearchPrefersWinningCaptureAtShallowDepth(t *testing.T) {
	// White queen can capture an undefended rook.
	pos := mustFEN(t, "4k3/8/8/8/8/3r4/3Q4/4K3 w - - 0 1")
	s := newTestSearcher()

	mv, _ := s.Search(pos, 2)
	want := board.NewMove(board.D2, board.D3)
	if mv != want {
		t.Errorf("expected the queen to take the undefended rook (%v), got %v", want, mv)
	}
}

func TestSearchNodesIncreaseWithDepth(t *testing.T) {
	pos := board.NewPosition()
	s := newTestSearcher()

	_, _ = s.Search(pos, 1)
	shallow := s.Nodes()

	_, _ = s.Search(pos, 3)
	deep := s.Nodes()

	if deep <= shallow {
		t.Errorf("expected deeper search to visit more nodes, shallow=%d deep=%d", shallow, deep)
	}
}

func TestSearchResetClearsStopFlag(t *testing.T) {
	s := newTestSearcher()
	s.Stop()
	if !s.stopFlag.Load() {
		t.Fatal("expected Stop to set the stop flag")
	}

	s.Reset()
	if s.stopFlag.Load() {
		t.Error("expected Reset to clear the stop flag ahead of a new search")
	}
}
