package exchange

import (
	"testing"

	"github.com/chesscore/moveorder/internal/board"
)

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func TestSeeCastlingAlwaysPasses(t *testing.T) {
	pos := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	mv := board.NewCastling(board.E1, board.G1)
	if !See(pos, mv, 100000) {
		t.Fatal("castling must always pass SEE, regardless of threshold")
	}
}

func TestSeeUndefendedCaptureWins(t *testing.T) {
	// White rook on a5 captures an undefended knight on a8.
	pos := mustFEN(t, "n3k3/8/8/R7/8/8/8/4K3 w - - 0 1")
	mv := board.NewMove(board.A5, board.A8)

	if !See(pos, mv, 0) {
		t.Error("capturing an undefended knight should meet a threshold of 0")
	}
	if See(pos, mv, 500) {
		t.Error("a knight (320) should not meet a threshold of 500 with no recapture")
	}
}

func TestSeePawnTakesDefendedKnightAlwaysWins(t *testing.T) {
	// Even if the pawn is recaptured by anything, trading a pawn for a
	// knight is won material: this is decidable from the worst-case check
	// alone and does not depend on what (if anything) recaptures.
	pos := mustFEN(t, "4k3/8/2p5/3n4/4P3/8/8/4K3 w - - 0 1")
	mv := board.NewMove(board.E4, board.D5)

	if !See(pos, mv, 0) {
		t.Error("pawn takes knight should win material even assuming the worst-case recapture")
	}
}

func TestSeeQueenTakesPawnBelowThreshold(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3p4/8/8/3Q4/4K3 w - - 0 1")
	mv := board.NewMove(board.D2, board.D5)

	// Asking for more than a pawn's worth with nothing backing up the
	// capture must fail immediately.
	if See(pos, mv, 150) {
		t.Error("queen takes undefended pawn should not meet a threshold above the pawn's value")
	}
}

func TestSeeQueenTakesDefendedPawnLoses(t *testing.T) {
	// White queen captures a pawn on d5 that is defended by a black pawn
	// on c6; recapture nets black a queen for a pawn.
	pos := mustFEN(t, "4k3/8/2p5/3p4/8/8/8/3QK3 w - - 0 1")
	mv := board.NewMove(board.D1, board.D5)

	if See(pos, mv, 0) {
		t.Error("queen takes pawn defended by a pawn should be a losing exchange")
	}
}

func TestSeePinnedDefenderCannotRecapture(t *testing.T) {
	// Black bishop on f4 defends the pawn on e5 and is pinned to the
	// black king on h4 by the white rook on d4 along the 4th rank. A
	// pinned piece may only move along the pin line, so the bishop cannot
	// legally recapture on e5: the knight capture nets a clean pawn.
	pinned := mustFEN(t, "8/8/8/4p3/2NR1b1k/8/8/4K3 w - - 0 1")
	mv := board.NewMove(board.C4, board.E5)

	if !See(pinned, mv, 0) {
		t.Error("knight takes pawn defended only by an absolutely pinned bishop should win the pawn cleanly")
	}

	// Same shape without the pinning rook: the bishop is free to
	// recapture, so trading a knight for a pawn is a losing exchange.
	unpinned := mustFEN(t, "8/8/8/4p3/2N2b1k/8/8/R3K3 w - - 0 1")
	if See(unpinned, mv, 0) {
		t.Error("knight takes pawn defended by a free bishop should lose the knight")
	}
}

func TestSeeEnPassantUsesPawnValue(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	mv := board.NewEnPassant(board.E5, board.D6)

	if !See(pos, mv, 0) {
		t.Error("en passant capturing an undefended pawn should win material")
	}
	if See(pos, mv, 150) {
		t.Error("en passant only wins a pawn's worth of material")
	}
}

func TestSeePromotionAddsPromotedValue(t *testing.T) {
	// White pawn on a7 promotes to queen on a8, capturing nothing: value
	// gained is queen-minus-pawn, comfortably above a middling threshold.
	pos := mustFEN(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	mv := board.NewPromotion(board.A7, board.A8, board.Queen)

	if !See(pos, mv, 700) {
		t.Error("promoting to a queen should meet a 700 threshold")
	}
}
