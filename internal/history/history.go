// Package history implements the move-ordering memory tables consulted and
// updated by the move picker: noisy (capture/promotion) history, quiet
// history split by whether a move's origin and destination are attacked, and
// continuation history keyed by what was played a fixed number of plies ago.
// None of these tables decide legality or evaluate a position; they only
// remember which moves have paid off from similar contexts before.
package history

import "github.com/chesscore/moveorder/internal/board"

// maxScore is the clamp applyBonus holds every history entry within: it adds
// bonus to *score, clamping to +/-maxScore, and halves every entry in the
// table the caller passes once the magnitude would otherwise pass the clamp.
const (
	maxScore = 16384

	// MaxPly bounds the continuation stack the same way the engine's own
	// search stack is bounded.
	MaxPly = 128
)

func applyBonus(score *int16, bonus int, age func()) {
	v := int(*score) + bonus
	if v > maxScore {
		age()
		v = int(*score) + bonus
	} else if v < -maxScore {
		age()
		v = int(*score) + bonus
	}
	if v > maxScore {
		v = maxScore
	}
	if v < -maxScore {
		v = -maxScore
	}
	*score = int16(v)
}

// threatIndex packs whether a move's origin and destination squares are
// currently attacked into a 2-bit index, so a history table can tell a move
// that walks a piece into danger from one that walks it to safety.
func threatIndex(threats board.Bitboard, from, to board.Square) int {
	idx := 0
	if threats&board.SquareBB(from) != 0 {
		idx |= 1
	}
	if threats&board.SquareBB(to) != 0 {
		idx |= 2
	}
	return idx
}

// NoisyHistory scores captures and promotions by the attacking
// piece, destination square, captured piece type, and whether the
// destination square was already contested before the capture lands —
// recapturing on a square the opponent was already attacking plays out
// differently than capturing into open space.
type NoisyHistory struct {
	table [2][13][64][board.NumPieceTypes + 1]int16
}

func destThreatened(threats board.Bitboard, to board.Square) int {
	if threats&board.SquareBB(to) != 0 {
		return 1
	}
	return 0
}

// Get returns the current score for an attacker of type piece landing on to
// and capturing a piece of type captured, given the threats bitboard in
// effect before the move. captured is the victim's piece type, or
// board.NoPieceType for a promotion that captures nothing; an en passant
// victim is always a pawn.
func (h *NoisyHistory) Get(threats board.Bitboard, piece board.Piece, to board.Square, captured board.PieceType) int {
	return int(h.table[destThreatened(threats, to)][piece][to][captured])
}

// Update applies a depth-scaled bonus (positive) or malus (negative) to the
// entry for this attacker/destination/victim triple.
func (h *NoisyHistory) Update(threats board.Bitboard, piece board.Piece, to board.Square, captured board.PieceType, bonus int) {
	applyBonus(&h.table[destThreatened(threats, to)][piece][to][captured], bonus, h.age)
}

func (h *NoisyHistory) age() {
	for i := range h.table {
		for j := range h.table[i] {
			for k := range h.table[i][j] {
				for l := range h.table[i][j][k] {
					h.table[i][j][k][l] /= 2
				}
			}
		}
	}
}

// Clear resets the table to zero, discarding everything learned so far.
func (h *NoisyHistory) Clear() {
	h.table = [2][13][64][board.NumPieceTypes + 1]int16{}
}

// QuietHistory scores quiet moves by moving side, origin, destination, and
// whether the origin/destination squares are presently under attack —
// moving a threatened piece to safety should outscore an identical move
// that isn't responding to any threat.
type QuietHistory struct {
	table [2][4][64][64]int16
}

// Get returns the current score for a quiet move by side c, given the
// threats bitboard of c's pieces under attack before the move is played.
func (h *QuietHistory) Get(threats board.Bitboard, c board.Color, from, to board.Square) int {
	return int(h.table[c][threatIndex(threats, from, to)][from][to])
}

// Update applies a bonus or malus to the quiet history entry a move would
// have been scored under.
func (h *QuietHistory) Update(threats board.Bitboard, c board.Color, from, to board.Square, bonus int) {
	applyBonus(&h.table[c][threatIndex(threats, from, to)][from][to], bonus, h.age)
}

func (h *QuietHistory) age() {
	for i := range h.table {
		for j := range h.table[i] {
			for k := range h.table[i][j] {
				for l := range h.table[i][j][k] {
					h.table[i][j][k][l] /= 2
				}
			}
		}
	}
}

// Clear resets the table to zero.
func (h *QuietHistory) Clear() {
	h.table = [2][4][64][64]int16{}
}

// ContinuationDistances lists the how-many-plies-back offsets the
// continuation history tracks. A reply one ply after the opponent's move
// answers it directly; two plies back catches the same-side follow-up; four
// and six plies back catch slower maneuvering patterns that repeat across a
// search tree without being adjacent replies.
var ContinuationDistances = [4]int{1, 2, 4, 6}

// ContinuationHistory scores a quiet move by the piece and destination
// square of the move played a fixed number of plies earlier, one table per
// tracked distance. It has no equivalent in the source this package is
// ported from — that engine's continuation history was not present in the
// files available to build from — so this table is an original design,
// grounded in the same (piece, square) -> (piece, square) indexing a
// countermove history table uses for a single ply back.
type ContinuationHistory struct {
	tables [len(ContinuationDistances)][13][64][13][64]int16
}

// indexForDistance returns the ContinuationDistances slot for a given
// distance, or -1 if that distance isn't tracked.
func indexForDistance(distance int) int {
	for i, d := range ContinuationDistances {
		if d == distance {
			return i
		}
	}
	return -1
}

// Get returns the score for playing piece to to, given that distance plies
// earlier prevPiece moved to prevTo. Returns 0 for an untracked distance or
// when prevPiece is board.NoPiece (no move that far back exists yet).
func (h *ContinuationHistory) Get(distance int, prevPiece board.Piece, prevTo board.Square, piece board.Piece, to board.Square) int {
	slot := indexForDistance(distance)
	if slot < 0 || prevPiece == board.NoPiece || piece == board.NoPiece {
		return 0
	}
	return int(h.tables[slot][prevPiece][prevTo][piece][to])
}

// Update applies a bonus or malus for playing piece to to, distance plies
// after prevPiece moved to prevTo. A no-op for an untracked distance.
func (h *ContinuationHistory) Update(distance int, prevPiece board.Piece, prevTo board.Square, piece board.Piece, to board.Square, bonus int) {
	slot := indexForDistance(distance)
	if slot < 0 || prevPiece == board.NoPiece || piece == board.NoPiece {
		return
	}
	applyBonus(&h.tables[slot][prevPiece][prevTo][piece][to], bonus, func() { h.age(slot) })
}

func (h *ContinuationHistory) age(slot int) {
	t := &h.tables[slot]
	for i := range t {
		for j := range t[i] {
			for k := range t[i][j] {
				for l := range t[i][j][k] {
					t[i][j][k][l] /= 2
				}
			}
		}
	}
}

// Clear resets every tracked distance to zero.
func (h *ContinuationHistory) Clear() {
	h.tables = [len(ContinuationDistances)][13][64][13][64]int16{}
}

// Stack records the (piece, destination) of each played move by ply, so a
// search can look up what happened a fixed distance back without threading
// extra parameters through every recursive call.
type Stack struct {
	piece [MaxPly]board.Piece
	to    [MaxPly]board.Square
}

// NewStack returns a Stack with every ply marked as having no recorded move.
func NewStack() *Stack {
	s := &Stack{}
	for i := range s.piece {
		s.piece[i] = board.NoPiece
	}
	return s
}

// Record stores the move played at ply so later plies can look it up as a
// "distance plies back" continuation reference.
func (s *Stack) Record(ply int, piece board.Piece, to board.Square) {
	if ply < 0 || ply >= MaxPly {
		return
	}
	s.piece[ply] = piece
	s.to[ply] = to
}

// Clear marks ply as having no recorded move, used when unwinding past a
// null move or the start of search.
func (s *Stack) Clear(ply int) {
	if ply < 0 || ply >= MaxPly {
		return
	}
	s.piece[ply] = board.NoPiece
}

// At returns the piece and destination recorded distance plies before ply,
// or (board.NoPiece, board.NoSquare) if ply-distance is out of range or
// nothing was recorded there.
func (s *Stack) At(ply, distance int) (board.Piece, board.Square) {
	i := ply - distance
	if i < 0 || i >= MaxPly || s.piece[i] == board.NoPiece {
		return board.NoPiece, board.NoSquare
	}
	return s.piece[i], s.to[i]
}

// Tables bundles every history table the move picker consults, plus the
// continuation stack needed to index ContinuationHistory during a search.
type Tables struct {
	Noisy  NoisyHistory
	Quiet  QuietHistory
	Contin ContinuationHistory
	Stack  *Stack
}

// NewTables returns an empty set of history tables with a fresh continuation
// stack.
func NewTables() *Tables {
	return &Tables{Stack: NewStack()}
}

// Clear resets every table for a new search, discarding the continuation
// stack's recorded moves as well.
func (t *Tables) Clear() {
	t.Noisy.Clear()
	t.Quiet.Clear()
	t.Contin.Clear()
	t.Stack = NewStack()
}

// ContinuationScore sums the continuation-history contribution of playing
// piece to to at ply, across every tracked distance.
func (t *Tables) ContinuationScore(ply int, piece board.Piece, to board.Square) int {
	score := 0
	for _, d := range ContinuationDistances {
		prevPiece, prevTo := t.Stack.At(ply, d)
		score += t.Contin.Get(d, prevPiece, prevTo, piece, to)
	}
	return score
}

// UpdateContinuation applies bonus to the continuation-history entry for
// piece/to at every tracked distance back from ply.
func (t *Tables) UpdateContinuation(ply int, piece board.Piece, to board.Square, bonus int) {
	for _, d := range ContinuationDistances {
		prevPiece, prevTo := t.Stack.At(ply, d)
		t.Contin.Update(d, prevPiece, prevTo, piece, to, bonus)
	}
}
