package engine

import (
	"log"
	"time"

	"github.com/chesscore/moveorder/internal/board"
	"github.com/chesscore/moveorder/internal/history"
)

// SearchInfo reports one iteration of iterative deepening.
type SearchInfo struct {
	Depth int
	Score int
	Nodes uint64
	Time  time.Duration
	PV    []board.Move
}

// Engine bundles a transposition table, the move-ordering history tables,
// and a single Searcher. Unlike the teacher's Lazy-SMP engine this runs one
// search thread only; there is no worker pool to coordinate.
type Engine struct {
	tt       *TranspositionTable
	tables   *history.Tables
	searcher *Searcher
	store    *history.Store
}

// NewEngine creates an engine with a hash table of the given size in MB and
// fresh, empty history tables.
func NewEngine(hashMB int) *Engine {
	tt := NewTranspositionTable(hashMB)
	tables := history.NewTables()
	return &Engine{
		tt:       tt,
		tables:   tables,
		searcher: NewSearcher(tt, tables),
	}
}

// LoadHistory opens the on-disk history store at the default location and
// loads any previously saved tables into the engine. If nothing has been
// saved yet the tables are left as they are and nil is returned; a failure
// to read saved tables is logged and returned.
func (e *Engine) LoadHistory() error {
	store, err := history.OpenStore()
	if err != nil {
		return err
	}
	e.store = store
	if err := store.Load(e.tables); err != nil {
		log.Printf("history: could not load saved tables: %v", err)
		return err
	}
	return nil
}

// SaveHistory persists the engine's current history tables to the store
// opened by LoadHistory. A no-op if LoadHistory was never called.
func (e *Engine) SaveHistory() error {
	if e.store == nil {
		return nil
	}
	return e.store.Save(e.tables)
}

// CloseHistory closes the on-disk history store, if one was opened.
func (e *Engine) CloseHistory() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// SearchToDepth runs iterative deepening from depth 1 up to maxDepth,
// logging each completed iteration, and returns the final iteration's info.
func (e *Engine) SearchToDepth(pos *board.Position, maxDepth int) SearchInfo {
	var last SearchInfo
	start := time.Now()

	for depth := 1; depth <= maxDepth; depth++ {
		iterStart := time.Now()
		move, score := e.searcher.Search(pos, depth)
		elapsed := time.Since(iterStart)

		last = SearchInfo{
			Depth: depth,
			Score: score,
			Nodes: e.searcher.Nodes(),
			Time:  time.Since(start),
			PV:    e.searcher.GetPV(),
		}
		log.Printf("depth %2d  score %6d  nodes %8d  time %v  move %v",
			depth, score, last.Nodes, elapsed, move)
	}

	return last
}
