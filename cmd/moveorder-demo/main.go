// Command moveorder-demo loads a FEN, runs the search driver to a fixed
// depth, and prints the principal variation plus node counts per depth.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/chesscore/moveorder/internal/board"
	"github.com/chesscore/moveorder/internal/engine"
)

var (
	fen        = flag.String("fen", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", "FEN of the position to search")
	depth      = flag.Int("depth", 6, "maximum search depth")
	hashMB     = flag.Int("hash", 16, "transposition table size in MB")
	persist    = flag.Bool("persist", false, "load and save move-ordering history across runs")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		stopProfiling := startProfiling(profilePath)
		defer stopProfiling()
	}

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		log.Fatalf("parsing FEN %q: %v", *fen, err)
	}

	eng := engine.NewEngine(*hashMB)

	if *persist {
		if err := eng.LoadHistory(); err != nil {
			log.Printf("history: starting without a saved table: %v", err)
		}
		defer func() {
			if err := eng.SaveHistory(); err != nil {
				log.Printf("history: could not save: %v", err)
			}
			if err := eng.CloseHistory(); err != nil {
				log.Printf("history: could not close: %v", err)
			}
		}()
	}

	info := eng.SearchToDepth(pos, *depth)

	log.Printf("best score: %d", info.Score)
	log.Printf("principal variation:")
	for i, mv := range info.PV {
		log.Printf("  %2d. %s", i+1, mv.String())
	}
}
