// corvid is a console-driven chess engine: iterative-deepening PVS search over bitboard move
// generation, backed by a two-half transposition table and a tunable positional evaluator.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/board/pgnbook"
	"github.com/corvid-chess/corvid/pkg/board/polyglot"
	"github.com/corvid-chess/corvid/pkg/engine"
	"github.com/corvid-chess/corvid/pkg/engine/console"
	"github.com/corvid-chess/corvid/pkg/engine/livechess"
	"github.com/corvid-chess/corvid/pkg/eval"
	"github.com/corvid-chess/corvid/pkg/search"
	"github.com/seekerror/logw"
)

var (
	depth = flag.Uint("depth", 6, "Default search depth limit (zero for unlimited)")
	hash  = flag.Uint("hash", 64, "Transposition table size in MB (zero disables it)")
	noise = flag.Uint("noise", 0, "Evaluation noise in material units, pawn = 16 (zero if deterministic)")

	nullMove = flag.Bool("nullmove", true, "Enable null-move pruning")
	lmr      = flag.Bool("lmr", true, "Enable late move reductions")
	see      = flag.Bool("see", true, "Order/prune captures using static exchange evaluation")

	liveURL = flag.String("livechess", "", "WebSocket URL of a livechess board feed (plays board moves instead of reading stdin)")

	book = flag.String("book", "", "Opening book file: a PolyGlot .bin, or a FEN-prefixed plain-text book otherwise")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: corvid [options]

CORVID is a console chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	opts := []engine.Option{
		engine.WithOptions(engine.Options{Depth: *depth, Hash: *hash, Noise: *noise}),
		engine.WithSearchOptions(search.Options{NullMove: *nullMove, LMR: *lmr, SEE: *see}),
	}
	if *book != "" {
		b, err := loadBook(*book)
		if err != nil {
			logw.Exitf(ctx, "Loading book %v failed: %v", *book, err)
		}
		opts = append(opts, engine.WithBook(b))
	}

	e := engine.New(ctx, "corvid", "corvid-chess", eval.Heuristic{Options: eval.DefaultOptions()}, opts...)

	if *liveURL != "" {
		runLivechess(ctx, e)
		return
	}

	in := engine.ReadStdinLines(ctx)

	driver, out := console.NewDriver(ctx, e, in)
	go engine.WriteStdoutLines(ctx, out)

	<-driver.Closed()
	logw.Infof(ctx, "Exiting")
}

// loadBook opens path as a PolyGlot binary book if it ends in .bin, or as a FEN-prefixed
// plain-text book otherwise.
func loadBook(path string) (engine.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.HasSuffix(path, ".bin") {
		return polyglot.ReadAll(f)
	}
	return pgnbook.Parse(f)
}

// runLivechess plays out the game by following moves reported by a physical board instead of
// reading moves from stdin; the engine's own search/evaluation is unused in this mode.
func runLivechess(ctx context.Context, e *engine.Engine) {
	feed, err := livechess.Dial(ctx, *liveURL)
	if err != nil {
		logw.Exitf(ctx, "Dial %v failed: %v", *liveURL, err)
	}
	defer feed.Close()

	adaptor := livechess.NewAdaptor(ctx, feed)

	for {
		b := e.Board()
		if b.Result().Outcome != board.Undecided {
			logw.Infof(ctx, "Game over: %v", b.Result())
			return
		}

		pv, err := adaptor.Search(ctx, b, 1)
		if err != nil {
			logw.Infof(ctx, "Livechess feed closed: %v", err)
			return
		}
		if len(pv.Moves) == 0 {
			logw.Infof(ctx, "No move reported: %v", pv)
			return
		}

		if err := e.Move(ctx, pv.Moves[0].String()); err != nil {
			logw.Errorf(ctx, "Rejecting board move %v: %v", pv.Moves[0], err)
			return
		}
		logw.Infof(ctx, "Played %v: %v", pv.Moves[0], e.Position())
	}
}
