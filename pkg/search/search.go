// Package search implements the game-tree search: iterative-deepening principal variation
// search over board.Board, backed by a transposition table and a staged move-ordering FSM.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/eval"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

// ErrHalted indicates the search was stopped (via ctx cancellation) before completing the
// requested depth. The partial PV, if any, is still meaningful and is returned alongside it.
var ErrHalted = errors.New("search halted")

// PV is the principal variation found at some search depth.
type PV struct {
	Depth int
	Moves []board.Move
	Score eval.Score
	Nodes uint64
	Time  time.Duration
	Hash  float64 // transposition table occupancy [0;1] at the end of this iteration
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%v score=%v nodes=%v time=%v hash=%v%% pv=%v", p.Depth, p.Score, p.Nodes, p.Time, int(100*p.Hash), board.PrintMoves(p.Moves))
}

// Search performs a fixed-depth search from the current position of b. Implementations
// must be safe to call repeatedly with increasing depth against the same *board.Board
// (iterative deepening) and must cooperate with ctx cancellation: a cancelled context may
// return a partial result alongside ErrHalted rather than blocking to completion.
type Search interface {
	Search(ctx context.Context, b *board.Board, depth int) (PV, error)
}

// Options tunes search behavior that the engine/console may want to change between games
// without recompiling: disabling pruning techniques is mostly useful for testing and for
// comparing playing strength with them off.
type Options struct {
	NullMove bool // enable null-move pruning
	LMR      bool // enable late move reductions
	SEE      bool // order/prune captures using static exchange evaluation rather than MVV-LVA alone
}

// DefaultOptions enables every pruning technique.
func DefaultOptions() Options {
	return Options{NullMove: true, LMR: true, SEE: true}
}

// Engine is the PVS search implementation: alpha-beta with a null window for non-PV nodes
// (re-searched with a full window only if it fails high), null-move pruning, late move
// reductions, check extensions and a transposition table. Conceptually every node is one of
// three kinds -- PV (the first child explored, searched with the full window), cut (a node
// that is expected to and does fail high, pruned aggressively) or all (every move must be
// examined, none raises alpha) -- though Engine does not track the kind explicitly; it falls
// out of which window a node is searched with.
type Engine struct {
	Eval eval.Evaluator
	TT   TranspositionTable
	Opt  Options

	killers Killers
}

// NewEngine returns a ready-to-use search Engine.
func NewEngine(ev eval.Evaluator, tt TranspositionTable, opt Options) *Engine {
	return &Engine{Eval: ev, TT: tt, Opt: opt, killers: NewKillers()}
}

func (e *Engine) Search(ctx context.Context, b *board.Board, depth int) (PV, error) {
	start := time.Now()

	run := &run{
		e:       e,
		b:       b,
		rootPly: b.Ply(),
	}

	score, moves := run.negamax(ctx, depth, eval.NegInfScore, eval.InfScore)

	pv := PV{
		Depth: depth,
		Moves: moves,
		Score: score,
		Nodes: run.nodes,
		Time:  time.Since(start),
		Hash:  e.TT.Used(),
	}

	if contextx.IsCancelled(ctx) {
		return pv, ErrHalted
	}
	return pv, nil
}

// run holds the mutable state of one Engine.Search call. Not safe for concurrent use --
// callers searching in parallel must use independent Engines (sharing just the
// TranspositionTable, which is itself thread-safe).
type run struct {
	e       *Engine
	b       *board.Board
	rootPly int
	nodes   uint64
}
