package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/board/fen"
	"github.com/corvid-chess/corvid/pkg/eval"
	"github.com/corvid-chess/corvid/pkg/search"
	"github.com/corvid-chess/corvid/pkg/search/searchctl"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var version = build.NewVersion(0, 89, 3)

// TranspositionTableFactory allocates a TranspositionTable of roughly the given size in bytes.
type TranspositionTableFactory func(ctx context.Context, size uint64) search.TranspositionTable

// Options are search creation options.
type Options struct {
	// Depth is the search depth limit. If zero, there is no limit. Overridden by search
	// options if provided.
	Depth uint
	// Hash is the transposition table size in MB. If zero, the engine will not use
	// a transposition table.
	Hash uint
	// Noise adds randomness to the leaf evaluations, bounded by Noise material units
	// (pawn = 16; see eval.Random).
	Noise uint
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%v, noise=%v}", o.Depth, o.Hash, o.Noise)
}

// Engine encapsulates game-playing logic, search and evaluation. The search tree itself
// (search.Engine) is rebuilt on every Analyze call from the current evaluator, transposition
// table and search.Options, so that Hash/Noise toggles take effect on the next search without
// needing a full engine.Reset.
type Engine struct {
	name, author string

	launcher   searchctl.Launcher
	factory    TranspositionTableFactory
	searchOpts search.Options
	zt         *board.ZobristTable
	seed       int64
	opts       Options
	ev         eval.Evaluator
	book       Book

	b      *board.Board
	tt     search.TranspositionTable
	noise  eval.Random
	active searchctl.Handle
	mu     sync.Mutex
}

// Option is an engine creation option.
type Option func(*Engine)

// WithTable configures the engine to use the given transposition table factory.
func WithTable(factory TranspositionTableFactory) Option {
	return func(e *Engine) {
		e.factory = factory
	}
}

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithSearchOptions sets the pruning toggles (null move, LMR, SEE) used by the search tree.
func WithSearchOptions(opt search.Options) Option {
	return func(e *Engine) {
		e.searchOpts = opt
	}
}

// WithZobrist configures the engine to use the given random seed instead of the
// default seed of zero.
func WithZobrist(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithBook configures an opening book to consult before falling back to search. The book is
// dropped for the remainder of the game once it returns an empty move list for a position.
func WithBook(book Book) Option {
	return func(e *Engine) {
		e.book = book
	}
}

// New creates a new engine. ev is the base evaluator; leaf noise (see SetNoise) and the
// transposition table are layered on top of it for each search, not baked into ev itself.
func New(ctx context.Context, name, author string, ev eval.Evaluator, opts ...Option) *Engine {
	e := &Engine{
		name:       name,
		author:     author,
		launcher:   searchctl.Iterative{},
		factory:    search.NewTranspositionTable,
		searchOpts: search.DefaultOptions(),
		ev:         ev,
		book:       NoBook,
	}
	for _, fn := range opts {
		fn(e)
	}
	e.zt = board.NewZobristTable(e.seed)

	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

func (e *Engine) SetDepth(depth uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Depth = depth
}

func (e *Engine) SetHash(size uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Hash = size
	e.tt = search.NoTranspositionTable{}
	if e.opts.Hash > 0 {
		e.tt = e.factory(context.Background(), uint64(e.opts.Hash)<<20)
	}
}

func (e *Engine) SetNoise(units uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Noise = units
	e.noise = eval.Random{}
	if e.opts.Noise > 0 {
		e.noise = eval.NewRandom(int(e.opts.Noise), e.seed)
	}
}

// Board returns a forked board.
func (e *Engine) Board() *board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.Fork()
}

// Position returns the current position in FEN format. Convenience function.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.b.Position(), e.b.Turn(), e.b.NoProgress(), e.b.FullMoves())
}

// Reset resets the engine to a new starting position in FEN format.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset %v, depth=%v, TT=%vMB, noise=%v", position, e.opts.Depth, e.opts.Hash, e.opts.Noise)

	_, _ = e.haltSearchIfActive(ctx)

	pos, turn, noprogress, fullmoves, err := fen.Decode(position)
	if err != nil {
		return err
	}
	e.b = board.NewBoard(e.zt, pos, turn, noprogress, fullmoves)

	e.tt = search.NoTranspositionTable{}
	if e.opts.Hash > 0 {
		e.tt = e.factory(ctx, uint64(e.opts.Hash)<<20)
	}
	e.noise = eval.Random{}
	if e.opts.Noise > 0 {
		e.noise = eval.NewRandom(int(e.opts.Noise), e.seed)
	}

	logw.Infof(ctx, "New board: %v", e.b)
	return nil
}

// Move selects the given move, usually an opponent move.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Move %v", move)

	candidate, err := board.ParseMove(move)
	if err != nil {
		return fmt.Errorf("invalid move: %v", err)
	}

	_, _ = e.haltSearchIfActive(ctx)

	moves := e.b.Position().PseudoLegalMoves(e.b.Turn())
	for _, m := range moves {
		if !candidate.Equals(m) {
			continue
		}

		// Candidate is at least pseudo-legal.

		if !e.b.PushMove(m) {
			return fmt.Errorf("illegal move: %v", m)
		}

		logw.Infof(ctx, "Move %v: %v", m, e.b)
		return nil
	}
	return fmt.Errorf("invalid move: %v", candidate)
}

// TakeBack undoes the latest move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	m, ok := e.b.PopMove()
	if !ok {
		return fmt.Errorf("no move to take back")
	}

	logw.Infof(ctx, "Takeback %v", m)
	return nil
}

// Analyze analyzes the current position.
func (e *Engine) Analyze(ctx context.Context, opt searchctl.Options) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := opt.DepthLimit.V(); !ok {
		opt.DepthLimit = lang.Some(e.opts.Depth)
	}

	logw.Infof(ctx, "Analyze %v, opt=%v", e.b, opt)

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	if pv, ok := e.consultBook(ctx); ok {
		out := make(chan search.PV, 1)
		out <- pv
		close(out)
		return out, nil
	}

	root := search.NewEngine(e.evaluator(), e.tt, e.searchOpts)
	handle, out := e.launcher.Launch(ctx, e.b.Fork(), root, opt)
	e.active = handle
	return out, nil
}

// Halt halts the active search and returns the principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Halt")

	pv, ok := e.haltSearchIfActive(ctx)
	if !ok {
		return search.PV{}, fmt.Errorf("no active search")
	}
	return pv, nil
}

// Ponder runs a one-off, uncached and noise-free search of the given moves from the current position, used
// by the console driver to print a per-move score breakdown after a search completes.
func (e *Engine) Ponder(ctx context.Context, moves []board.Move, depth int) []search.PV {
	e.mu.Lock()
	ev := e.ev
	b := e.b.Fork()
	e.mu.Unlock()

	root := search.NewEngine(ev, search.NoTranspositionTable{}, e.searchOpts)

	ret := make([]search.PV, len(moves))
	for i, m := range moves {
		nb := b.Fork()
		nb.PushMove(m)

		pv, _ := root.Search(ctx, nb, depth-1)
		pv.Score = pv.Score.Negate()
		pv.Moves = append([]board.Move{m}, pv.Moves...)
		ret[i] = pv
	}
	return ret
}

// consultBook looks up the current position in the configured opening book. Once the book
// reports no moves for a position, it is turned off for the rest of the game, matching the
// Book interface's own documented contract.
func (e *Engine) consultBook(ctx context.Context) (search.PV, bool) {
	f := fen.Encode(e.b.Position(), e.b.Turn(), e.b.NoProgress(), e.b.FullMoves())
	moves, err := e.book.Find(ctx, f)
	if err != nil {
		logw.Errorf(ctx, "Book lookup %v failed: %v", f, err)
		return search.PV{}, false
	}
	if len(moves) == 0 {
		e.book = NoBook
		return search.PV{}, false
	}
	logw.Infof(ctx, "Book move for %v: %v", f, moves[0])
	return search.PV{Moves: []board.Move{moves[0]}, Score: eval.ZeroScore}, true
}

func (e *Engine) evaluator() eval.Evaluator {
	if e.opts.Noise > 0 {
		return eval.Randomize(e.ev, e.noise)
	}
	return e.ev
}

func (e *Engine) haltSearchIfActive(ctx context.Context) (search.PV, bool) {
	if e.active != nil {
		pv := e.active.Halt()
		logw.Infof(ctx, "Search %v halted: %v", e.b, pv)

		e.active = nil
		return pv, true
	}
	return search.PV{}, false
}
