package eval

import (
	"context"
	"math/rand"

	"github.com/corvid-chess/corvid/pkg/board"
)

// Random adds a small amount of noise to an Evaluator's scores, in the half-open range
// [-limit/2; limit-limit/2) material units (integer division). A zero-value Random (or limit<=0) adds nothing; it
// exists to make engines play varied games against themselves without weakening play enough
// to matter (see Randomize).
type Random struct {
	rand  *rand.Rand
	limit int
}

// NewRandom returns a Random noise source bounded by limit material units, seeded
// deterministically so a given seed always reproduces the same game.
func NewRandom(limit int, seed int64) Random {
	return Random{
		limit: limit,
		rand:  rand.New(rand.NewSource(seed)),
	}
}

func (n Random) next() Score {
	if n.limit <= 0 {
		return 0
	}
	return Score(n.rand.Intn(n.limit) - n.limit/2)
}

// noisy wraps an Evaluator with additive Random noise.
type noisy struct {
	eval Evaluator
	n    Random
}

// Randomize wraps eval so that every evaluation is perturbed by the given Random noise
// source. Used at the top of the engine's evaluator stack so search itself stays
// deterministic while games vary run to run.
func Randomize(eval Evaluator, n Random) Evaluator {
	return noisy{eval: eval, n: n}
}

func (r noisy) Evaluate(ctx context.Context, b *board.Board) Score {
	return r.eval.Evaluate(ctx, b) + r.n.next()
}
