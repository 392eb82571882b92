// Package eval contains position evaluation logic and utilities.
package eval

import (
	"context"

	"github.com/corvid-chess/corvid/pkg/board"
)

// Evaluator is a static position evaluator. The returned Score is from the perspective of
// the board's side to move: positive favors the mover.
type Evaluator interface {
	Evaluate(ctx context.Context, b *board.Board) Score
}

// Options toggles individual evaluation terms. Some terms (notably king safety) are
// speculative refinements whose net effect on playing strength is easy to get backwards
// without a tuning session this module doesn't have room for, so they default on but stay
// switchable rather than baked in -- see SPEC_FULL.md section 10.
type Options struct {
	EnableKingSafety bool
	EnableOutposts   bool
}

// DefaultOptions enables every term.
func DefaultOptions() Options {
	return Options{EnableKingSafety: true, EnableOutposts: true}
}

// Heuristic combines material, mobility, pawn structure, king safety and outposts into a
// single phase-aware evaluation. Each term is itself usable standalone (Material, Mobility,
// Pawns, Outposts, KingSafety), e.g. for testing or for a cheaper quiescence-only evaluator.
type Heuristic struct {
	Options Options
}

func (h Heuristic) Evaluate(ctx context.Context, b *board.Board) Score {
	return EvaluatePosition(b.Position(), b.Turn(), h.Options)
}

// EvaluatePosition is the Board-independent core of Heuristic, split out so tests can check
// the flip-symmetry invariant directly against a board.Position without a Board (history,
// repetition counters) around it.
func EvaluatePosition(pos *board.Position, turn board.Color, opt Options) Score {
	phase := DeterminePhase(pos)

	score := Material{}.Evaluate(pos, turn)
	score += Mobility{}.Evaluate(pos, turn)
	score += Pawns{}.Evaluate(pos, turn)
	if opt.EnableKingSafety {
		score += KingSafety{}.Evaluate(pos, turn, phase)
	}
	if opt.EnableOutposts {
		score += Outposts{}.Evaluate(pos, turn)
	}
	return Crop(score)
}

// QuickMaterial is a cheap, material-only Evaluator. Search uses whatever Evaluator its
// Engine holds, in quiescence as well; nothing in this module selects QuickMaterial.
type QuickMaterial struct{}

func (QuickMaterial) Evaluate(ctx context.Context, b *board.Board) Score {
	return Crop(Material{}.Evaluate(b.Position(), b.Turn()))
}
