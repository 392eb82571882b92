package search

import (
	"context"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/eval"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

// deltaMargin is added to the stand-pat score before delta-pruning a capture: a capture
// that still can't reach alpha even with this much slack, plus the captured piece's value,
// isn't worth examining. Set a little above a knight so it doesn't prune genuine
// combinations too eagerly.
const deltaMargin = eval.Score(60)

// quiescence extends search along capturing/checking lines past the nominal horizon, so the
// static evaluation at a leaf is never taken on a position where an obvious recapture is
// hanging. Returns the score from the perspective of the side to move.
func (m *run) quiescence(ctx context.Context, alpha, beta eval.Score) eval.Score {
	if contextx.IsCancelled(ctx) {
		return eval.ZeroScore
	}
	if m.b.Result().Outcome == board.Draw {
		return eval.ZeroScore
	}

	m.nodes++

	standPat := m.e.Eval.Evaluate(ctx, m.b)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	inCheck := m.b.Position().IsChecked(m.b.Turn())

	var pins eval.Pins
	if m.e.Opt.SEE {
		pins = eval.FindKingQueenPins(m.b.Position())
	}

	hasLegalMove := false
	moves := m.b.Position().PseudoLegalMoves(m.b.Turn())
	for _, move := range moves {
		if !inCheck && !move.IsCapture() && !move.IsPromotion() {
			continue // quiet moves don't need settling unless we're in check
		}

		if !inCheck && move.IsCapture() {
			gain := eval.NominalValueGain(move)
			if m.e.Opt.SEE {
				gain = eval.Exchange(m.b.Position(), pins, m.b.Turn(), move.To)
			}
			if standPat+gain+deltaMargin < alpha {
				continue // delta pruning: even optimistic gain can't reach alpha
			}
		}

		if !m.b.PushMove(move) {
			continue
		}
		hasLegalMove = true

		score := m.quiescence(ctx, beta.Negate(), alpha.Negate())
		score = eval.IncrementMateDistance(score).Negate()

		m.b.PopMove()

		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			return beta
		}
	}

	if inCheck && !hasLegalMove {
		if result := m.b.AdjudicateNoLegalMoves(); result.Reason == board.Checkmate {
			return eval.MatedIn(0)
		}
		return eval.ZeroScore
	}

	return alpha
}
