package search

import (
	"context"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/eval"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

const (
	nullMoveReduction = 2 // R in "null move, search at depth-1-R"
	nullMoveMinDepth  = 3
	lmrMinDepth       = 3
	lmrMinMoveIndex   = 3 // first few moves always searched at full depth
)

// negamax is the recursive principal variation search. It returns the score from the
// perspective of the side to move at this node, and (for the first child of the PV) the
// remaining principal variation below it.
func (m *run) negamax(ctx context.Context, depth int, alpha, beta eval.Score) (eval.Score, []board.Move) {
	if contextx.IsCancelled(ctx) {
		return eval.ZeroScore, nil
	}
	if m.b.Result().Outcome == board.Draw {
		return eval.ZeroScore, nil
	}

	isPV := beta-alpha > 1
	ply := m.b.Ply() - m.rootPly

	var hashMove board.Move
	if move, ttDepth, vt, value, ok := m.e.TT.Read(m.b.Hash()); ok {
		hashMove = move
		if !isPV && ttDepth >= depth {
			switch vt {
			case ExactValue:
				return value, nil
			case LowerBound:
				if value >= beta {
					return value, nil
				}
			case UpperBound:
				if value <= alpha {
					return value, nil
				}
			}
		}
	}

	if depth <= 0 {
		score := m.quiescence(ctx, alpha, beta)
		return score, nil
	}

	m.nodes++

	inCheck := m.b.Position().IsChecked(m.b.Turn())
	if inCheck {
		depth++ // check extension: never let a forced reply run out of depth
	}

	// Null-move pruning: if passing the turn entirely still doesn't let the opponent catch
	// up to beta, this position is so good a real move will do at least as well. Skipped in
	// check (no legal null move exists) and near the endgame, where zugzwang makes the
	// "a free pass can't help the opponent" assumption unsound.
	if m.e.Opt.NullMove && !isPV && !inCheck && depth >= nullMoveMinDepth && eval.DeterminePhase(m.b.Position()) != eval.Endgame {
		m.b.PushNullMove()
		score, _ := m.negamax(ctx, depth-1-nullMoveReduction, beta.Negate(), beta.Negate()+1)
		m.b.PopNullMove()

		score = eval.IncrementMateDistance(score).Negate()
		if score >= beta {
			return beta, nil
		}
	}

	k1, k2 := m.e.killers.Get(ply)
	mo := NewMoveOrder(m.b.Position(), m.b.Turn(), hashMove, k1, k2, m.e.Opt.SEE)

	hasLegalMove := false
	vt := UpperBound
	var best board.Move
	var pv []board.Move

	for i := 0; ; {
		move, ok := mo.Next()
		if !ok {
			break
		}
		if !m.b.PushMove(move) {
			continue
		}
		hasLegalMove = true

		gaveCheck := m.b.Position().IsChecked(m.b.Turn())
		reduce := 0
		if m.e.Opt.LMR && i >= lmrMinMoveIndex && depth >= lmrMinDepth && !move.IsCapture() && !move.IsPromotion() && !inCheck && !gaveCheck {
			reduce = 1
		}

		var score eval.Score
		var rem []board.Move
		switch {
		case i == 0:
			score, rem = m.negamax(ctx, depth-1, beta.Negate(), alpha.Negate())
		default:
			score, rem = m.negamax(ctx, depth-1-reduce, alpha.Negate()-1, alpha.Negate())
			score = eval.IncrementMateDistance(score).Negate()
			if score > alpha && (reduce > 0 || score < beta) {
				// Reduced or null-window search looked promising: re-verify at full depth
				// and/or full window before trusting it.
				score, rem = m.negamax(ctx, depth-1, beta.Negate(), alpha.Negate())
			}
		}
		if i == 0 {
			score = eval.IncrementMateDistance(score).Negate()
		}

		m.b.PopMove()
		i++

		if score > alpha {
			alpha = score
			best = move
			pv = append([]board.Move{move}, rem...)
			vt = ExactValue
		}
		if alpha >= beta {
			m.e.killers.Record(ply, move)
			vt = LowerBound
			break
		}
	}

	if !hasLegalMove {
		if result := m.b.AdjudicateNoLegalMoves(); result.Reason == board.Checkmate {
			return eval.MatedIn(0), nil
		}
		return eval.ZeroScore, nil
	}

	m.e.TT.Write(m.b.Hash(), best, depth, vt, alpha)
	return alpha, pv
}
