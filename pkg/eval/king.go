package eval

import "github.com/corvid-chess/corvid/pkg/board"

const (
	shieldPawnBonus  = 8  // per pawn in front of a castled king
	castledBonus     = 12 // king has left its home square, by castling or otherwise
	exposedKingPenalty = 20 // king still on its home square, middlegame only
)

// kingHomeSquares are the starting king squares; a king found elsewhere has either
// castled or walked, both of which this term treats differently from standing pat.
var kingHomeSquares = map[board.Color]board.Square{board.White: board.E1, board.Black: board.E8}

// KingSafety rewards a sheltered king and penalizes one stranded in the center once
// heavy pieces are still on the board. The term is suppressed in the endgame, where an
// active king is an asset rather than a liability -- see eval.Options.EnableKingSafety
// and DeterminePhase.
type KingSafety struct{}

func (KingSafety) Evaluate(pos *board.Position, turn board.Color, phase Phase) Score {
	return kingSafety(pos, turn, phase) - kingSafety(pos, turn.Opponent(), phase)
}

func kingSafety(pos *board.Position, side board.Color, phase Phase) Score {
	if phase == Endgame {
		return 0
	}

	king := pos.Piece(side, board.King).LastPopSquare()

	var score Score
	if king != kingHomeSquares[side] {
		score += castledBonus

		shield := board.KingAttackboard(king) &^ board.BitRank(king.Rank())
		score += Score((shield & pos.Piece(side, board.Pawn)).PopCount()) * shieldPawnBonus
	} else if phase == Middlegame {
		score -= exposedKingPenalty
	}
	return score
}
