package eval

import "github.com/corvid-chess/corvid/pkg/board"

const (
	doubledPawnPenalty  = 8  // per extra pawn sharing a file
	isolatedPawnPenalty = 10 // per pawn with no friendly pawn on an adjacent file
	centerPawnBonus     = 6  // per central square (d4/e4/d5/e5) attacked by at least one pawn
	outpostBonus        = 12 // per knight on an outpost (see IsOutpost)
)

// centerSquares are the four central squares contested from the opening.
var centerSquares = board.BitMask(board.D4) | board.BitMask(board.E4) | board.BitMask(board.D5) | board.BitMask(board.E5)

// Pawns scores pawn-structure weaknesses and strengths: doubled and isolated pawns are
// penalized, pawns attacking the center are rewarded. Symmetric in the sense that
// Pawns.Evaluate(flip(p), c.Opponent()) == Pawns.Evaluate(p, c).
type Pawns struct{}

func (Pawns) Evaluate(pos *board.Position, turn board.Color) Score {
	return pawnStructure(pos, turn) - pawnStructure(pos, turn.Opponent())
}

func pawnStructure(pos *board.Position, side board.Color) Score {
	pawns := pos.Piece(side, board.Pawn)

	var score Score
	for f := board.ZeroFile; f < board.NumFiles; f++ {
		onFile := (pawns & board.BitFile(f)).PopCount()
		if onFile > 1 {
			score -= Score(onFile-1) * doubledPawnPenalty
		}
		if onFile > 0 {
			adjacent := board.EmptyBitboard
			if f > board.FileH {
				adjacent |= board.BitFile(f - 1)
			}
			if f < board.FileA {
				adjacent |= board.BitFile(f + 1)
			}
			if (pawns & adjacent).IsEmpty() {
				score -= Score(onFile) * isolatedPawnPenalty
			}
		}
	}

	attacks := board.PawnCaptureboard(side, pawns)
	score += Score((attacks & centerSquares).PopCount()) * centerPawnBonus

	return score
}

// Outposts scores knights planted on outpost squares (see IsOutpost); other pieces on
// outposts are not scored.
type Outposts struct{}

func (Outposts) Evaluate(pos *board.Position, turn board.Color) Score {
	return outpostScore(pos, turn) - outpostScore(pos, turn.Opponent())
}

func outpostScore(pos *board.Position, side board.Color) Score {
	knights := pos.Piece(side, board.Knight)

	var score Score
	for knights != 0 {
		sq := knights.LastPopSquare()
		knights = knights.ResetLSB()
		if IsOutpost(pos, side, sq) {
			score += outpostBonus
		}
	}
	return score
}

// IsOutpost reports whether a piece of the given color on sq can never be attacked by an
// enemy pawn (no enemy pawn on an adjacent file can reach its rank or beyond) and is itself
// defended by a friendly pawn.
func IsOutpost(pos *board.Position, side board.Color, sq board.Square) bool {
	if board.PawnCaptureboard(side.Opponent(), board.BitMask(sq))&pos.Piece(side, board.Pawn) == 0 {
		return false // undefended by a pawn: not a stable outpost
	}

	f := sq.File()
	forward := board.EmptyBitboard
	for r := board.ZeroRank; r < board.NumRanks; r++ {
		s := board.NewSquare(f, r)
		if side == board.White && r > sq.Rank() {
			forward |= board.BitMask(s)
		}
		if side == board.Black && r < sq.Rank() {
			forward |= board.BitMask(s)
		}
	}
	mask := board.EmptyBitboard
	if f > board.FileH {
		mask |= board.BitFile(f - 1)
	}
	if f < board.FileA {
		mask |= board.BitFile(f + 1)
	}
	return (pos.Piece(side.Opponent(), board.Pawn) & mask & forward) == 0
}
