package eval

import "github.com/corvid-chess/corvid/pkg/board"

// mobilityWeight is the bonus per reachable square, in material units. Kept small relative
// to a pawn (16 units) since mobility is a tie-breaker, not a piece-value substitute.
const mobilityWeight = 1

// Mobility scores the difference in officer mobility (reachable squares, including squares
// occupied by the player's own pieces -- defended squares still count as controlled).
// Pawns and kings are excluded: pawn mobility is dominated by structure (see Pawns), and
// king mobility is dominated by safety (see KingSafety).
type Mobility struct{}

func (Mobility) Evaluate(pos *board.Position, turn board.Color) Score {
	occ := pos.Occupied()
	return Score(mobilityWeight) * Score(countMobility(pos, occ, turn)-countMobility(pos, occ, turn.Opponent()))
}

func countMobility(pos *board.Position, occ board.Bitboard, side board.Color) int {
	count := 0
	for _, piece := range []board.Piece{board.Knight, board.Bishop, board.Rook, board.Queen} {
		bb := pos.Piece(side, piece)
		for bb != 0 {
			sq := bb.LastPopSquare()
			bb = bb.ResetLSB()
			count += board.Attackboard(occ, sq, piece).PopCount()
		}
	}
	return count
}
