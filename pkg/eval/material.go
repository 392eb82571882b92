package eval

import "github.com/corvid-chess/corvid/pkg/board"

// NominalValue is the material value of a piece in material units. Pawn is the base
// unit; the other values are not simple multiples of it (bishop edges out knight, and
// none of them are round numbers) which is deliberate: it breaks ties that would
// otherwise make exchanges of e.g. two knights for a rook and pawn look perfectly equal.
func NominalValue(p board.Piece) Score {
	switch p {
	case board.Pawn:
		return 16
	case board.Knight:
		return 48
	case board.Bishop:
		return 49
	case board.Rook:
		return 80
	case board.Queen:
		return 144
	case board.King:
		return MaxScore // never traded; only used to short-circuit SEE/ordering comparisons
	default:
		return 0
	}
}

// NominalValueGain is the nominal material gain for a move, used by MVV-LVA ordering and
// quiescence delta pruning.
func NominalValueGain(m board.Move) Score {
	switch m.Type {
	case board.CapturePromotion:
		return NominalValue(m.Capture) + NominalValue(m.Promotion) - NominalValue(board.Pawn)
	case board.Promotion:
		return NominalValue(m.Promotion) - NominalValue(board.Pawn)
	case board.Capture:
		return NominalValue(m.Capture)
	case board.EnPassant:
		return NominalValue(board.Pawn)
	default:
		return 0
	}
}

// Material is the material balance for the side to move.
type Material struct{}

func (Material) Evaluate(pos *board.Position, turn board.Color) Score {
	var score Score
	for p := board.ZeroPiece; p < board.NumPieces; p++ {
		score += Score(pos.Piece(turn, p).PopCount()-pos.Piece(turn.Opponent(), p).PopCount()) * NominalValue(p)
	}
	return score
}

// Phase classifies the game stage from remaining non-pawn material. KingSafety scores
// nothing in the Endgame and applies its exposed-king penalty only in the Middlegame;
// search skips null-move pruning in the Endgame.
type Phase int

const (
	Opening Phase = iota
	Middlegame
	Endgame
)

// endgameThreshold and middlegameThreshold bound the combined non-pawn, non-king material
// (in nominal units, both sides): at or below endgameThreshold (two rooks and two bishops)
// a position counts as an Endgame; at or below middlegameThreshold (all non-pawn material
// of the starting position) it counts as Middlegame; only more than that, which takes
// promoted material, counts as Opening.
var (
	endgameThreshold     = 2 * (NominalValue(board.Rook) + NominalValue(board.Bishop))
	middlegameThreshold  = 2 * (2*NominalValue(board.Rook) + 2*NominalValue(board.Bishop) + 2*NominalValue(board.Knight) + NominalValue(board.Queen))
)

// DeterminePhase returns the game phase for the position, irrespective of side to move.
func DeterminePhase(pos *board.Position) Phase {
	var nonpawn Score
	for _, p := range []board.Piece{board.Knight, board.Bishop, board.Rook, board.Queen} {
		nonpawn += Score(pos.Piece(board.White, p).PopCount()+pos.Piece(board.Black, p).PopCount()) * NominalValue(p)
	}
	switch {
	case nonpawn <= endgameThreshold:
		return Endgame
	case nonpawn <= middlegameThreshold:
		return Middlegame
	default:
		return Opening
	}
}
