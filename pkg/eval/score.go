package eval

import (
	"fmt"

	"github.com/corvid-chess/corvid/pkg/board"
)

// Score is a signed position or move score in material units, positive favoring the side
// to move. Material units follow the glossary convention (pawn=16, knight=48, bishop=49,
// rook=80, queen=144) rather than centipawns. The whole range (ordinary evaluations and
// mate scores alike) is kept inside +/-2047 on purpose: the transposition table packs a
// Score into a 12-bit biased field (see transposition.go), so anything this type can
// produce must already fit there without a second clamp at the TT boundary.
type Score int32

const (
	ZeroScore Score = 0

	// MateValue is the score magnitude of a mate delivered on the current move (distance
	// zero). Scores closer to zero than MateValue-MaxMatePly are never mate scores.
	MateValue Score = 2000
	// MaxMatePly bounds the distance-to-mate a Score can encode.
	MaxMatePly = 200

	MaxScore    Score = MateValue - MaxMatePly
	MinScore    Score = -MaxScore
	InfScore    Score = MaxScore + 1
	NegInfScore Score = MinScore - 1

	// InvalidScore marks an unset alpha/beta bound (full window).
	InvalidScore Score = InfScore + 1
)

func (s Score) String() string {
	if d, mate := s.MateDistance(); mate {
		if s > 0 {
			return fmt.Sprintf("+M%v", d)
		}
		return fmt.Sprintf("-M%v", d)
	}
	return fmt.Sprintf("%.2f", float64(s)/16)
}

// IsInvalid reports whether the score is the InvalidScore sentinel used for unset bounds.
func (s Score) IsInvalid() bool {
	return s == InvalidScore
}

// Negate flips the sign for the opponent's perspective. Leaves InvalidScore untouched.
func (s Score) Negate() Score {
	if s.IsInvalid() {
		return s
	}
	return -s
}

// Less reports whether s is strictly less than o.
func (s Score) Less(o Score) bool {
	return s < o
}

// MateDistance returns the number of plies to the forced mate the score encodes and true,
// or (0, false) if the score isn't a mate score. A positive distance with s>0 means the
// side to move delivers mate; s<0 means it is mated.
func (s Score) MateDistance() (int, bool) {
	abs := s
	if abs < 0 {
		abs = -abs
	}
	if abs <= MateValue-Score(MaxMatePly) || abs > MateValue {
		return 0, false
	}
	return int(MateValue - abs), true
}

// MateIn constructs the score for delivering mate in the given number of plies.
func MateIn(ply int) Score {
	return MateValue - Score(ply)
}

// MatedIn constructs the score for being mated in the given number of plies.
func MatedIn(ply int) Score {
	return -MateIn(ply)
}

// IncrementMateDistance ages a mate score by one ply as it is propagated from a child node
// to its parent: the forced mate is one ply further away from the parent's perspective.
// Non-mate scores pass through unchanged.
func IncrementMateDistance(s Score) Score {
	switch {
	case s > MateValue-Score(MaxMatePly):
		return s - 1
	case s < -(MateValue - Score(MaxMatePly)):
		return s + 1
	default:
		return s
	}
}

// Unit returns the signed unit for the color: 1 for White and -1 for Black.
func Unit(c board.Color) Score {
	if c == board.White {
		return 1
	}
	return -1
}

// Crop crops a Score into [MinScore;MaxScore]. Mate scores lie outside that range and are
// cropped like any other score, so Crop is for evaluations only.
func Crop(s Score) Score {
	switch {
	case s > MaxScore:
		return MaxScore
	case s < MinScore:
		return MinScore
	default:
		return s
	}
}

// Max returns the largest of the given scores.
func Max(a, b Score) Score {
	if a < b {
		return b
	}
	return a
}

// Min returns the smallest of the given scores.
func Min(a, b Score) Score {
	if a < b {
		return a
	}
	return b
}
