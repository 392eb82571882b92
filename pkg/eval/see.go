package eval

import (
	"fmt"
	"sort"

	"github.com/corvid-chess/corvid/pkg/board"
)

// Exchange computes the static-exchange value of a capture sequence on sq, from the
// perspective of side: the net material side stands to gain (or lose, if negative) by
// initiating a full swap-off on that square. Used by move ordering to order captures and
// by quiescence search to prune hopeless ones without having to actually search them.
func Exchange(pos *board.Position, pins Pins, side board.Color, sq board.Square) Score {
	cur, piece, ok := pos.Square(sq)
	if !ok || piece == board.King {
		return 0 // empty square or King: no exchange value
	}

	all := FindAttackers(pos, pins, sq)
	defenders := findSide(all, cur)
	attackers := findSide(all, cur.Opponent())

	var residue Score // gain of exchange from cur.Opponent's point of view

	defender := NominalValue(piece)
	for len(attackers) > 0 {
		attacker := attackers[0]
		attackers = attackers[1:]

		// The opposing side will attack, if undefended or if it's not a net loss.

		willAttack := len(defenders) == 0 || val(attacker) <= defender
		willAttack = willAttack || (len(attackers) > 0 && val(attacker)+val(attackers[0]) <= defender+val(defenders[0]))
		if !willAttack {
			break
		}

		residue += defender
		defender = val(attacker)

		// Swap roles.

		attackers, defenders = defenders, attackers
		residue = -residue
		cur = cur.Opponent()
	}

	if cur == side {
		return -residue
	}
	return residue
}

func findSide(attackers []*Attacker, turn board.Color) []*Attacker {
	// (1) Project side.

	var ret []*Attacker
	for _, att := range attackers {
		if att.Piece.Color == turn {
			ret = append(ret, att)
		}
	}

	// (2) Flatten into attack list in value order, while respecting the Behind relation:
	// an x-ray attacker cannot take part until the piece in front of it has moved.

	sort.Slice(ret, byValue(ret))
	for i := 0; i < len(ret); i++ {
		att := ret[i]
		if att.Behind == nil {
			continue
		}

		ret = append(ret, att.Behind)
		sort.Slice(ret[i+1:], byValue(ret[i+1:]))
	}
	return ret
}

func byValue(list []*Attacker) func(i, j int) bool {
	return func(i, j int) bool {
		return val(list[i]) < val(list[j])
	}
}

func val(att *Attacker) Score {
	return NominalValue(att.Piece.Piece)
}

// Attacker represents a non-pinned attacker of some square. It may have another attacker
// stacked behind it on the same ray: if Rook -> Queen -> target, the Rook is "behind" the
// Queen and can only join the exchange once the Queen has moved off the ray.
type Attacker struct {
	Piece  board.Placement
	Behind *Attacker
}

func (a *Attacker) String() string {
	return fmt.Sprintf("%v|%v", a.Piece, a.Behind)
}

// NumAttackers returns the number of attackers (including x-ray attackers) for the side.
func NumAttackers(attackers []*Attacker, turn board.Color) int {
	count := 0
	for _, att := range attackers {
		if att.Piece.Color != turn {
			continue
		}
		for att != nil {
			count++
			att = att.Behind
		}
	}
	return count
}

// FindAttackers returns all direct and indirect (x-ray) attackers of a given square.
func FindAttackers(pos *board.Position, pins Pins, sq board.Square) []*Attacker {
	occ := pos.Occupied()

	var ret []*Attacker
	for _, piece := range board.KingQueenRookKnightBishop {
		attackboard := board.Attackboard(occ, sq, piece)

		for side := board.ZeroColor; side < board.NumColors; side++ {
			bb := attackboard & pos.Piece(side, piece)
			for bb != 0 {
				from := bb.LastPopSquare()
				bb ^= board.BitMask(from)

				stack, ok := addAttackerStack(pos, occ, pins, side, piece, from, sq)
				if ok {
					ret = append(ret, stack)
				}
			}
		}
	}

	for side := board.ZeroColor; side < board.NumColors; side++ {
		bb := board.PawnCaptureboard(side.Opponent(), board.BitMask(sq)) & pos.Piece(side, board.Pawn)
		for bb != 0 {
			from := bb.LastPopSquare()
			bb ^= board.BitMask(from)

			stack, ok := addAttackerStack(pos, occ, pins, side, board.Pawn, from, sq)
			if ok {
				ret = append(ret, stack)
			}
		}
	}

	return ret
}

// addAttackerStack builds the Attacker chain for a piece on `from` attacking `target`,
// given the occupancy occ the attacker is found under. It recurses onto whatever sliding
// piece is exposed once `from` is removed from occupancy -- the x-ray attacker behind it,
// if any and if it is of the right kind to continue the ray.
func addAttackerStack(pos *board.Position, occ board.Bitboard, pins Pins, side board.Color, piece board.Piece, from, target board.Square) (*Attacker, bool) {
	if list := pins[from]; len(list) > 1 || (len(list) == 1 && list[0] != target) {
		return nil, false // skip: attacker is pinned off this ray
	}

	ret := &Attacker{
		Piece: board.Placement{
			Piece:  piece,
			Color:  side,
			Square: from,
		},
	}
	if piece == board.King {
		return ret, true // nobody can be behind the King in an exchange
	}

	next := occ &^ board.BitMask(from)

	bb := board.EmptyBitboard
	if board.IsSameRankOrFile(from, target) {
		attackboard := board.RookAttackboard(next, target) &^ board.RookAttackboard(occ, target)
		bb = attackboard & (pos.Piece(side, board.Queen) | pos.Piece(side, board.Rook))
	} else if board.IsSameDiagonal(from, target) {
		attackboard := board.BishopAttackboard(next, target) &^ board.BishopAttackboard(occ, target)
		bb = attackboard & (pos.Piece(side, board.Queen) | pos.Piece(side, board.Bishop))
	}

	if bb != 0 {
		behindFrom := bb.LastPopSquare()
		_, behindPiece, _ := pos.Square(behindFrom)

		ret.Behind, _ = addAttackerStack(pos, next, pins, side, behindPiece, behindFrom, target)
	}

	return ret, true
}

// Pins maps a pinned square to the squares of opposing pieces pinning it against a King or
// Queen. A pinned piece may still move along the pin line, so len==1 lists its one legal
// capture target; len>1 means it cannot move at all without exposing two different pins.
type Pins map[board.Square][]board.Square

// FindKingQueenPins returns, for every pinned piece on the board (either color), the
// squares of the pieces pinning it against a King or Queen.
func FindKingQueenPins(pos *board.Position) Pins {
	var pins []Pin
	for side := board.ZeroColor; side < board.NumColors; side++ {
		for _, piece := range board.KingQueen {
			pins = append(pins, FindPins(pos, side, piece)...)
		}
	}

	ret := map[board.Square][]board.Square{}
	for _, pin := range pins {
		ret[pin.Pinned] = append(ret[pin.Pinned], pin.Attacker)
	}
	return ret
}
