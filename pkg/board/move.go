package board

import (
	"fmt"
	"strings"
)

// MoveType indicates the type of move. The no-progress counter is reset with any non-Normal
// pawn move, capture, castle or promotion.
type MoveType uint8

const (
	Normal    MoveType = iota
	Push               // Pawn single-step move
	Jump               // Pawn 2-square move
	EnPassant          // Implicitly a pawn capture
	QueenSideCastle
	KingSideCastle
	Capture
	Promotion
	CapturePromotion
)

// Move represents a not-necessarily-legal move along with contextual metadata sufficient to
// make and unmake it without consulting the position it was generated from. 32 bits packed.
type Move struct {
	Type      MoveType
	From, To  Square
	Piece     Piece // piece being moved
	Promotion Piece // desired piece for promotion, if any
	Capture   Piece // captured piece, if any

	Score int32 // move ordering score, filled in by search; not part of move identity
}

// ParseMove parses a move in pure algebraic coordinate notation, such as "a2a4" or "a7a8q".
// The parsed move does not contain contextual information like castling, captures or en
// passant; callers should canonicalize it against a Position before using it to make a move.
func ParseMove(str string) (Move, error) {
	runes := []rune(str)

	if len(runes) < 4 || len(runes) > 5 {
		return Move{}, fmt.Errorf("invalid move: '%v'", str)
	}

	from, err := ParseSquare(runes[0], runes[1])
	if err != nil {
		return Move{}, fmt.Errorf("invalid from: '%v': %v", str, err)
	}
	to, err := ParseSquare(runes[2], runes[3])
	if err != nil {
		return Move{}, fmt.Errorf("invalid to: '%v': %v", str, err)
	}

	if len(runes) == 5 {
		promo, ok := ParsePiece(runes[4])
		if !ok || promo == Pawn || promo == King {
			return Move{}, fmt.Errorf("invalid promotion: '%v'", str)
		}
		return Move{From: from, To: to, Promotion: promo}, nil
	}

	return Move{From: from, To: to}, nil
}

// Equals compares the squares and promotion piece only: the fields a UCI/xboard-style move
// string can express. Use this to match a parsed user move against a legal move list.
func (m Move) Equals(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Promotion == o.Promotion
}

func (m Move) String() string {
	if m.Promotion.IsValid() {
		return fmt.Sprintf("%v%v%v", m.From, m.To, m.Promotion)
	}
	return fmt.Sprintf("%v%v", m.From, m.To)
}

// PrintMoves formats a sequence of moves for display, such as a principal variation or an
// opening line, as "from-to[promotion] from-to[promotion] ...".
func PrintMoves(moves []Move) string {
	s := make([]string, len(moves))
	for i, m := range moves {
		if m.Promotion.IsValid() {
			s[i] = fmt.Sprintf("%v-%v%v", m.From, m.To, m.Promotion)
		} else {
			s[i] = fmt.Sprintf("%v-%v", m.From, m.To)
		}
	}
	return strings.Join(s, " ")
}

// IsCapture returns true iff the move removes an enemy piece from the board.
func (m Move) IsCapture() bool {
	return m.Type == Capture || m.Type == CapturePromotion || m.Type == EnPassant
}

// IsPromotion returns true iff the move promotes a pawn.
func (m Move) IsPromotion() bool {
	return m.Type == Promotion || m.Type == CapturePromotion
}

// EnPassantCapture returns the square of the pawn captured by an en passant move: the same
// file as To, the same rank as From. Only meaningful when m.Type == EnPassant.
func (m Move) EnPassantCapture() (Square, bool) {
	if m.Type != EnPassant {
		return ZeroSquare, false
	}
	return NewSquare(m.To.File(), m.From.Rank()), true
}

// EnPassantTarget returns the square a Jump move passes over, i.e., the square that becomes
// capturable en passant on the next move. Only meaningful when m.Type == Jump.
func (m Move) EnPassantTarget() (Square, bool) {
	if m.Type != Jump {
		return ZeroSquare, false
	}
	r := (m.From.Rank() + m.To.Rank()) / 2
	return NewSquare(m.From.File(), r), true
}

// CastlingRookMove returns the rook's from/to squares for a castling move.
func (m Move) CastlingRookMove() (from, to Square, ok bool) {
	switch m.Type {
	case KingSideCastle:
		switch m.From {
		case E1:
			return H1, F1, true
		case E8:
			return H8, F8, true
		}
	case QueenSideCastle:
		switch m.From {
		case E1:
			return A1, D1, true
		case E8:
			return A8, D8, true
		}
	}
	return ZeroSquare, ZeroSquare, false
}

// CastlingRightsLost returns the castling rights forfeited by making this move: the mover's
// own rights (king or rook leaving its home square) union the rights lost by a rook being
// captured on its home square.
func (m Move) CastlingRightsLost() Castling {
	lost := RightsLostBySquare(m.From)
	if m.IsCapture() {
		lost |= RightsLostBySquare(m.To)
	}
	return lost
}

// Pack encodes the move into a 21-bit identity: 6 bits From, 6 bits To, 3 bits Promotion,
// 3 bits Capture, 3 bits Type. Score is not part of the packed identity.
func (m Move) Pack() uint32 {
	return uint32(m.From) | uint32(m.To)<<6 | uint32(m.Promotion)<<12 | uint32(m.Capture)<<15 | uint32(m.Type)<<18
}

// UnpackMove decodes a move identity packed by Move.Pack. The Piece field is not recoverable
// from the packed form and is left zero; callers that need it should re-derive it from the
// position the move was generated against.
func UnpackMove(v uint32) Move {
	return Move{
		From:      Square(v & 0x3f),
		To:        Square((v >> 6) & 0x3f),
		Promotion: Piece((v >> 12) & 0x7),
		Capture:   Piece((v >> 15) & 0x7),
		Type:      MoveType((v >> 18) & 0x7),
	}
}
