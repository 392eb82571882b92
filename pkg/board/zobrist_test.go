package board_test

import (
	"testing"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestZobristIncremental checks that the incremental hash update produced by ZobristTable.Move
// matches a from-scratch hash of the resulting position, for a handful of move kinds: double
// push (for each side), capture, en passant, castling and promotion.
func TestZobristIncremental(t *testing.T) {
	tests := []struct {
		fen  string
		move board.Move
	}{
		{fen.Initial, board.Move{Type: board.Jump, From: board.E2, To: board.E4, Piece: board.Pawn}},
		{"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
			board.Move{Type: board.Jump, From: board.D7, To: board.D5, Piece: board.Pawn}},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
			board.Move{Type: board.KingSideCastle, From: board.E1, To: board.G1, Piece: board.King}},
		{"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1",
			board.Move{Type: board.EnPassant, From: board.E5, To: board.D6, Piece: board.Pawn, Capture: board.Pawn}},
		{"4k3/3P4/8/8/8/8/8/4K3 w - - 0 1",
			board.Move{Type: board.Promotion, From: board.D7, To: board.D8, Piece: board.Pawn, Promotion: board.Queen}},
		{"4k3/4p3/3R4/8/8/8/8/4K3 b - - 0 1",
			board.Move{Type: board.Capture, From: board.E7, To: board.D6, Piece: board.Pawn, Capture: board.Rook}},
	}

	zt := board.NewZobristTable(42)

	for _, tt := range tests {
		pos, turn, _, _, err := fen.Decode(tt.fen)
		require.NoError(t, err)

		before := zt.Hash(pos, turn)
		incremental := zt.Move(before, pos, tt.move)

		next, ok := pos.Move(tt.move)
		require.True(t, ok)

		fromScratch := zt.Hash(next, turn.Opponent())
		assert.Equal(t, fromScratch, incremental, "fen=%v move=%v", tt.fen, tt.move)
	}
}

func TestZobristDeterministic(t *testing.T) {
	a := board.NewZobristTable(7)
	b := board.NewZobristTable(7)

	pos, turn, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	assert.Equal(t, a.Hash(pos, turn), b.Hash(pos, turn))
}
