package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/board/fen"
)

// perft counts the leaf nodes of the full game tree at the given depth: the standard move
// generator correctness check, https://www.chessprogramming.org/Perft_Results.
func perft(pos *board.Position, turn board.Color, depth int) int64 {
	if depth == 0 {
		return 1
	}

	var nodes int64
	for _, m := range pos.PseudoLegalMoves(turn) {
		if next, ok := pos.Move(m); ok {
			nodes += perft(next, turn.Opponent(), depth-1)
		}
	}
	return nodes
}

func TestPerftInitialPosition(t *testing.T) {
	pos, turn, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	want := []int64{1, 20, 400, 8902, 197281, 4865609}
	for depth, n := range want {
		assert.Equal(t, n, perft(pos, turn, depth), "perft(%v)", depth)
	}
}

func TestPerftKiwipete(t *testing.T) {
	const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	pos, turn, _, _, err := fen.Decode(kiwipete)
	require.NoError(t, err)

	assert.Equal(t, int64(48), perft(pos, turn, 1))
	assert.Equal(t, int64(4085603), perft(pos, turn, 4))
}
