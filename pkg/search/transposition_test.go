package search_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/eval"
	"github.com/corvid-chess/corvid/pkg/search"
)

func TestTranspositionTableRoundTrip(t *testing.T) {
	tt := search.NewTranspositionTable(context.Background(), 1<<16)

	hash := board.ZobristHash(0xdeadbeefcafef00d)
	move := board.Move{From: board.E2, To: board.E4, Piece: board.Pawn, Type: board.Jump}

	tt.Write(hash, move, 6, search.ExactValue, eval.Score(123))

	got, depth, vt, value, ok := tt.Read(hash)
	require.True(t, ok)
	assert.True(t, move.Equals(got))
	assert.Equal(t, 6, depth)
	assert.Equal(t, search.ExactValue, vt)
	assert.Equal(t, eval.Score(123), value)
}

func TestTranspositionTableRoundTripNegativeAndMateScores(t *testing.T) {
	tt := search.NewTranspositionTable(context.Background(), 1<<16)

	cases := []eval.Score{eval.MinScore, eval.MaxScore, 0, -1, eval.MateIn(3), eval.MatedIn(7)}
	for i, score := range cases {
		hash := board.ZobristHash(uint64(i+1) << 16)
		tt.Write(hash, board.Move{}, 1, search.ExactValue, score)

		_, _, _, got, ok := tt.Read(hash)
		require.True(t, ok)
		assert.Equal(t, score, got)
	}
}

func TestTranspositionTableMissOnUnknownHash(t *testing.T) {
	tt := search.NewTranspositionTable(context.Background(), 1<<16)

	_, _, _, _, ok := tt.Read(board.ZobristHash(42))
	assert.False(t, ok)
}

func TestTranspositionTablePrefersDeeperInMain(t *testing.T) {
	tt := search.NewTranspositionTable(context.Background(), 1<<16)
	hash := board.ZobristHash(7)

	tt.Write(hash, board.Move{}, 8, search.ExactValue, eval.Score(50))
	_, depth, _, value, ok := tt.Read(hash)
	require.True(t, ok)
	assert.Equal(t, 8, depth)
	assert.Equal(t, eval.Score(50), value)

	// A shallower write for the same key must not evict the deeper main-half entry.
	tt.Write(hash, board.Move{}, 1, search.ExactValue, eval.Score(-5))
	_, depth, _, value, ok = tt.Read(hash)
	require.True(t, ok)
	assert.Equal(t, 8, depth)
	assert.Equal(t, eval.Score(50), value)
}

func TestNoTranspositionTableAlwaysMisses(t *testing.T) {
	var tt search.NoTranspositionTable
	tt.Write(board.ZobristHash(1), board.Move{}, 5, search.ExactValue, eval.Score(10))

	_, _, _, _, ok := tt.Read(board.ZobristHash(1))
	assert.False(t, ok)
	assert.Equal(t, uint64(0), tt.Size())
	assert.Equal(t, float64(0), tt.Used())
}
