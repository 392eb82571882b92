package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/board/fen"
	"github.com/corvid-chess/corvid/pkg/search"
)

func TestMoveOrderIsTotalAndDeduplicated(t *testing.T) {
	pos, turn, _, _, err := fen.Decode("r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4")
	require.NoError(t, err)

	legal := pos.PseudoLegalMoves(turn)

	mo := search.NewMoveOrder(pos, turn, board.Move{}, board.Move{}, board.Move{}, true)

	seen := map[board.Move]bool{}
	var count int
	for {
		m, ok := mo.Next()
		if !ok {
			break
		}
		assert.False(t, seen[m], "move %v returned more than once", m)
		seen[m] = true
		count++
	}

	assert.Equal(t, len(legal), count, "FSM must hand out every pseudo-legal move exactly once")
	for _, m := range legal {
		assert.True(t, seen[m], "move %v never offered by MoveOrder", m)
	}
}

func TestMoveOrderHashMoveIsFirst(t *testing.T) {
	pos, turn, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	legal := pos.PseudoLegalMoves(turn)
	require.NotEmpty(t, legal)
	hash := legal[len(legal)-1] // deliberately not whatever ordering would naturally surface first

	mo := search.NewMoveOrder(pos, turn, hash, board.Move{}, board.Move{}, true)
	first, ok := mo.Next()
	require.True(t, ok)
	assert.Equal(t, hash, first)
}

func TestMoveOrderKillerOffersOnlyIfPending(t *testing.T) {
	pos, turn, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	// A killer move from a completely unrelated position (Black's back rank) can never be
	// pending here and must not be fabricated.
	phantom := board.Move{From: board.E8, To: board.E7, Piece: board.King}

	mo := search.NewMoveOrder(pos, turn, board.Move{}, phantom, board.Move{}, true)
	for {
		m, ok := mo.Next()
		if !ok {
			break
		}
		assert.NotEqual(t, phantom, m)
	}
}
