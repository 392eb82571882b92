package pgnbook_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/board/fen"
	"github.com/corvid-chess/corvid/pkg/board/pgnbook"
)

const doc = `# comment lines are ignored

` + fen.Initial + ` e2e4 e7e5 g1f3
` + fen.Initial + ` d2d4 d7d5
`

func TestFindReturnsRecordedOpeningMoves(t *testing.T) {
	book, err := pgnbook.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	moves, err := book.Find(context.Background(), fen.Initial)
	require.NoError(t, err)
	require.Len(t, moves, 2)

	var got []string
	for _, m := range moves {
		got = append(got, m.String())
	}
	assert.ElementsMatch(t, []string{"e2e4", "d2d4"}, got)
}

func TestFindFollowsLineBeyondFirstMove(t *testing.T) {
	book, err := pgnbook.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	pos, turn, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)
	e4, ok := pos.Canonicalize(turn, board.Move{From: board.E2, To: board.E4})
	require.True(t, ok)
	next, ok := pos.Move(e4)
	require.True(t, ok)

	after := fen.Encode(next, turn.Opponent(), 0, 1)
	moves, err := book.Find(context.Background(), after)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, "e7e5", moves[0].String())
}

func TestFindMissReturnsNoMoves(t *testing.T) {
	book, err := pgnbook.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	moves, err := book.Find(context.Background(), "8/8/8/8/8/8/8/8 w - - 0 1")
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestParseRejectsUnknownMove(t *testing.T) {
	_, err := pgnbook.Parse(strings.NewReader(fen.Initial + " e2e5\n"))
	assert.Error(t, err)
}

func TestParseSkipsBlankAndCommentLines(t *testing.T) {
	book, err := pgnbook.Parse(strings.NewReader("\n# nothing here\n\n"))
	require.NoError(t, err)
	moves, err := book.Find(context.Background(), fen.Initial)
	require.NoError(t, err)
	assert.Empty(t, moves)
}
