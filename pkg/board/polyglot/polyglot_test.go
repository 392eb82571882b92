package polyglot_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/board/fen"
	"github.com/corvid-chess/corvid/pkg/board/polyglot"
)

func key(t *testing.T, f string) uint64 {
	t.Helper()
	pos, turn, _, _, err := fen.Decode(f)
	require.NoError(t, err)
	return polyglot.Key(pos, turn)
}

func TestKeyIsDeterministic(t *testing.T) {
	assert.Equal(t, key(t, fen.Initial), key(t, fen.Initial))
}

func TestKeyDependsOnSideToMove(t *testing.T) {
	white := key(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	black := key(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1")
	assert.NotEqual(t, white, black)
}

func TestKeyDependsOnCastlingRights(t *testing.T) {
	full := key(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	noCastle := key(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1")
	assert.NotEqual(t, full, noCastle)
}

func TestKeyDependsOnEnPassantOnlyWhenCapturable(t *testing.T) {
	// White just played e2-e4; no black pawn can capture en passant, so the ep file must not
	// affect the key (PolyGlot's own rule -- a book built without this check would miss every
	// real-world transposition into an e.p.-eligible position).
	withEP := key(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	withoutEP := key(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	assert.Equal(t, withEP, withoutEP)
}

func TestKeyDependsOnEnPassantWhenCapturable(t *testing.T) {
	withEP := key(t, "rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3")
	withoutEP := key(t, "rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq - 0 3")
	assert.NotEqual(t, withEP, withoutEP)
}

func TestBookRoundTrip(t *testing.T) {
	pos, turn, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	e2e4 := firstMove(t, pos, turn, board.E2, board.E4)
	d2d4 := firstMove(t, pos, turn, board.D2, board.D4)

	var w polyglot.Writer
	w.Add(pos, turn, e2e4, 10)
	w.Add(pos, turn, d2d4, 30)

	book, err := polyglot.Open(w.Bytes())
	require.NoError(t, err)

	moves, err := book.Find(context.Background(), fen.Initial)
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.True(t, d2d4.Equals(moves[0]), "higher weight entry must come first")
	assert.True(t, e2e4.Equals(moves[1]))
}

func TestBookFindMissKeyReturnsNoMoves(t *testing.T) {
	pos, turn, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	var w polyglot.Writer
	w.Add(pos, turn, firstMove(t, pos, turn, board.E2, board.E4), 1)

	book, err := polyglot.Open(w.Bytes())
	require.NoError(t, err)

	moves, err := book.Find(context.Background(), "rnbqkbnr/pppppppp/8/8/8/7P/PPPPPPP1/RNBQKBNR b KQkq - 0 1")
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestOpenRejectsMalformedSize(t *testing.T) {
	_, err := polyglot.Open(make([]byte, 17))
	assert.Error(t, err)
}

func firstMove(t *testing.T, pos *board.Position, turn board.Color, from, to board.Square) board.Move {
	t.Helper()
	for _, m := range pos.PseudoLegalMoves(turn) {
		if m.From == from && m.To == to {
			return m
		}
	}
	t.Fatalf("no pseudo-legal move %v-%v", from, to)
	return board.Move{}
}
