package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/board/fen"
)

func decode(t *testing.T, f string) (*board.Position, board.Color) {
	t.Helper()
	pos, turn, _, _, err := fen.Decode(f)
	require.NoError(t, err)
	return pos, turn
}

func TestParseSANKnightMove(t *testing.T) {
	pos, turn := decode(t, fen.Initial)
	m, err := board.ParseSAN(pos, turn, "Nf3")
	require.NoError(t, err)
	assert.Equal(t, board.G1, m.From)
	assert.Equal(t, board.F3, m.To)
	assert.Equal(t, board.Knight, m.Piece)
}

func TestParseSANPawnCapture(t *testing.T) {
	pos, turn := decode(t, "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2")
	m, err := board.ParseSAN(pos, turn, "exd5")
	require.NoError(t, err)
	assert.Equal(t, board.E4, m.From)
	assert.Equal(t, board.D5, m.To)
}

func TestParseSANPromotion(t *testing.T) {
	pos, turn := decode(t, "8/4P1k1/8/8/8/8/6K1/8 w - - 0 1")
	m, err := board.ParseSAN(pos, turn, "e8=Q")
	require.NoError(t, err)
	assert.Equal(t, board.Queen, m.Promotion)
}

func TestParseSANCastling(t *testing.T) {
	pos, turn := decode(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	m, err := board.ParseSAN(pos, turn, "O-O")
	require.NoError(t, err)
	assert.Equal(t, board.KingSideCastle, m.Type)
}

func TestParseSANDisambiguatesByFile(t *testing.T) {
	pos, turn := decode(t, "4k3/8/8/8/8/6K1/8/R6R w - - 0 1")
	m, err := board.ParseSAN(pos, turn, "Rad1")
	require.NoError(t, err)
	assert.Equal(t, board.A1, m.From)
}

func TestParseSANRejectsAmbiguousMove(t *testing.T) {
	pos, turn := decode(t, "4k3/8/8/8/8/6K1/8/R6R w - - 0 1")
	_, err := board.ParseSAN(pos, turn, "Rd1")
	assert.Error(t, err)
}

func TestFormatSANRoundTripsParseSAN(t *testing.T) {
	pos, turn := decode(t, fen.Initial)
	m, err := board.ParseSAN(pos, turn, "Nf3")
	require.NoError(t, err)
	assert.Equal(t, "Nf3", board.FormatSAN(pos, turn, m))
}

func TestFormatSANCheckmateSuffix(t *testing.T) {
	pos, turn := decode(t, "6k1/5ppp/8/8/8/8/8/R6K w - - 0 1")
	m, err := board.ParseSAN(pos, turn, "Ra8")
	require.NoError(t, err)
	assert.Equal(t, "Ra8#", board.FormatSAN(pos, turn, m))
}
