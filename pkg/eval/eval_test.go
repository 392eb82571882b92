package eval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/board/fen"
	"github.com/corvid-chess/corvid/pkg/eval"
)

var symmetryFens = []string{
	fen.Initial,
	"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 4 4",
	"rnbq1rk1/ppp1bppp/4pn2/3p4/2PP4/2N1PN2/PP3PPP/R1BQKB1R w KQ - 2 7",
	"8/5k2/8/3K4/8/8/8/3R4 w - - 0 1",
	"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1",
}

// TestEvaluatePositionSymmetry asserts that evaluating a position for its side to move and
// evaluating its Flip (vertical mirror, colors swapped) for the other side produce the same
// score: the heuristic has no hidden asymmetric bias toward either color.
func TestEvaluatePositionSymmetry(t *testing.T) {
	opt := eval.DefaultOptions()

	for _, f := range symmetryFens {
		pos, turn, _, _, err := fen.Decode(f)
		require.NoError(t, err)

		flipped := pos.Flip()

		got := eval.EvaluatePosition(pos, turn, opt)
		want := eval.EvaluatePosition(flipped, turn.Opponent(), opt)
		assert.Equal(t, want, got, "fen %q: flip asymmetry", f)
	}
}

func TestMaterialStartingPositionIsBalanced(t *testing.T) {
	pos, turn, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	assert.Equal(t, eval.ZeroScore, eval.Material{}.Evaluate(pos, turn))
}

func TestNominalValueGainCapturePromotion(t *testing.T) {
	m := board.Move{Type: board.CapturePromotion, Capture: board.Queen, Promotion: board.Queen}
	assert.Equal(t, eval.NominalValue(board.Queen)+eval.NominalValue(board.Queen)-eval.NominalValue(board.Pawn), eval.NominalValueGain(m))
}

func TestScoreMateDistance(t *testing.T) {
	s := eval.MateIn(3)
	d, ok := s.MateDistance()
	require.True(t, ok)
	assert.Equal(t, 3, d)

	d, ok = eval.MatedIn(1).MateDistance()
	require.True(t, ok)
	assert.Equal(t, 1, d)

	_, ok = eval.Score(50).MateDistance()
	assert.False(t, ok)
}

func TestScoreNegateInvalid(t *testing.T) {
	assert.Equal(t, eval.InvalidScore, eval.InvalidScore.Negate())
}
