package livechess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlacementStripsMoveCounters(t *testing.T) {
	got := placement("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3", got)
}

func TestPlacementAlreadyShort(t *testing.T) {
	got := placement("8/8/8/8/8/8/8/8 w - -")
	assert.Equal(t, "8/8/8/8/8/8/8/8 w - -", got)
}
