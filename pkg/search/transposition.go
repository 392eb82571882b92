package search

import (
	"context"
	"math/bits"
	"sync/atomic"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/eval"
	"github.com/seekerror/logw"
)

// ValueType classifies how a stored score relates to the true minimax value of the node:
// an exact score, or a bound produced by a cutoff that a narrower window didn't disprove.
type ValueType uint8

const (
	NoValue ValueType = iota
	UpperBound
	LowerBound
	ExactValue
)

func (vt ValueType) String() string {
	switch vt {
	case UpperBound:
		return "<="
	case LowerBound:
		return ">="
	case ExactValue:
		return "=="
	default:
		return "?"
	}
}

// Packed word layout for a transposition table entry (low to high bit):
//
//	bits  0-20  move identity, board.Move.Pack() (21 bits: from, to, promotion, capture, type)
//	bits 21-28  depth searched, 0-255
//	bits 29-30  ValueType (2 bits)
//	bits 31-42  value, biased by +valueBias so it fits unsigned (12 bits, signed range
//	            [-2048;2047] material units -- covers eval.MinScore/MaxScore, the search
//	            infinities and mate scores up to +/-eval.MateValue, all stored as they are;
//	            mate scores already count plies from the node that stores them).
//
// Bits 43 and above are unused padding. This is a deliberate widening of the classic
// Hyatt/Crafty packed-word scheme (7-bit move-list index instead of the full move): Go's
// move generator doesn't regenerate a stable, orderable move list at TT-probe time, whereas
// board.Move already packs into 21 bits, so storing the move identity directly costs nothing
// extra within a 64-bit word and avoids the fragility of an index into a list that doesn't
// exist yet at probe time.
const (
	moveBits  = 21
	depthBits = 8
	typeBits  = 2
	valueBits = 12

	moveShift  = 0
	depthShift = moveShift + moveBits
	typeShift  = depthShift + depthBits
	valueShift = typeShift + typeBits

	moveMask  = uint64(1)<<moveBits - 1
	depthMask = uint64(1)<<depthBits - 1
	typeMask  = uint64(1)<<typeBits - 1
	valueMask = uint64(1)<<valueBits - 1

	valueBias = 1 << (valueBits - 1)
)

func packEntry(move board.Move, depth int, vt ValueType, value eval.Score) uint64 {
	v := uint64(int64(value)+valueBias) & valueMask
	return uint64(move.Pack())&moveMask |
		(uint64(depth)&depthMask)<<depthShift |
		(uint64(vt)&typeMask)<<typeShift |
		v<<valueShift
}

func unpackEntry(w uint64) (board.Move, int, ValueType, eval.Score) {
	move := board.UnpackMove(uint32(w >> moveShift & moveMask))
	depth := int(w >> depthShift & depthMask)
	vt := ValueType(w >> typeShift & typeMask)
	value := eval.Score(int64(w>>valueShift&valueMask) - valueBias)
	return move, depth, vt, value
}

// TranspositionTable caches search results keyed by board.ZobristHash. Implementations must
// be safe for concurrent Read/Write from multiple goroutines without locking (entries are
// read and written as single atomic 64-bit words).
type TranspositionTable interface {
	Read(hash board.ZobristHash) (move board.Move, depth int, vt ValueType, value eval.Score, ok bool)
	Write(hash board.ZobristHash, move board.Move, depth int, vt ValueType, value eval.Score)

	Size() uint64
	Used() float64
}

// half is one of the two halves of Table: a slice of lockless key/data pairs, each a pair of
// atomic uint64 words protected by the Hyatt XOR trick (key is stored XORed with data, so a
// torn concurrent read/write is detected -- key^data won't match the data actually read --
// and treated as a miss rather than returning a corrupted entry).
type half struct {
	key  []uint64 // hash ^ data
	data []uint64 // packEntry(...)
	mask uint64
	used uint64
}

func newHalf(n uint64) *half {
	return &half{key: make([]uint64, n), data: make([]uint64, n), mask: n - 1}
}

func (h *half) read(hash board.ZobristHash) (uint64, bool) {
	i := uint64(hash) & h.mask
	k := atomic.LoadUint64(&h.key[i])
	d := atomic.LoadUint64(&h.data[i])
	if k^d != uint64(hash) {
		return 0, false
	}
	return d, true
}

func (h *half) write(hash board.ZobristHash, data uint64) {
	i := uint64(hash) & h.mask
	if atomic.LoadUint64(&h.data[i]) == 0 {
		atomic.AddUint64(&h.used, 1)
	}
	atomic.StoreUint64(&h.data[i], data)
	atomic.StoreUint64(&h.key[i], uint64(hash)^data)
}

// table is the two-half transposition table: a depth-preferring main half (an entry is only
// overwritten by one searched at least as deep, keeping expensive deep results around across
// iterative-deepening iterations) backed by an always-replace auxiliary half (absorbs the
// high churn of shallow re-searches without evicting the main half's deep entries).
type table struct {
	main *half
	aux  *half
}

// NewTranspositionTable allocates a two-half table sized to roughly `size` bytes (each half
// gets half of it; each slot is 16 bytes: one key word, one data word).
func NewTranspositionTable(ctx context.Context, size uint64) TranspositionTable {
	slots := size / 16 / 2
	n := uint64(1) << bits.Len64(slots-1)
	if n == 0 {
		n = 1
	}

	logw.Infof(ctx, "Allocating %vMB TT with 2x%v entries", size>>20, n)

	return &table{main: newHalf(n), aux: newHalf(n)}
}

func (t *table) Read(hash board.ZobristHash) (board.Move, int, ValueType, eval.Score, bool) {
	if d, ok := t.main.read(hash); ok {
		move, depth, vt, value := unpackEntry(d)
		return move, depth, vt, value, true
	}
	if d, ok := t.aux.read(hash); ok {
		move, depth, vt, value := unpackEntry(d)
		return move, depth, vt, value, true
	}
	return board.Move{}, 0, NoValue, 0, false
}

func (t *table) Write(hash board.ZobristHash, move board.Move, depth int, vt ValueType, value eval.Score) {
	data := packEntry(move, depth, vt, value)

	i := uint64(hash) & t.main.mask
	if old := atomic.LoadUint64(&t.main.data[i]); old == 0 || depth >= int(old>>depthShift&depthMask) {
		t.main.write(hash, data)
		return
	}
	t.aux.write(hash, data)
}

func (t *table) Size() uint64 {
	return uint64(len(t.main.key)+len(t.aux.key)) * 16
}

func (t *table) Used() float64 {
	return float64(atomic.LoadUint64(&t.main.used)) / float64(len(t.main.key))
}

// NoTranspositionTable is a Nop implementation, useful for testing search without caching
// effects.
type NoTranspositionTable struct{}

func (NoTranspositionTable) Read(board.ZobristHash) (board.Move, int, ValueType, eval.Score, bool) {
	return board.Move{}, 0, NoValue, 0, false
}

func (NoTranspositionTable) Write(board.ZobristHash, board.Move, int, ValueType, eval.Score) {}

func (NoTranspositionTable) Size() uint64 { return 0 }
func (NoTranspositionTable) Used() float64 { return 0 }
