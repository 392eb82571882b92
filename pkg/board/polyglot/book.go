package polyglot

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/board/fen"
)

// entrySize is the byte size of one PolyGlot book entry: key, move, weight, learn.
const entrySize = 16

// Entry is one decoded book record.
type Entry struct {
	Key    uint64
	Move   uint16 // raw PolyGlot move encoding, see decodeMove
	Weight uint16
	Learn  uint32
}

// Book is a PolyGlot book opened from a []byte (typically read whole from disk): a sequence of
// entrySize-byte records sorted ascending by Key, binary-searched per lookup.
type Book struct {
	data []byte // entrySize-byte records, sorted by key
}

// Open parses raw PolyGlot book bytes. The data must be a non-empty multiple of entrySize.
func Open(data []byte) (*Book, error) {
	if len(data) == 0 || len(data)%entrySize != 0 {
		return nil, fmt.Errorf("polyglot: book size %v is not a positive multiple of %v", len(data), entrySize)
	}
	return &Book{data: data}, nil
}

func (b *Book) len() int {
	return len(b.data) / entrySize
}

func (b *Book) entryAt(i int) Entry {
	rec := b.data[i*entrySize : (i+1)*entrySize]
	return Entry{
		Key:    binary.BigEndian.Uint64(rec[0:8]),
		Move:   binary.BigEndian.Uint16(rec[8:10]),
		Weight: binary.BigEndian.Uint16(rec[10:12]),
		Learn:  binary.BigEndian.Uint32(rec[12:16]),
	}
}

// Entries returns every entry whose key matches pos/turn's PolyGlot key, in descending weight
// order (PolyGlot's own convention: higher weight is the stronger recommendation).
func (b *Book) Entries(pos *board.Position, turn board.Color) []Entry {
	key := Key(pos, turn)

	n := b.len()
	lo := sort.Search(n, func(i int) bool { return b.entryAt(i).Key >= key })

	var ret []Entry
	for i := lo; i < n; i++ {
		e := b.entryAt(i)
		if e.Key != key {
			break
		}
		if e.Weight == 0 {
			continue // a zero-weight entry marks a move PolyGlot recommends avoiding
		}
		ret = append(ret, e)
	}

	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Weight > ret[j].Weight })
	return ret
}

// MovesAt resolves every book entry for the position to a fully legal board.Move (entries for
// moves that no longer apply, e.g. from a stale or foreign book, are silently dropped) and
// returns them most-recommended first.
func (b *Book) MovesAt(pos *board.Position, turn board.Color) []board.Move {
	var ret []board.Move
	for _, e := range b.Entries(pos, turn) {
		partial := decodeMove(e.Move)
		if m, ok := pos.Canonicalize(turn, partial); ok {
			ret = append(ret, m)
		}
	}
	return ret
}

// Find implements engine.Book, resolving a FEN string to book moves.
func (b *Book) Find(_ context.Context, f string) ([]board.Move, error) {
	pos, turn, _, _, err := fen.Decode(f)
	if err != nil {
		return nil, err
	}
	return b.MovesAt(pos, turn), nil
}

// decodeMove unpacks PolyGlot's 16-bit move encoding (promotion:3 from-rank:3 from-file:3
// to-rank:3 to-file:3, high to low) into a partial board.Move carrying only the fields a
// PolyGlot entry can express; Position.Canonicalize fills in the rest by matching it against
// the position's real pseudo-legal moves.
func decodeMove(pm uint16) board.Move {
	toFile := int(pm & 0x7)
	toRank := int((pm >> 3) & 0x7)
	fromFile := int((pm >> 6) & 0x7)
	fromRank := int((pm >> 9) & 0x7)
	promo := int((pm >> 12) & 0x7)

	m := board.Move{From: polySquare(fromFile, fromRank), To: polySquare(toFile, toRank)}
	switch promo {
	case 1:
		m.Promotion = board.Knight
	case 2:
		m.Promotion = board.Bishop
	case 3:
		m.Promotion = board.Rook
	case 4:
		m.Promotion = board.Queen
	}
	return m
}

func encodeMove(m board.Move) uint16 {
	toFile, toRank := polyFile(m.To), polyRank(m.To)
	fromFile, fromRank := polyFile(m.From), polyRank(m.From)

	var promo int
	switch m.Promotion {
	case board.Knight:
		promo = 1
	case board.Bishop:
		promo = 2
	case board.Rook:
		promo = 3
	case board.Queen:
		promo = 4
	}
	return uint16(toFile) | uint16(toRank)<<3 | uint16(fromFile)<<6 | uint16(fromRank)<<9 | uint16(promo)<<12
}

func polyFile(sq board.Square) int { return 7 - int(sq.File()) }
func polyRank(sq board.Square) int { return int(sq.Rank()) }

func polySquare(fileFromA, rank int) board.Square {
	return board.Square(rank*8 + (7 - fileFromA))
}

// Writer builds a PolyGlot book in memory, sorted by key on Bytes(). Used by tests and tools
// that need a book fixture without shelling out to a real PolyGlot binary.
type Writer struct {
	entries []Entry
}

// Add records one book move for the given position: the move must already be legal in pos.
func (w *Writer) Add(pos *board.Position, turn board.Color, m board.Move, weight uint16) {
	w.entries = append(w.entries, Entry{Key: Key(pos, turn), Move: encodeMove(m), Weight: weight})
}

// Bytes renders the accumulated entries into PolyGlot's on-disk format.
func (w *Writer) Bytes() []byte {
	sorted := append([]Entry(nil), w.entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	var buf bytes.Buffer
	for _, e := range sorted {
		var rec [entrySize]byte
		binary.BigEndian.PutUint64(rec[0:8], e.Key)
		binary.BigEndian.PutUint16(rec[8:10], e.Move)
		binary.BigEndian.PutUint16(rec[10:12], e.Weight)
		binary.BigEndian.PutUint32(rec[12:16], e.Learn)
		buf.Write(rec[:])
	}
	return buf.Bytes()
}

// ReadAll reads an entire PolyGlot book from r and parses it.
func ReadAll(r io.Reader) (*Book, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Open(data)
}
