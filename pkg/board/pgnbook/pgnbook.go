// Package pgnbook reads a FEN-prefixed plain-text opening book: one recorded line per line of
// text, "<FEN> <move1> <move2> ...", grounded on original_source/src/fen_book.c. Unlike the
// original, which binary-searches the raw lines and replays one matched game forward move by
// move, this package replays every line once at load time and indexes the result by position
// (the same cropped-FEN key engine.NewBook uses), so a lookup works from any transposition into
// a recorded line, not only from its exact starting FEN.
package pgnbook

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/board/fen"
)

// Book is an opening book parsed from FEN-prefixed plain text.
type Book struct {
	moves map[string][]board.Move // cropped fen -> candidate next moves, most-recorded first
}

// Parse reads a pgnbook document. Blank lines and lines starting with '#' are ignored. Every
// other line must be a FEN followed by zero or more moves in coordinate form (e2e4, e7e8q, ...).
func Parse(r io.Reader) (*Book, error) {
	counts := map[string]map[board.Move]int{}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := replay(line, counts); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	moves := map[string][]board.Move{}
	for key, byMove := range counts {
		list := make([]board.Move, 0, len(byMove))
		for m := range byMove {
			list = append(list, m)
		}
		sortByCount(list, byMove)
		moves[key] = list
	}
	return &Book{moves: moves}, nil
}

// replay walks one "<FEN> move move ..." line forward, recording each move played at the
// position preceding it.
func replay(line string, counts map[string]map[board.Move]int) error {
	fields := strings.Fields(line)
	if len(fields) < 6 {
		return fmt.Errorf("pgnbook: malformed line %q: want FEN plus moves", line)
	}

	key := strings.Join(fields[:6], " ")
	for _, tok := range fields[6:] {
		next, err := board.ParseMove(tok)
		if err != nil {
			return fmt.Errorf("pgnbook: line %q: %v", line, err)
		}

		pos, turn, half, full, err := fen.Decode(key)
		if err != nil {
			return fmt.Errorf("pgnbook: line %q: %v", line, err)
		}

		cand, ok := pos.Canonicalize(turn, next)
		if !ok {
			return fmt.Errorf("pgnbook: line %q: move %v not legal from %v", line, tok, key)
		}
		p, ok := pos.Move(cand)
		if !ok {
			return fmt.Errorf("pgnbook: line %q: move %v leaves king in check", line, tok)
		}

		crop := fenKey(key)
		if counts[crop] == nil {
			counts[crop] = map[board.Move]int{}
		}
		counts[crop][cand]++

		if cand.Capture.IsValid() || cand.Piece == board.Pawn {
			half = 0
		} else {
			half++
		}
		if turn == board.Black {
			full++
		}
		key = fen.Encode(p, turn.Opponent(), half, full)
	}
	return nil
}

func sortByCount(list []board.Move, byMove map[board.Move]int) {
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && byMove[list[j]] > byMove[list[j-1]]; j-- {
			list[j], list[j-1] = list[j-1], list[j]
		}
	}
}

// Find implements engine.Book.
func (b *Book) Find(_ context.Context, f string) ([]board.Move, error) {
	return b.moves[fenKey(f)], nil
}

func fenKey(f string) string {
	parts := strings.Fields(f)
	if len(parts) < 4 {
		return f
	}
	return strings.Join(parts[:4], " ")
}
