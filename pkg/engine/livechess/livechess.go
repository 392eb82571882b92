// Package livechess adapts a remote electronic-board feed, such as a DGT board bridge, into a
// search.Search implementation: instead of computing a move, it waits for the physical board
// to reach one of the position's legal successors and reports that as the result. It reads one
// JSON object per WebSocket message over a plain WebSocket connection.
package livechess

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/board/fen"
	"github.com/corvid-chess/corvid/pkg/eval"
	"github.com/corvid-chess/corvid/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

// Event is a board-state update pushed by the remote feed: the board's current placement,
// expressed as the placement fields of a FEN string (board + side to move + castling + en
// passant), and, if the update was caused by a move, its SAN text.
type Event struct {
	FEN string `json:"fen"`
	San string `json:"san,omitempty"`
}

// Dial connects to a WebSocket endpoint serving a stream of Event messages, one JSON object
// per text frame, and returns a Feed for consuming them. The connection is closed when ctx is
// done or Feed.Close is called.
func Dial(ctx context.Context, url string) (*Feed, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %v: %w", url, err)
	}

	f := &Feed{conn: conn, events: make(chan Event, 16), closed: iox.NewAsyncCloser()}
	go f.read(ctx)
	go func() {
		<-ctx.Done()
		f.Close()
	}()
	return f, nil
}

// Feed is a live stream of board Events from a Dial'd WebSocket connection.
type Feed struct {
	conn   *websocket.Conn
	events chan Event
	closed iox.AsyncCloser
}

// Events returns the channel of incoming board updates. Closed when the feed is closed.
func (f *Feed) Events() <-chan Event {
	return f.events
}

// Close closes the underlying connection. Idempotent.
func (f *Feed) Close() {
	if f.closed.IsClosed() {
		return
	}
	f.closed.Close()
	_ = f.conn.Close()
}

func (f *Feed) read(ctx context.Context) {
	defer close(f.events)
	defer f.Close()

	for {
		_, data, err := f.conn.ReadMessage()
		if err != nil {
			if !f.closed.IsClosed() {
				logw.Errorf(ctx, "livechess feed read failed: %v", err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			logw.Errorf(ctx, "livechess feed malformed event %q: %v", data, err)
			continue
		}

		select {
		case f.events <- event:
		case <-ctx.Done():
			return
		}
	}
}

// Adaptor implements search.Search by waiting for the physical board to reach one of the
// current position's legal successors, rather than computing one. It never consults a
// transposition table or evaluator: the depth argument to Search is only echoed back in the
// returned PV.
type Adaptor struct {
	feed *Feed

	last atomic.String // last FEN placement reported by the feed
}

// NewAdaptor returns an Adaptor that resolves moves against updates from feed.
func NewAdaptor(ctx context.Context, feed *Feed) *Adaptor {
	a := &Adaptor{feed: feed}
	go a.process(ctx)
	return a
}

func (a *Adaptor) process(ctx context.Context) {
	for {
		select {
		case event, ok := <-a.feed.Events():
			if !ok {
				return
			}
			a.last.Store(placement(event.FEN))
		case <-ctx.Done():
			return
		}
	}
}

// Search blocks until the remote board reaches a position matching one of b's legal successors,
// then returns that single move as a one-ply PV. It returns search.ErrHalted if ctx is done
// first.
func (a *Adaptor) Search(ctx context.Context, b *board.Board, depth int) (search.PV, error) {
	candidates := map[string]board.Move{}
	for _, m := range b.Position().PseudoLegalMoves(b.Turn()) {
		next, ok := b.Position().Move(m)
		if !ok {
			continue
		}
		candidates[placement(fen.Encode(next, b.Turn().Opponent(), 0, 0))] = m
	}

	if len(candidates) == 0 {
		if result := b.AdjudicateNoLegalMoves(); result.Reason == board.Checkmate {
			return search.PV{Depth: depth, Score: eval.NegInfScore}, nil
		}
		return search.PV{Depth: depth, Score: eval.ZeroScore}, nil
	}

	for {
		if last := a.last.Load(); last != "" {
			if m, ok := candidates[last]; ok {
				return search.PV{Depth: depth, Moves: []board.Move{m}, Score: eval.ZeroScore}, nil
			}
		}

		select {
		case <-ctx.Done():
			return search.PV{}, search.ErrHalted
		case event, ok := <-a.feed.Events():
			// process() and this loop both receive from the feed, so record an event taken
			// here too, then re-check on the next iteration.
			if ok {
				a.last.Store(placement(event.FEN))
			}
		}
	}
}

// placement strips the halfmove/fullmove counters off a FEN string, leaving the part that
// identifies the board state a physical board can actually reproduce.
func placement(f string) string {
	parts := strings.Split(strings.TrimSpace(f), " ")
	if len(parts) > 4 {
		parts = parts[:4]
	}
	return strings.Join(parts, " ")
}
