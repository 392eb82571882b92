package search

import (
	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/eval"
)

// moveOrderState is the stage of the MoveOrder FSM. Each stage is exhausted (its candidate
// moves handed out) before the next stage is even generated, so a beta cutoff in an early
// stage never pays for generating or sorting a later one.
type moveOrderState int

const (
	stageHash moveOrderState = iota
	stageTactical
	stageKiller
	stageGeneral
	stageLosing
	stageDone
)

// MoveOrder is a staged move generator/orderer for one search node: hash move, then
// tactical moves (captures and promotions, ordered by SEE or MVV-LVA), then killer moves
// (quiet moves that caused a beta cutoff at the same ply in a sibling node), then the
// remaining quiet moves, then finally captures SEE judges as losing material (deferred
// rather than dropped, since a pin or discovered attack can still make them worth playing).
type MoveOrder struct {
	pos  *board.Position
	turn board.Color
	hash board.Move
	k1   board.Move
	k2   board.Move
	see  bool

	state    moveOrderState
	tactical []board.Move
	quiet    []board.Move
	losing   []board.Move
}

// NewMoveOrder starts a new FSM for the moves pseudo-legal in pos for turn. hash is the
// transposition table's best move for this position, if any (board.Move{} if none); k1/k2
// are the two killer moves recorded for this ply.
func NewMoveOrder(pos *board.Position, turn board.Color, hash, k1, k2 board.Move, useSEE bool) *MoveOrder {
	return &MoveOrder{pos: pos, turn: turn, hash: hash, k1: k1, k2: k2, see: useSEE}
}

// Next returns the next move to try, in FSM order, or false once every pseudo-legal move
// has been returned exactly once.
func (mo *MoveOrder) Next() (board.Move, bool) {
	for {
		switch mo.state {
		case stageHash:
			mo.state = stageTactical
			if mo.hash.From != mo.hash.To && mo.pos.IsEmpty(mo.hash.From) == false {
				return mo.hash, true
			}

		case stageTactical:
			if mo.tactical == nil && mo.quiet == nil {
				mo.generate()
			}
			if len(mo.tactical) > 0 {
				m := mo.tactical[0]
				mo.tactical = mo.tactical[1:]
				if !m.Equals(mo.hash) {
					return m, true
				}
				continue
			}
			mo.state = stageKiller

		case stageKiller:
			if mo.isPending(mo.k1) {
				m := mo.k1
				mo.k1 = board.Move{} // handed out: don't offer it again
				return m, true
			}
			if mo.isPending(mo.k2) {
				m := mo.k2
				mo.k2 = board.Move{}
				return m, true
			}
			mo.state = stageGeneral

		case stageGeneral:
			if len(mo.quiet) > 0 {
				m := mo.quiet[0]
				mo.quiet = mo.quiet[1:]
				if !m.Equals(mo.hash) && !m.Equals(mo.k1) && !m.Equals(mo.k2) {
					return m, true
				}
				continue
			}
			mo.state = stageLosing

		case stageLosing:
			if len(mo.losing) > 0 {
				m := mo.losing[0]
				mo.losing = mo.losing[1:]
				if !m.Equals(mo.hash) {
					return m, true
				}
				continue
			}
			mo.state = stageDone

		case stageDone:
			return board.Move{}, false
		}
	}
}

// isPending reports whether m is still an un-dealt quiet move, used to validate a killer
// before handing it out (it may belong to a different, incompatible position).
func (mo *MoveOrder) isPending(m board.Move) bool {
	if m.From == m.To || m.Equals(mo.hash) {
		return false // not a move, or already handed out as the hash move
	}
	for i, c := range mo.quiet {
		if c.Equals(m) {
			mo.quiet = append(mo.quiet[:i], mo.quiet[i+1:]...)
			return true
		}
	}
	return false
}

func (mo *MoveOrder) generate() {
	moves := mo.pos.PseudoLegalMoves(mo.turn)

	var pins eval.Pins
	if mo.see {
		pins = eval.FindKingQueenPins(mo.pos)
	}

	for _, m := range moves {
		switch {
		case m.IsCapture() || m.IsPromotion():
			gain := eval.NominalValueGain(m)
			if mo.see {
				gain = eval.Exchange(mo.pos, pins, mo.turn, m.To)
			}
			if gain < 0 {
				mo.losing = append(mo.losing, m)
			} else {
				m.Score = int32(gain)
				mo.tactical = append(mo.tactical, m)
			}
		default:
			mo.quiet = append(mo.quiet, m)
		}
	}

	board.SortByPriority(mo.tactical, func(m board.Move) board.MovePriority { return board.MovePriority(m.Score) })
	board.SortByPriority(mo.losing, func(m board.Move) board.MovePriority { return board.MovePriority(m.Score) })
}

// Killers records, per search ply, the two most recent quiet moves that produced a beta
// cutoff. A killer from one node is frequently still a strong try in a sibling node at the
// same ply, since siblings tend to share a lot of tactical structure.
type Killers struct {
	table [][2]board.Move
}

// NewKillers returns a Killers table sized for the maximum supported search depth.
func NewKillers() Killers {
	return Killers{table: make([][2]board.Move, 256)}
}

// Get returns the two killer moves recorded for ply.
func (k Killers) Get(ply int) (board.Move, board.Move) {
	if ply < 0 || ply >= len(k.table) {
		return board.Move{}, board.Move{}
	}
	return k.table[ply][0], k.table[ply][1]
}

// Record stores m as the newest killer for ply, evicting the older of the two slots.
func (k Killers) Record(ply int, m board.Move) {
	if ply < 0 || ply >= len(k.table) || m.IsCapture() {
		return // only quiet moves are worth remembering as killers
	}
	if k.table[ply][0].Equals(m) {
		return
	}
	k.table[ply][1] = k.table[ply][0]
	k.table[ply][0] = m
}
