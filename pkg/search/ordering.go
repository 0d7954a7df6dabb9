package search

import (
	"github.com/halberd-chess/halberd/pkg/board"
	"github.com/halberd-chess/halberd/pkg/eval"
)

const (
	ttMoveScore         = 100000
	captureBaseScore    = 50000
	promotionScore      = 48000
	killerSlot0Score    = 40000
	killerSlot1Score    = 39000
	historyCeiling      = 30000
)

// Killers holds the two most recent quiet moves that caused a β-cutoff at each ply.
type Killers struct {
	slots [eval.MaxPly][2]board.Move
}

// Clear empties every killer slot, used on a new-game signal.
func (k *Killers) Clear() {
	*k = Killers{}
}

// Update records a quiet move that caused a β-cutoff at the given ply, shifting the
// existing slot 0 move into slot 1 if it differs from the new move.
func (k *Killers) Update(ply int, m board.Move) {
	if ply < 0 || ply >= eval.MaxPly {
		return
	}
	if k.slots[ply][0].Equals(m) {
		return
	}
	k.slots[ply][1] = k.slots[ply][0]
	k.slots[ply][0] = m
}

// Match reports which killer slot (0, 1, or -1 for none) a move occupies at the given
// ply, compared by from/to only.
func (k *Killers) Match(ply int, m board.Move) int {
	if ply < 0 || ply >= eval.MaxPly {
		return -1
	}
	if k.slots[ply][0].From == m.From && k.slots[ply][0].To == m.To {
		return 0
	}
	if k.slots[ply][1].From == m.From && k.slots[ply][1].To == m.To {
		return 1
	}
	return -1
}

// History is the quiet-move heuristic table, indexed by [side][from][to], clipped to
// historyCeiling.
type History struct {
	table [board.NumColors][64][64]int32
}

// Clear empties the table entirely, used on a new-game signal.
func (h *History) Clear() {
	*h = History{}
}

// Decay divides every entry of the table by 4, done once at the start of each root search so that history from prior searches fades rather than
// persisting indefinitely.
func (h *History) Decay() {
	for c := range h.table {
		for f := range h.table[c] {
			for t := range h.table[c][f] {
				h.table[c][f][t] /= 4
			}
		}
	}
}

// Add adds d² to the history score for the given move, clipped to historyCeiling.
func (h *History) Add(turn board.Color, m board.Move, d int) {
	v := h.table[turn][m.From][m.To] + int32(d*d)
	if v > historyCeiling {
		v = historyCeiling
	}
	h.table[turn][m.From][m.To] = v
}

func (h *History) Get(turn board.Color, m board.Move) int32 {
	return h.table[turn][m.From][m.To]
}

// victimValue returns the material value used by MVV-LVA for the piece captured by m,
// in the position it is played from. En-passant always captures a pawn.
func victimValue(m board.Move, pos *board.Position) eval.Score {
	if m.Flag == board.EnPassantCapture {
		return eval.NominalValue(board.Pawn)
	}
	_, captured, ok := pos.PieceAt(m.To)
	if !ok {
		return 0
	}
	return eval.NominalValue(captured)
}

// orderScore assigns the ordering priority of a candidate move at an interior node,
// per the engine's move-ordering table: TT best move first, then MVV-LVA captures,
// quiet promotions, killers, and finally history.
func orderScore(m board.Move, pos *board.Position, ttMove board.Move, killers *Killers, ply int, history *History) int32 {
	if ttMove != (board.Move{}) && m.Equals(ttMove) {
		return ttMoveScore
	}
	if m.Flag.IsCapture() {
		_, attacker, _ := pos.PieceAt(m.From)
		return captureBaseScore + int32(10*victimValue(m, pos)-eval.NominalValue(attacker))
	}
	if m.Flag.IsPromotion() {
		return promotionScore
	}
	switch killers.Match(ply, m) {
	case 0:
		return killerSlot0Score
	case 1:
		return killerSlot1Score
	}
	return history.Get(pos.Turn, m)
}

// selectNext performs one step of partial (selection-sort) ordering: scans moves from
// index i onward and swaps the highest-scored move (and its score) into index i.
// Cheaper than a full sort since the search frequently cuts off before exhausting the
// move list.
func selectNext(moves *board.MoveList, scores []int32, i int) {
	best := i
	for j := i + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != i {
		moves.Swap(i, best)
		scores[i], scores[best] = scores[best], scores[i]
	}
}

// scoreMoves computes the ordering score for every move in the list up front; selectNext
// then incrementally selection-sorts by consulting this precomputed slice.
func scoreMoves(moves *board.MoveList, pos *board.Position, ttMove board.Move, killers *Killers, ply int, history *History) []int32 {
	scores := make([]int32, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		scores[i] = orderScore(moves.Get(i), pos, ttMove, killers, ply, history)
	}
	return scores
}
