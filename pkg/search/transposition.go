package search

import (
	"fmt"
	"math/bits"
	"sync/atomic"
	"unsafe"

	"github.com/halberd-chess/halberd/pkg/board"
	"github.com/halberd-chess/halberd/pkg/eval"
)

// Bound classifies a stored score relative to the window it was computed in.
type Bound uint8

const (
	ExactBound Bound = iota
	LowerBound
	UpperBound
)

func (b Bound) String() string {
	switch b {
	case ExactBound:
		return "exact"
	case LowerBound:
		return "lower"
	case UpperBound:
		return "upper"
	default:
		return "?"
	}
}

// entry is one transposition table slot: {key, depth, score, bound, best move}.
type entry struct {
	hash  board.ZobristHash
	score eval.Score
	move  board.Move
	depth int
	bound Bound
}

// TranspositionTable is a power-of-two-sized, direct-mapped table indexed by the low
// bits of the Zobrist key. It is process-wide state scoped to one engine instance:
// read and written only from the single searching goroutine, cleared on a new-game
// signal.
type TranspositionTable struct {
	slots []unsafe.Pointer // *entry
	mask  uint64
	used  uint64
}

// DefaultTranspositionTableEntries is the table size named by the search design: 2^20
// entries.
const DefaultTranspositionTableEntries = 1 << 20

// NewTranspositionTable allocates a table with the requested number of entries,
// rounded down to the nearest power of two (zero selects the default size).
func NewTranspositionTable(entries uint64) *TranspositionTable {
	if entries == 0 {
		entries = DefaultTranspositionTableEntries
	}
	n := uint64(1) << (63 - bits.LeadingZeros64(entries))
	return &TranspositionTable{
		slots: make([]unsafe.Pointer, n),
		mask:  n - 1,
	}
}

// Clear empties the table, used on a new-game signal.
func (t *TranspositionTable) Clear() {
	for i := range t.slots {
		atomic.StorePointer(&t.slots[i], nil)
	}
	t.used = 0
}

// Read returns the bound, depth, score and best move stored for the given hash, if
// the slot's key matches exactly. The score is adjusted from the table's
// root-distance-independent encoding back to a distance-from-ply score (see
// scoreToTT/scoreFromTT) before it is returned.
func (t *TranspositionTable) Read(hash board.ZobristHash, ply int) (Bound, int, eval.Score, board.Move, bool) {
	addr := &t.slots[uint64(hash)&t.mask]
	e := (*entry)(atomic.LoadPointer(addr))
	if e == nil || e.hash != hash {
		return ExactBound, 0, 0, board.Move{}, false
	}
	return e.bound, e.depth, scoreFromTT(e.score, ply), e.move, true
}

// Write stores an entry, replacing the slot's current occupant if it is empty, holds
// the same key, or has a depth no greater than the new entry's. Mate scores are
// adjusted to be relative to the position itself rather than the root ply at which
// they were computed (see scoreToTT), so a later probe at a different ply reports the
// correct distance to mate.
func (t *TranspositionTable) Write(hash board.ZobristHash, bound Bound, depth int, score eval.Score, move board.Move, ply int) {
	addr := &t.slots[uint64(hash)&t.mask]
	fresh := &entry{hash: hash, score: scoreToTT(score, ply), move: move, depth: depth, bound: bound}

	for {
		old := (*entry)(atomic.LoadPointer(addr))
		if old != nil && old.hash != hash && old.depth > depth {
			return
		}
		if atomic.CompareAndSwapPointer(addr, unsafe.Pointer(old), unsafe.Pointer(fresh)) {
			if old == nil {
				t.used++
			}
			return
		}
	}
}

// scoreToTT converts a mate score found ply plies below the root into one expressed
// as distance from the position being stored, so that the stored value is reusable
// regardless of which root ply it is probed from. Non-mate scores pass through
// unchanged.
func scoreToTT(score eval.Score, ply int) eval.Score {
	if !eval.IsMateScore(score) {
		return score
	}
	if score > 0 {
		return score + eval.Score(ply)
	}
	return score - eval.Score(ply)
}

// scoreFromTT is the inverse of scoreToTT, re-expressing a stored mate score as
// distance from the root ply at which it is now being probed.
func scoreFromTT(score eval.Score, ply int) eval.Score {
	if !eval.IsMateScore(score) {
		return score
	}
	if score > 0 {
		return score - eval.Score(ply)
	}
	return score + eval.Score(ply)
}

// Size returns the table capacity in entries.
func (t *TranspositionTable) Size() uint64 {
	return uint64(len(t.slots))
}

// Used returns the utilization as a fraction in [0;1].
func (t *TranspositionTable) Used() float64 {
	return float64(t.used) / float64(len(t.slots))
}

func (t *TranspositionTable) String() string {
	return fmt.Sprintf("TT[%v entries @ %v%%]", t.Size(), int(100*t.Used()))
}
