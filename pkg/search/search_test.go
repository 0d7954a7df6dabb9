package search

import (
	"testing"
	"time"

	"github.com/halberd-chess/halberd/pkg/board"
	"github.com/halberd-chess/halberd/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranspositionTableWriteRead(t *testing.T) {
	tt := NewTranspositionTable(16)
	m := board.Move{From: board.E2, To: board.E4, Flag: board.DoublePawnPush}

	_, _, _, _, ok := tt.Read(board.ZobristHash(1), 0)
	assert.False(t, ok)

	tt.Write(board.ZobristHash(1), ExactBound, 4, eval.Score(55), m, 0)
	bound, depth, score, move, ok := tt.Read(board.ZobristHash(1), 0)
	require.True(t, ok)
	assert.Equal(t, ExactBound, bound)
	assert.Equal(t, 4, depth)
	assert.Equal(t, eval.Score(55), score)
	assert.True(t, m.Equals(move))
}

func TestTranspositionTableSizeRoundsDownToPowerOfTwo(t *testing.T) {
	tt := NewTranspositionTable(17)
	assert.Equal(t, uint64(16), tt.Size())

	tt = NewTranspositionTable(0)
	assert.Equal(t, uint64(DefaultTranspositionTableEntries), tt.Size())
}

func TestTranspositionTableReplacementPolicy(t *testing.T) {
	// Two keys colliding into the same slot (table has 2 slots, mask=1).
	tt := NewTranspositionTable(2)
	lo := board.ZobristHash(0)
	hi := board.ZobristHash(2) // also maps to slot 0

	tt.Write(lo, ExactBound, 8, eval.Score(100), board.Move{}, 0)
	// A shallower, different-key write must not evict a deeper entry.
	tt.Write(hi, ExactBound, 2, eval.Score(200), board.Move{}, 0)

	_, depth, score, _, ok := tt.Read(lo, 0)
	require.True(t, ok)
	assert.Equal(t, 8, depth)
	assert.Equal(t, eval.Score(100), score)

	// A deeper-or-equal write to the same slot does replace.
	tt.Write(hi, ExactBound, 9, eval.Score(300), board.Move{}, 0)
	_, depth, score, _, ok = tt.Read(hi, 0)
	require.True(t, ok)
	assert.Equal(t, 9, depth)
	assert.Equal(t, eval.Score(300), score)
}

func TestTranspositionTableClear(t *testing.T) {
	tt := NewTranspositionTable(16)
	tt.Write(board.ZobristHash(1), ExactBound, 4, eval.Score(55), board.Move{}, 0)
	assert.NotZero(t, tt.Used())

	tt.Clear()
	assert.Zero(t, tt.Used())
	_, _, _, _, ok := tt.Read(board.ZobristHash(1), 0)
	assert.False(t, ok)
}

func TestTranspositionTableAdjustsMateScoreForPly(t *testing.T) {
	tt := NewTranspositionTable(16)

	// Stored while the node was reached 3 plies from that search's root, with a
	// mate 5 plies from that same root: 2 plies of true distance from this node.
	// Reusing the entry from a path that reaches the node at a different ply must
	// re-root the mate distance onto the new path rather than replaying the ply-3
	// value: 2 plies further out (distance 2) from ply 1 is mate-in-3, from ply 5
	// is mate-in-7.
	tt.Write(board.ZobristHash(7), ExactBound, 4, eval.MateIn(5), board.Move{}, 3)

	_, _, score, _, ok := tt.Read(board.ZobristHash(7), 1)
	require.True(t, ok)
	assert.Equal(t, eval.MateIn(3), score)

	_, _, score, _, ok = tt.Read(board.ZobristHash(7), 5)
	require.True(t, ok)
	assert.Equal(t, eval.MateIn(7), score)

	tt.Write(board.ZobristHash(9), ExactBound, 4, eval.MatedIn(5), board.Move{}, 3)
	_, _, score, _, ok = tt.Read(board.ZobristHash(9), 1)
	require.True(t, ok)
	assert.Equal(t, eval.MatedIn(3), score)
}

func TestTranspositionTablePassesOrdinaryScoreThroughUnchanged(t *testing.T) {
	tt := NewTranspositionTable(16)
	tt.Write(board.ZobristHash(11), ExactBound, 4, eval.Score(55), board.Move{}, 3)

	_, _, score, _, ok := tt.Read(board.ZobristHash(11), 9)
	require.True(t, ok)
	assert.Equal(t, eval.Score(55), score)
}

func TestKillersUpdateAndMatch(t *testing.T) {
	var k Killers
	a := board.Move{From: board.E2, To: board.E4}
	b := board.Move{From: board.D2, To: board.D4}

	assert.Equal(t, -1, k.Match(0, a))

	k.Update(0, a)
	assert.Equal(t, 0, k.Match(0, a))

	k.Update(0, b)
	assert.Equal(t, 0, k.Match(0, b))
	assert.Equal(t, 1, k.Match(0, a))

	// Re-recording the same slot-0 move is a no-op, not a shift.
	k.Update(0, b)
	assert.Equal(t, 0, k.Match(0, b))
	assert.Equal(t, 1, k.Match(0, a))
}

func TestKillersOutOfRangePlyIsIgnored(t *testing.T) {
	var k Killers
	m := board.Move{From: board.E2, To: board.E4}
	k.Update(-1, m)
	k.Update(eval.MaxPly, m)
	assert.Equal(t, -1, k.Match(-1, m))
	assert.Equal(t, -1, k.Match(eval.MaxPly, m))
}

func TestHistoryAddClampsAndDecays(t *testing.T) {
	var h History
	m := board.Move{From: board.E2, To: board.E4}

	h.Add(board.White, m, 1000)
	assert.Equal(t, int32(historyCeiling), h.Get(board.White, m))

	h.Decay()
	assert.Equal(t, int32(historyCeiling)/4, h.Get(board.White, m))

	assert.Zero(t, h.Get(board.Black, m))
}

func TestControlStopIdempotentAndReportsElapsed(t *testing.T) {
	c := NewControl(0, nil)
	assert.False(t, c.IsStopped())
	c.Stop()
	c.Stop()
	assert.True(t, c.IsStopped())
	assert.GreaterOrEqual(t, c.Elapsed(), time.Duration(0))
}

func TestControlTimeBudgetStopsSearch(t *testing.T) {
	c := NewControl(time.Millisecond, nil)
	time.Sleep(2 * time.Millisecond)
	for i := 0; i < nodeCheckInterval; i++ {
		c.Tick()
	}
	assert.True(t, c.IsStopped())
}

func TestControlShouldStartNextIteration(t *testing.T) {
	unbounded := NewControl(0, nil)
	assert.True(t, unbounded.ShouldStartNextIteration())

	bounded := NewControl(10*time.Millisecond, nil)
	assert.True(t, bounded.ShouldStartNextIteration())
	time.Sleep(20 * time.Millisecond)
	assert.False(t, bounded.ShouldStartNextIteration())
}

func TestControlPollInvokedEveryInterval(t *testing.T) {
	var calls int
	c := NewControl(0, func() bool { calls++; return false })
	for i := 0; i < nodeCheckInterval*2; i++ {
		c.Tick()
	}
	assert.Equal(t, 2, calls)
	assert.False(t, c.IsStopped())
}

func TestControlPollReturningTrueStopsSearch(t *testing.T) {
	c := NewControl(0, func() bool { return true })
	for i := 0; i < nodeCheckInterval; i++ {
		c.Tick()
	}
	assert.True(t, c.IsStopped())
}
