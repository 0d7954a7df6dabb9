package board_test

import (
	"testing"

	"github.com/halberd-chess/halberd/pkg/board"
	"github.com/halberd-chess/halberd/pkg/board/fen"
	"github.com/halberd-chess/halberd/pkg/movegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZobristTableDeterministic(t *testing.T) {
	a := board.NewZobristTable(42)
	b := board.NewZobristTable(42)

	assert.Equal(t, a.PieceKey(board.White, board.Pawn, board.E2), b.PieceKey(board.White, board.Pawn, board.E2))
	assert.Equal(t, a.CastlingKey(board.FullCastlingRights), b.CastlingKey(board.FullCastlingRights))
	assert.Equal(t, a.TurnKey(), b.TurnKey())
}

func TestZobristTableZeroSeedIsStable(t *testing.T) {
	// A zero seed must not leave the generator stuck at zero.
	z := board.NewZobristTable(0)
	assert.NotZero(t, z.TurnKey())
	assert.NotZero(t, z.PieceKey(board.White, board.Pawn, board.A2))
}

// TestIncrementalHashMatchesScratch plays a short sequence of moves from the
// starting position and checks the incrementally maintained hash against a
// from-scratch recomputation after every move.
func TestIncrementalHashMatchesScratch(t *testing.T) {
	z := board.NewZobristTable(7)
	pos, err := fen.Decode(fen.Initial, z)
	require.NoError(t, err)
	assert.Equal(t, z.Hash(pos), pos.Hash)

	moves := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5"}
	for _, move := range moves {
		legal := movegen.GenerateLegalMoves(pos, z)
		found := false
		for i := 0; i < legal.Len(); i++ {
			m := legal.Get(i)
			if m.String() == move {
				pos.MakeMove(m, z)
				found = true
				break
			}
		}
		require.True(t, found, "move %v not found among legal moves", move)
		assert.Equal(t, z.Hash(pos), pos.Hash, "hash mismatch after %v", move)
	}
}
