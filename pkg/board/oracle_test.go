package board_test

import (
	"testing"

	"github.com/halberd-chess/halberd/pkg/board"
	"github.com/halberd-chess/halberd/pkg/board/fen"
	"github.com/halberd-chess/halberd/pkg/movegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classify(t *testing.T, descriptor string) board.Result {
	t.Helper()
	z := board.NewZobristTable(0)
	pos, err := fen.Decode(descriptor, z)
	require.NoError(t, err)
	return pos.Classify(movegen.HasLegalMove(pos, z))
}

func TestClassifyOngoing(t *testing.T) {
	assert.Equal(t, board.Ongoing, classify(t, fen.Initial))
}

func TestClassifyCheckmate(t *testing.T) {
	// Fool's mate: 1.f3 e5 2.g4 Qh4#
	assert.Equal(t, board.Checkmate, classify(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"))
}

func TestClassifyStalemate(t *testing.T) {
	assert.Equal(t, board.Stalemate, classify(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"))
}

func TestClassifyDrawByFiftyMoveRule(t *testing.T) {
	assert.Equal(t, board.DrawByFiftyMoveRule, classify(t, "4k3/8/8/8/8/8/8/4K3 w - - 100 50"))
}

func TestClassifyCheckmateTakesPrecedenceOverFiftyMoveRule(t *testing.T) {
	// Same fool's-mate position, but with the halfmove clock already at the
	// fifty-move threshold: the delivered mate must still win.
	assert.Equal(t, board.Checkmate, classify(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 100 3"))
}

func TestClassifyDrawByInsufficientMaterial(t *testing.T) {
	assert.Equal(t, board.DrawByInsufficientMaterial, classify(t, "4k3/8/8/8/8/8/8/4KB2 w - - 0 1"))
	assert.Equal(t, board.Ongoing, classify(t, "4k3/8/8/8/8/8/8/3BKB2 w - - 0 1"))
}

func TestResultPredicates(t *testing.T) {
	assert.True(t, board.Checkmate.IsDecisive())
	assert.True(t, board.Checkmate.IsOver())
	assert.False(t, board.Checkmate.IsDraw())

	assert.True(t, board.Stalemate.IsDraw())
	assert.True(t, board.DrawByFiftyMoveRule.IsDraw())
	assert.False(t, board.Ongoing.IsOver())
}
