package board_test

import (
	"testing"

	"github.com/halberd-chess/halberd/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoveQuiet(t *testing.T) {
	m, err := board.ParseMove("e2e4")
	require.NoError(t, err)
	assert.Equal(t, board.E2, m.From)
	assert.Equal(t, board.E4, m.To)
	assert.Equal(t, board.Quiet, m.Flag)
	assert.Equal(t, "e2e4", m.String())
}

func TestParseMovePromotion(t *testing.T) {
	m, err := board.ParseMove("a7a8q")
	require.NoError(t, err)
	assert.Equal(t, board.QueenPromotion, m.Flag)
	assert.Equal(t, "a7a8q", m.String())

	_, err = board.ParseMove("a7a8k")
	assert.Error(t, err)
	_, err = board.ParseMove("a7a8p")
	assert.Error(t, err)
}

func TestParseMoveInvalid(t *testing.T) {
	_, err := board.ParseMove("e2")
	assert.Error(t, err)
	_, err = board.ParseMove("z2e4")
	assert.Error(t, err)
}

func TestMoveFlagClassification(t *testing.T) {
	assert.True(t, board.Capture.IsCapture())
	assert.True(t, board.EnPassantCapture.IsCapture())
	assert.True(t, board.QueenPromotionCapture.IsCapture())
	assert.False(t, board.Quiet.IsCapture())

	assert.True(t, board.QueenPromotion.IsPromotion())
	assert.True(t, board.KnightPromotionCapture.IsPromotion())
	assert.False(t, board.Capture.IsPromotion())

	assert.True(t, board.KingSideCastle.IsCastle())
	assert.True(t, board.QueenSideCastle.IsCastle())
	assert.False(t, board.Quiet.IsCastle())
}

func TestMoveFlagPromotionPiece(t *testing.T) {
	assert.Equal(t, board.Knight, board.KnightPromotion.PromotionPiece())
	assert.Equal(t, board.Queen, board.QueenPromotionCapture.PromotionPiece())
	assert.Panics(t, func() { board.Quiet.PromotionPiece() })
}

func TestMoveEquals(t *testing.T) {
	a := board.Move{From: board.E2, To: board.E4, Flag: board.DoublePawnPush}
	b := board.Move{From: board.E2, To: board.E4, Flag: board.DoublePawnPush}
	c := board.Move{From: board.E2, To: board.E4, Flag: board.Quiet}
	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

func TestMoveList(t *testing.T) {
	var l board.MoveList
	assert.Equal(t, 0, l.Len())

	l.Add(board.Move{From: board.E2, To: board.E4})
	l.Add(board.Move{From: board.D2, To: board.D4})
	require.Equal(t, 2, l.Len())

	l.Swap(0, 1)
	assert.Equal(t, board.D2, l.Get(0).From)
	assert.Equal(t, board.E2, l.Get(1).From)

	l.Set(0, board.Move{From: board.G1, To: board.F3})
	assert.Equal(t, board.G1, l.Get(0).From)

	assert.Len(t, l.Slice(), 2)
}

func TestMoveListDropsPastCapacity(t *testing.T) {
	var l board.MoveList
	for i := 0; i < board.MaxMoves; i++ {
		l.Add(board.Move{From: board.E2, To: board.E4})
	}
	require.Equal(t, board.MaxMoves, l.Len())

	assert.NotPanics(t, func() {
		l.Add(board.Move{From: board.D2, To: board.D4})
	})
	assert.Equal(t, board.MaxMoves, l.Len())
}
