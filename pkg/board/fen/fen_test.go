package fen_test

import (
	"errors"
	"testing"

	"github.com/halberd-chess/halberd/pkg/board"
	"github.com/halberd-chess/halberd/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInitial(t *testing.T) {
	z := board.NewZobristTable(0)
	pos, err := fen.Decode(fen.Initial, z)
	require.NoError(t, err)

	assert.Equal(t, board.White, pos.Turn)
	assert.Equal(t, board.FullCastlingRights, pos.Castling)
	assert.Equal(t, board.NoSquare, pos.EnPassant)
	assert.Equal(t, 0, pos.HalfmoveClock)
	assert.Equal(t, 1, pos.FullmoveNumber)

	c, p, ok := pos.PieceAt(board.E1)
	require.True(t, ok)
	assert.Equal(t, board.White, c)
	assert.Equal(t, board.King, p)

	c, p, ok = pos.PieceAt(board.E8)
	require.True(t, ok)
	assert.Equal(t, board.Black, c)
	assert.Equal(t, board.King, p)

	assert.True(t, pos.IsEmpty(board.E4))
}

func TestEncodeRoundTrip(t *testing.T) {
	z := board.NewZobristTable(0)
	pos, err := fen.Decode(fen.Initial, z)
	require.NoError(t, err)

	assert.Equal(t, fen.Initial, fen.Encode(pos))
}

func TestDecodeOptionalClockFields(t *testing.T) {
	z := board.NewZobristTable(0)
	pos, err := fen.Decode("4k3/8/8/8/8/8/8/4K3 w - -", z)
	require.NoError(t, err)
	assert.Equal(t, 0, pos.HalfmoveClock)
	assert.Equal(t, 1, pos.FullmoveNumber)
}

func TestDecodeEnPassantTarget(t *testing.T) {
	z := board.NewZobristTable(0)
	pos, err := fen.Decode("4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1", z)
	require.NoError(t, err)
	assert.Equal(t, board.D6, pos.EnPassant)
}

func TestDecodeInvalidReturnsSentinel(t *testing.T) {
	z := board.NewZobristTable(0)

	tests := []string{
		"not a valid fen",
		"8/8/8/8/8/8/8 w - - 0 1",
		"4k3/8/8/8/8/8/8/4K3 x - - 0 1",
		"4k3/8/8/8/8/8/8/4K3 w X - 0 1",
		"4k3/8/8/8/8/8/8/4K3 w - z9 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPP/RNBQKBNR w KQkq - 0 1",
	}
	for _, descriptor := range tests {
		_, err := fen.Decode(descriptor, z)
		assert.Error(t, err, descriptor)
		assert.True(t, errors.Is(err, fen.ErrInvalidPosition), descriptor)
	}
}

func TestDecodeRejectsDuplicateOrAdjacentKings(t *testing.T) {
	z := board.NewZobristTable(0)

	_, err := fen.Decode("4k3/8/8/8/8/8/8/4K2k w - - 0 1", z)
	assert.Error(t, err)

	_, err = fen.Decode("8/8/8/8/8/3kK3/8/8 w - - 0 1", z)
	assert.Error(t, err)
}
