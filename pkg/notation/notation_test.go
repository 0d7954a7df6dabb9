package notation_test

import (
	"errors"
	"testing"

	"github.com/halberd-chess/halberd/pkg/board"
	"github.com/halberd-chess/halberd/pkg/board/fen"
	"github.com/halberd-chess/halberd/pkg/notation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, descriptor string, z *board.ZobristTable) *board.Position {
	t.Helper()
	pos, err := fen.Decode(descriptor, z)
	require.NoError(t, err)
	return pos
}

func TestCoordinateRoundTrip(t *testing.T) {
	z := board.NewZobristTable(0)
	pos := decode(t, fen.Initial, z)

	m, err := notation.ParseCoordinate("e2e4", pos, z)
	require.NoError(t, err)
	assert.Equal(t, board.DoublePawnPush, m.Flag)
	assert.Equal(t, "e2e4", notation.Coordinate(m))
}

func TestCoordinatePromotion(t *testing.T) {
	z := board.NewZobristTable(0)
	pos := decode(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1", z)

	m, err := notation.ParseCoordinate("a7a8q", pos, z)
	require.NoError(t, err)
	assert.Equal(t, board.QueenPromotion, m.Flag)
	assert.Equal(t, "a7a8q", notation.Coordinate(m))
}

func TestParseCoordinateIllegalMove(t *testing.T) {
	z := board.NewZobristTable(0)
	pos := decode(t, fen.Initial, z)

	_, err := notation.ParseCoordinate("e2e5", pos, z)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, notation.ErrInvalidMove))

	_, err = notation.ParseCoordinate(notation.NullMove, pos, z)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, notation.ErrInvalidMove))
}

func TestSANCastling(t *testing.T) {
	z := board.NewZobristTable(0)
	pos := decode(t, "4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1", z)

	m, err := notation.ParseCoordinate("e1g1", pos, z)
	require.NoError(t, err)
	assert.Equal(t, board.KingSideCastle, m.Flag)
	assert.Equal(t, "O-O", notation.SAN(m, pos, z))
}

func TestSANDisambiguation(t *testing.T) {
	z := board.NewZobristTable(0)
	// Knights on b1 and f1 can both reach d2: must disambiguate by file.
	pos := decode(t, "4k3/8/8/8/4K3/8/8/1N3N2 w - - 0 1", z)

	m, err := notation.ParseCoordinate("b1d2", pos, z)
	require.NoError(t, err)
	assert.Equal(t, "Nbd2", notation.SAN(m, pos, z))

	m, err = notation.ParseCoordinate("f1d2", pos, z)
	require.NoError(t, err)
	assert.Equal(t, "Nfd2", notation.SAN(m, pos, z))
}

func TestSANCheckAndMateSuffix(t *testing.T) {
	z := board.NewZobristTable(0)
	// One move from fool's mate: queen delivers checkmate on h4.
	pos := decode(t, "rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq - 0 2", z)

	m, err := notation.ParseCoordinate("d8h4", pos, z)
	require.NoError(t, err)
	assert.Equal(t, "Qh4#", notation.SAN(m, pos, z))
}

func TestParseSANAcceptsUndecoratedAndZeroCastling(t *testing.T) {
	z := board.NewZobristTable(0)
	pos := decode(t, "4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1", z)

	m, err := notation.ParseSAN("0-0", pos, z)
	require.NoError(t, err)
	assert.Equal(t, board.KingSideCastle, m.Flag)

	pos2 := decode(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1", z)
	m, err = notation.ParseSAN("a8Q", pos2, z)
	require.NoError(t, err)
	assert.Equal(t, board.QueenPromotion, m.Flag)
}

func TestParseSANIllegal(t *testing.T) {
	z := board.NewZobristTable(0)
	pos := decode(t, fen.Initial, z)

	_, err := notation.ParseSAN("Qh5", pos, z)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, notation.ErrInvalidMove))
}
