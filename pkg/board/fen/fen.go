// Package fen reads and writes positions as a FEN-style textual board descriptor:
// six whitespace-separated fields (piece placement, active color, castling rights,
// en-passant target, halfmove clock, fullmove number), the last two optional.
package fen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/halberd-chess/halberd/pkg/board"
)

const (
	// Initial is the descriptor for the standard starting position.
	Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// ErrInvalidPosition is wrapped by every error Decode returns, so callers can test for
// a malformed board descriptor with errors.Is regardless of which field failed.
var ErrInvalidPosition = errors.New("invalid board descriptor")

// Decode parses a descriptor into a position. The halfmove clock and fullmove number
// fields are optional and default to 0 and 1 respectively, so a bare four-field
// descriptor like "... w KQkq -" is also accepted.
func Decode(desc string, z *board.ZobristTable) (*board.Position, error) {
	parts := strings.Fields(strings.TrimSpace(desc))
	if len(parts) != 4 && len(parts) != 6 {
		return nil, fmt.Errorf("%w: invalid number of fields: %q", ErrInvalidPosition, desc)
	}

	// (1) Piece placement, from white's perspective: rank 8 down to rank 1, each rank
	// left to right (file a to file h).

	var placements []board.Placement

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != int(board.NumRanks) {
		return nil, fmt.Errorf("%w: invalid number of ranks: %q", ErrInvalidPosition, desc)
	}
	for i, rankStr := range ranks {
		r := board.Rank(int(board.NumRanks) - 1 - i)
		f := board.ZeroFile
		for _, ch := range rankStr {
			switch {
			case unicode.IsDigit(ch):
				f += board.File(ch - '0')
			case unicode.IsLetter(ch):
				if f >= board.NumFiles {
					return nil, fmt.Errorf("%w: rank overflow: %q", ErrInvalidPosition, desc)
				}
				color, piece, ok := parsePiece(ch)
				if !ok {
					return nil, fmt.Errorf("%w: invalid piece %q: %q", ErrInvalidPosition, ch, desc)
				}
				placements = append(placements, board.Placement{Square: board.NewSquare(f, r), Color: color, Piece: piece})
				f++
			default:
				return nil, fmt.Errorf("%w: invalid character %q: %q", ErrInvalidPosition, ch, desc)
			}
		}
		if f != board.NumFiles {
			return nil, fmt.Errorf("%w: invalid rank length: %q", ErrInvalidPosition, desc)
		}
	}

	// (2) Active color.

	turn, ok := parseColor(parts[1])
	if !ok {
		return nil, fmt.Errorf("%w: invalid active color: %q", ErrInvalidPosition, desc)
	}

	// (3) Castling rights.

	castling, ok := parseCastling(parts[2])
	if !ok {
		return nil, fmt.Errorf("%w: invalid castling rights: %q", ErrInvalidPosition, desc)
	}

	// (4) En-passant target square.

	ep := board.NoSquare
	if parts[3] != "-" {
		sq, err := board.ParseSquareStr(parts[3])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid en-passant target: %q: %v", ErrInvalidPosition, desc, err)
		}
		ep = sq
	}

	// (5)-(6) Halfmove clock / fullmove number, optional.

	halfmove, fullmove := 0, 1
	if len(parts) == 6 {
		hm, err := strconv.Atoi(parts[4])
		if err != nil || hm < 0 {
			return nil, fmt.Errorf("%w: invalid halfmove clock: %q", ErrInvalidPosition, desc)
		}
		fm, err := strconv.Atoi(parts[5])
		if err != nil || fm < 0 {
			return nil, fmt.Errorf("%w: invalid fullmove number: %q", ErrInvalidPosition, desc)
		}
		halfmove, fullmove = hm, fm
	}

	return board.NewPosition(placements, turn, castling, ep, halfmove, fullmove, z)
}

// Encode renders a position as a board descriptor string.
func Encode(pos *board.Position) string {
	var sb strings.Builder
	for i := 0; i < int(board.NumRanks); i++ {
		r := board.Rank(int(board.NumRanks) - 1 - i)
		blanks := 0
		for f := board.ZeroFile; f < board.NumFiles; f++ {
			color, piece, ok := pos.PieceAt(board.NewSquare(f, r))
			if !ok {
				blanks++
				continue
			}
			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteRune(printPiece(color, piece))
		}
		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if i < int(board.NumRanks)-1 {
			sb.WriteRune('/')
		}
	}

	ep := "-"
	if pos.EnPassant != board.NoSquare {
		ep = pos.EnPassant.String()
	}

	return fmt.Sprintf("%v %v %v %v %v %v", sb.String(), pos.Turn, pos.Castling, ep, pos.HalfmoveClock, pos.FullmoveNumber)
}

func parseCastling(str string) (board.Castling, bool) {
	var ret board.Castling
	if str == "-" {
		return ret, true
	}
	for _, r := range str {
		switch r {
		case 'K':
			ret |= board.WhiteKingSideCastle
		case 'Q':
			ret |= board.WhiteQueenSideCastle
		case 'k':
			ret |= board.BlackKingSideCastle
		case 'q':
			ret |= board.BlackQueenSideCastle
		default:
			return 0, false
		}
	}
	return ret, true
}

func parseColor(str string) (board.Color, bool) {
	switch str {
	case "w", "W":
		return board.White, true
	case "b", "B":
		return board.Black, true
	default:
		return 0, false
	}
}

func parsePiece(r rune) (board.Color, board.Piece, bool) {
	piece, ok := board.ParsePiece(r)
	if !ok {
		return 0, 0, false
	}
	if unicode.IsUpper(r) {
		return board.White, piece, true
	}
	return board.Black, piece, true
}

func printPiece(c board.Color, p board.Piece) rune {
	r := []rune(p.String())[0]
	if c == board.White {
		return unicode.ToUpper(r)
	}
	return r
}
