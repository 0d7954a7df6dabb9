// Package notation converts between board.Move values and the two textual move
// notations used at the engine boundary: pure coordinate notation (as used by UCI) and
// standard algebraic notation (as used by human-readable game records).
package notation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/halberd-chess/halberd/pkg/board"
	"github.com/halberd-chess/halberd/pkg/movegen"
)

// NullMove is the coordinate-notation spelling of "no move".
const NullMove = "0000"

// ErrInvalidMove is wrapped by every error ParseCoordinate and ParseSAN return, so
// callers can test for a malformed or illegal move string with errors.Is.
var ErrInvalidMove = errors.New("invalid move")

// Coordinate renders a move in pure coordinate notation: <file><rank><file><rank>,
// plus a lowercase promotion letter if the move promotes.
func Coordinate(m board.Move) string {
	if m.Flag.IsPromotion() {
		return fmt.Sprintf("%v%v%v", m.From, m.To, m.Flag.PromotionPiece())
	}
	return fmt.Sprintf("%v%v", m.From, m.To)
}

// ParseCoordinate parses pure coordinate notation against the legal moves available in
// pos, resolving the flag (capture, en-passant, castling, promotion) from the matching
// legal move rather than guessing it from the string alone.
func ParseCoordinate(str string, pos *board.Position, z *board.ZobristTable) (board.Move, error) {
	if str == NullMove {
		return board.Move{}, fmt.Errorf("%w: null move has no board representation", ErrInvalidMove)
	}

	candidate, err := board.ParseMove(str)
	if err != nil {
		return board.Move{}, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}

	legal := movegen.GenerateLegalMoves(pos, z)
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if m.From == candidate.From && m.To == candidate.To && samePromotion(m.Flag, candidate.Flag) {
			return m, nil
		}
	}
	return board.Move{}, fmt.Errorf("%w: %q is not a legal move", ErrInvalidMove, str)
}

func samePromotion(a, b board.MoveFlag) bool {
	if a.IsPromotion() != b.IsPromotion() {
		return false
	}
	if !a.IsPromotion() {
		return true
	}
	return a.PromotionPiece() == b.PromotionPiece()
}

// SAN renders a move in standard algebraic notation, given the position it is played
// from. That position is used for disambiguation; the check/checkmate suffix comes from
// making the move on a copy of it.
func SAN(m board.Move, pos *board.Position, z *board.ZobristTable) string {
	if m.Flag.IsCastle() {
		var s string
		if m.Flag == board.KingSideCastle {
			s = "O-O"
		} else {
			s = "O-O-O"
		}
		return s + suffix(m, pos, z)
	}

	_, piece, _ := pos.PieceAt(m.From)

	var sb strings.Builder
	if piece != board.Pawn {
		sb.WriteString(strings.ToUpper(piece.String()))
		sb.WriteString(disambiguate(m, pos, z, piece))
	} else if m.Flag.IsCapture() {
		sb.WriteRune(rune('a' + m.From.File()))
	}

	if m.Flag.IsCapture() {
		sb.WriteRune('x')
	}
	sb.WriteString(m.To.String())

	if m.Flag.IsPromotion() {
		sb.WriteRune('=')
		sb.WriteString(strings.ToUpper(m.Flag.PromotionPiece().String()))
	}

	sb.WriteString(suffix(m, pos, z))
	return sb.String()
}

// disambiguate returns the minimal from-square qualifier needed to distinguish m from
// any other legal move of the same piece kind to the same destination: file if that
// alone suffices, else rank, else both.
func disambiguate(m board.Move, pos *board.Position, z *board.ZobristTable, piece board.Piece) string {
	legal := movegen.GenerateLegalMoves(pos, z)

	var sameFile, sameRank, ambiguous bool
	for i := 0; i < legal.Len(); i++ {
		o := legal.Get(i)
		if o.From == m.From || o.To != m.To {
			continue
		}
		_, op, ok := pos.PieceAt(o.From)
		if !ok || op != piece {
			continue
		}
		ambiguous = true
		if o.From.File() == m.From.File() {
			sameFile = true
		}
		if o.From.Rank() == m.From.Rank() {
			sameRank = true
		}
	}
	if !ambiguous {
		return ""
	}
	if !sameFile {
		return m.From.File().String()
	}
	if !sameRank {
		return m.From.Rank().String()
	}
	return m.From.String()
}

func suffix(m board.Move, pos *board.Position, z *board.ZobristTable) string {
	next := *pos
	next.MakeMove(m, z)

	if !next.IsChecked(next.Turn) {
		return ""
	}
	if movegen.HasLegalMove(&next, z) {
		return "+"
	}
	return "#"
}

// ParseSAN parses standard algebraic notation (with or without check/mate decoration,
// and accepting "0-0"/"0-0-0" and undecorated promotions like "e8Q") against the legal
// moves available in pos.
func ParseSAN(str string, pos *board.Position, z *board.ZobristTable) (board.Move, error) {
	clean := strings.TrimRight(str, "+#!?")
	clean = strings.ReplaceAll(clean, "0-0-0", "O-O-O")
	clean = strings.ReplaceAll(clean, "0-0", "O-O")

	legal := movegen.GenerateLegalMoves(pos, z)

	if clean == "O-O" || clean == "O-O-O" {
		want := board.KingSideCastle
		if clean == "O-O-O" {
			want = board.QueenSideCastle
		}
		for i := 0; i < legal.Len(); i++ {
			if m := legal.Get(i); m.Flag == want {
				return m, nil
			}
		}
		return board.Move{}, fmt.Errorf("%w: %q is not a legal move", ErrInvalidMove, str)
	}

	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		full := strings.TrimRight(SAN(m, pos, z), "+#")
		if full == clean || sanCore(m, pos) == clean {
			return m, nil
		}
	}
	return board.Move{}, fmt.Errorf("%w: %q is not a legal move", ErrInvalidMove, str)
}

// sanCore renders a move's SAN form without the trailing check/mate suffix, so that
// ParseSAN can match input that was stripped of +/#/!/? but might also lack '=' before
// a promotion letter (e.g. "e8Q").
func sanCore(m board.Move, pos *board.Position) string {
	if m.Flag.IsCastle() {
		if m.Flag == board.KingSideCastle {
			return "O-O"
		}
		return "O-O-O"
	}

	_, piece, _ := pos.PieceAt(m.From)

	var sb strings.Builder
	if piece != board.Pawn {
		sb.WriteString(strings.ToUpper(piece.String()))
	} else if m.Flag.IsCapture() {
		sb.WriteRune(rune('a' + m.From.File()))
	}
	if m.Flag.IsCapture() {
		sb.WriteRune('x')
	}
	sb.WriteString(m.To.String())
	if m.Flag.IsPromotion() {
		sb.WriteString(strings.ToUpper(m.Flag.PromotionPiece().String()))
	}
	return sb.String()
}
