// Package eval contains static position evaluation: material, piece-square tables,
// pawn structure, king safety, mobility and rook-file terms, all summed into a single
// centipawn Score from White's perspective.
package eval

import (
	"context"

	"github.com/halberd-chess/halberd/pkg/board"
)

// Evaluator is a static position evaluator.
type Evaluator interface {
	// Evaluate returns the position score in centipawns, from White's perspective.
	Evaluate(ctx context.Context, pos *board.Position) Score
}

// Standard is the engine's default evaluator: material, bishop pair, piece-square
// tables, pawn structure, king safety, mobility and rook-file terms.
type Standard struct{}

// NominalValue is the absolute material value of a piece kind, in centipawns. The King
// is not counted in material (returns 0).
func NominalValue(p board.Piece) Score {
	switch p {
	case board.Pawn:
		return 100
	case board.Knight:
		return 320
	case board.Bishop:
		return 330
	case board.Rook:
		return 500
	case board.Queen:
		return 900
	default:
		return 0
	}
}

// NominalValueGain is the nominal material gain a move would realize, used by move
// ordering (MVV-LVA) rather than by this evaluator.
func NominalValueGain(m board.Move, pos *board.Position) Score {
	var gain Score
	if m.Flag.IsCapture() {
		if m.Flag == board.EnPassantCapture {
			gain += NominalValue(board.Pawn)
		} else if _, captured, ok := pos.PieceAt(m.To); ok {
			gain += NominalValue(captured)
		}
	}
	if m.Flag.IsPromotion() {
		gain += NominalValue(m.Flag.PromotionPiece()) - NominalValue(board.Pawn)
	}
	return gain
}

func (Standard) Evaluate(_ context.Context, pos *board.Position) Score {
	var score Score
	score += materialScore(pos)
	score += bishopPairScore(pos)
	score += pieceSquareScore(pos)
	score += pawnStructureScore(pos)
	score += kingSafetyScore(pos)
	score += mobilityScore(pos)
	score += rookFileScore(pos)
	return Crop(score)
}

func materialScore(pos *board.Position) Score {
	var score Score
	for p := board.Pawn; p < board.NumPieces; p++ {
		diff := pos.Pieces[board.White][p].PopCount() - pos.Pieces[board.Black][p].PopCount()
		score += Score(diff) * NominalValue(p)
	}
	return score
}

func bishopPairScore(pos *board.Position) Score {
	var score Score
	if pos.Pieces[board.White][board.Bishop].PopCount() >= 2 {
		score += 30
	}
	if pos.Pieces[board.Black][board.Bishop].PopCount() >= 2 {
		score -= 30
	}
	return score
}

func pieceSquareScore(pos *board.Position) Score {
	var score Score
	for c := board.ZeroColor; c < board.NumColors; c++ {
		sign := Score(1)
		if c == board.Black {
			sign = -1
		}
		for p := board.Pawn; p < board.NumPieces; p++ {
			bb := pos.Pieces[c][p]
			for bb != board.EmptyBitboard {
				sq := bb.LastPopSquare()
				bb &^= board.BitMask(sq)
				score += sign * Score(pieceSquareValue(c, p, sq))
			}
		}
	}
	return score
}

// pawnStructureScore sums the doubled/isolated/passed pawn terms, signed from White's
// perspective.
func pawnStructureScore(pos *board.Position) Score {
	white := pawnStructureForColor(pos, board.White)
	black := pawnStructureForColor(pos, board.Black)
	return white - black
}

func pawnStructureForColor(pos *board.Position, c board.Color) Score {
	own := pos.Pieces[c][board.Pawn]
	enemy := pos.Pieces[c.Opponent()][board.Pawn]

	var score Score
	for bb := own; bb != board.EmptyBitboard; {
		sq := bb.LastPopSquare()
		bb &^= board.BitMask(sq)

		f := sq.File()
		fileMask := board.BitFile(f)
		if (own&fileMask)&^board.BitMask(sq) != board.EmptyBitboard {
			score -= 10 // doubled
		}

		adjacent := adjacentFileMask(f)
		if own&adjacent == board.EmptyBitboard {
			score -= 15 // isolated
		}

		if isPassed(sq, c, enemy, f, adjacent) {
			r := advancementRank(sq, c)
			score += 10 + Score(r*r)
		}
	}
	return score
}

func adjacentFileMask(f board.File) board.Bitboard {
	var mask board.Bitboard
	if f > board.FileA {
		mask |= board.BitFile(f - 1)
	}
	if f < board.FileH {
		mask |= board.BitFile(f + 1)
	}
	return mask
}

// advancementRank returns the pawn's rank counted from its own side's first rank,
// starting at 0, i.e. 1 for a pawn still on its starting rank.
func advancementRank(sq board.Square, c board.Color) int {
	if c == board.White {
		return int(sq.Rank())
	}
	return int(board.Rank7 - sq.Rank() + 1)
}

func isPassed(sq board.Square, c board.Color, enemyPawns board.Bitboard, f board.File, adjacent board.Bitboard) bool {
	ahead := aheadMask(sq, c)
	return enemyPawns&(board.BitFile(f)|adjacent)&ahead == board.EmptyBitboard
}

// aheadMask returns every square, on any file, whose rank is further advanced (from c's
// viewpoint) than sq's own rank. isPassed restricts it to the relevant files.
func aheadMask(sq board.Square, c board.Color) board.Bitboard {
	var mask board.Bitboard
	r := int(sq.Rank())
	if c == board.White {
		for rr := r + 1; rr < int(board.NumRanks); rr++ {
			mask |= board.BitRank(board.Rank(rr))
		}
	} else {
		for rr := r - 1; rr >= 0; rr-- {
			mask |= board.BitRank(board.Rank(rr))
		}
	}
	return mask
}

// kingSafetyScore sums the king-shelter term for both sides, signed from White's
// perspective.
func kingSafetyScore(pos *board.Position) Score {
	return kingSafetyForColor(pos, board.White) - kingSafetyForColor(pos, board.Black)
}

func kingSafetyForColor(pos *board.Position, c board.Color) Score {
	kings := pos.Pieces[c][board.King]
	if kings == board.EmptyBitboard {
		return 0
	}
	kingSq := kings.LastPopSquare()
	pawns := pos.Pieces[c][board.Pawn]

	var score Score
	kf := int(kingSq.File())
	for df := -1; df <= 1; df++ {
		f := kf + df
		if f < 0 || f >= int(board.NumFiles) {
			continue
		}
		fileMask := board.BitFile(board.File(f))
		filePawns := pawns & fileMask
		if filePawns == board.EmptyBitboard {
			score -= 15
			continue
		}
		if shelteredBy(kingSq, c, filePawns) {
			score += 10
		}
	}
	return score
}

// shelteredBy reports whether any pawn in filePawns sits one or two ranks in front of
// the king, from c's perspective.
func shelteredBy(kingSq board.Square, c board.Color, filePawns board.Bitboard) bool {
	kr := int(kingSq.Rank())
	for bb := filePawns; bb != board.EmptyBitboard; {
		sq := bb.LastPopSquare()
		bb &^= board.BitMask(sq)

		pr := int(sq.Rank())
		var delta int
		if c == board.White {
			delta = pr - kr
		} else {
			delta = kr - pr
		}
		if delta == 1 || delta == 2 {
			return true
		}
	}
	return false
}

// mobilityScore sums destination-square counts (ignoring king safety) for every
// knight/bishop/rook/queen, signed from White's perspective and scaled by 3.
func mobilityScore(pos *board.Position) Score {
	occ := pos.Occupied()
	white := mobilityForColor(pos, board.White, occ)
	black := mobilityForColor(pos, board.Black, occ)
	return (white - black) * 3
}

func mobilityForColor(pos *board.Position, c board.Color, occ board.Bitboard) Score {
	own := pos.Pieces[c][board.NoPiece]
	var count int
	for _, p := range [4]board.Piece{board.Knight, board.Bishop, board.Rook, board.Queen} {
		bb := pos.Pieces[c][p]
		for bb != board.EmptyBitboard {
			sq := bb.LastPopSquare()
			bb &^= board.BitMask(sq)
			count += (board.Attackboard(occ, sq, p) &^ own).PopCount()
		}
	}
	return Score(count)
}

// rookFileScore sums the open/semi-open file bonus for every rook, signed from White's
// perspective.
func rookFileScore(pos *board.Position) Score {
	return rookFileForColor(pos, board.White) - rookFileForColor(pos, board.Black)
}

func rookFileForColor(pos *board.Position, c board.Color) Score {
	own := pos.Pieces[c][board.Pawn]
	enemy := pos.Pieces[c.Opponent()][board.Pawn]

	var score Score
	for bb := pos.Pieces[c][board.Rook]; bb != board.EmptyBitboard; {
		sq := bb.LastPopSquare()
		bb &^= board.BitMask(sq)

		fileMask := board.BitFile(sq.File())
		if own&fileMask != board.EmptyBitboard {
			continue
		}
		if enemy&fileMask == board.EmptyBitboard {
			score += 20 // open file
		} else {
			score += 10 // semi-open file
		}
	}
	return score
}
