// Package movegen generates pseudo-legal and legal moves for a position, and exposes
// a perft counter used to cross-check generator correctness against known node counts.
package movegen

import (
	"github.com/halberd-chess/halberd/pkg/board"
)

// GeneratePseudoLegalMoves generates every pseudo-legal move for the side to move,
// without filtering moves that leave the mover's own king in check.
func GeneratePseudoLegalMoves(pos *board.Position) board.MoveList {
	var list board.MoveList
	turn := pos.Turn
	own := pos.Pieces[turn][board.NoPiece]
	occ := pos.Occupied()

	genPawnMoves(pos, &list)

	for _, piece := range [4]board.Piece{board.Knight, board.Bishop, board.Rook, board.Queen} {
		bb := pos.Pieces[turn][piece]
		for bb != board.EmptyBitboard {
			from := bb.LastPopSquare()
			bb &^= board.BitMask(from)

			targets := board.Attackboard(occ, from, piece) &^ own
			emitTargets(&list, from, targets, occ)
		}
	}

	genKingMoves(pos, &list, own, occ)
	genCastling(pos, &list)

	return list
}

func emitTargets(list *board.MoveList, from board.Square, targets, occ board.Bitboard) {
	for targets != board.EmptyBitboard {
		to := targets.LastPopSquare()
		targets &^= board.BitMask(to)

		flag := board.Quiet
		if occ.IsSet(to) {
			flag = board.Capture
		}
		list.Add(board.Move{From: from, To: to, Flag: flag})
	}
}

func genKingMoves(pos *board.Position, list *board.MoveList, own, occ board.Bitboard) {
	turn := pos.Turn
	kings := pos.Pieces[turn][board.King]
	if kings == board.EmptyBitboard {
		return
	}
	from := kings.LastPopSquare()
	targets := board.KingAttackboard(from) &^ own
	emitTargets(list, from, targets, occ)
}

func genPawnMoves(pos *board.Position, list *board.MoveList) {
	turn := pos.Turn
	pawns := pos.Pieces[turn][board.Pawn]
	occ := pos.Occupied()
	enemy := pos.Pieces[turn.Opponent()][board.NoPiece]
	promoRank := board.PawnPromotionRank(turn)

	single := board.PawnMoveboard(occ, turn, pawns)
	for bb := single; bb != board.EmptyBitboard; {
		to := bb.LastPopSquare()
		bb &^= board.BitMask(to)

		var from board.Square
		if turn == board.White {
			from = to - 8
		} else {
			from = to + 8
		}
		addPawnAdvance(list, from, to, promoRank)
	}

	jumpRank := board.PawnJumpRank(turn)
	jumped := single
	if turn == board.White {
		jumped = (single << 8) &^ occ
	} else {
		jumped = (single >> 8) &^ occ
	}
	jumped &= jumpRank
	for bb := jumped; bb != board.EmptyBitboard; {
		to := bb.LastPopSquare()
		bb &^= board.BitMask(to)

		var from board.Square
		if turn == board.White {
			from = to - 16
		} else {
			from = to + 16
		}
		list.Add(board.Move{From: from, To: to, Flag: board.DoublePawnPush})
	}

	for bb := pawns; bb != board.EmptyBitboard; {
		from := bb.LastPopSquare()
		bb &^= board.BitMask(from)

		targets := board.PawnCaptureboard(turn, board.BitMask(from)) & enemy
		for t := targets; t != board.EmptyBitboard; {
			to := t.LastPopSquare()
			t &^= board.BitMask(to)
			addPawnCapture(list, from, to, promoRank)
		}
	}

	if pos.EnPassant != board.NoSquare {
		attackers := board.PawnCaptureboard(turn.Opponent(), board.BitMask(pos.EnPassant)) & pawns
		for bb := attackers; bb != board.EmptyBitboard; {
			from := bb.LastPopSquare()
			bb &^= board.BitMask(from)
			list.Add(board.Move{From: from, To: pos.EnPassant, Flag: board.EnPassantCapture})
		}
	}
}

func addPawnAdvance(list *board.MoveList, from, to board.Square, promoRank board.Bitboard) {
	if promoRank.IsSet(to) {
		list.Add(board.Move{From: from, To: to, Flag: board.KnightPromotion})
		list.Add(board.Move{From: from, To: to, Flag: board.BishopPromotion})
		list.Add(board.Move{From: from, To: to, Flag: board.RookPromotion})
		list.Add(board.Move{From: from, To: to, Flag: board.QueenPromotion})
		return
	}
	list.Add(board.Move{From: from, To: to, Flag: board.Quiet})
}

func addPawnCapture(list *board.MoveList, from, to board.Square, promoRank board.Bitboard) {
	if promoRank.IsSet(to) {
		list.Add(board.Move{From: from, To: to, Flag: board.KnightPromotionCapture})
		list.Add(board.Move{From: from, To: to, Flag: board.BishopPromotionCapture})
		list.Add(board.Move{From: from, To: to, Flag: board.RookPromotionCapture})
		list.Add(board.Move{From: from, To: to, Flag: board.QueenPromotionCapture})
		return
	}
	list.Add(board.Move{From: from, To: to, Flag: board.Capture})
}

func genCastling(pos *board.Position, list *board.MoveList) {
	turn := pos.Turn
	occ := pos.Occupied()
	opp := turn.Opponent()

	if turn == board.White {
		if pos.Castling.IsAllowed(board.WhiteKingSideCastle) &&
			!occ.IsSet(board.F1) && !occ.IsSet(board.G1) &&
			!pos.IsAttacked(board.E1, opp) && !pos.IsAttacked(board.F1, opp) && !pos.IsAttacked(board.G1, opp) {
			list.Add(board.Move{From: board.E1, To: board.G1, Flag: board.KingSideCastle})
		}
		if pos.Castling.IsAllowed(board.WhiteQueenSideCastle) &&
			!occ.IsSet(board.B1) && !occ.IsSet(board.C1) && !occ.IsSet(board.D1) &&
			!pos.IsAttacked(board.E1, opp) && !pos.IsAttacked(board.D1, opp) && !pos.IsAttacked(board.C1, opp) {
			list.Add(board.Move{From: board.E1, To: board.C1, Flag: board.QueenSideCastle})
		}
		return
	}

	if pos.Castling.IsAllowed(board.BlackKingSideCastle) &&
		!occ.IsSet(board.F8) && !occ.IsSet(board.G8) &&
		!pos.IsAttacked(board.E8, opp) && !pos.IsAttacked(board.F8, opp) && !pos.IsAttacked(board.G8, opp) {
		list.Add(board.Move{From: board.E8, To: board.G8, Flag: board.KingSideCastle})
	}
	if pos.Castling.IsAllowed(board.BlackQueenSideCastle) &&
		!occ.IsSet(board.B8) && !occ.IsSet(board.C8) && !occ.IsSet(board.D8) &&
		!pos.IsAttacked(board.E8, opp) && !pos.IsAttacked(board.D8, opp) && !pos.IsAttacked(board.C8, opp) {
		list.Add(board.Move{From: board.E8, To: board.C8, Flag: board.QueenSideCastle})
	}
}

// GenerateLegalMoves generates every pseudo-legal move and filters out any that leave
// the mover's own king attacked.
func GenerateLegalMoves(pos *board.Position, z *board.ZobristTable) board.MoveList {
	pseudo := GeneratePseudoLegalMoves(pos)
	turn := pos.Turn

	var legal board.MoveList
	for i := 0; i < pseudo.Len(); i++ {
		m := pseudo.Get(i)
		next := *pos
		next.MakeMove(m, z)

		kings := next.Pieces[turn][board.King]
		if kings == board.EmptyBitboard {
			continue
		}
		if next.IsAttacked(kings.LastPopSquare(), turn.Opponent()) {
			continue
		}
		legal.Add(m)
	}
	return legal
}

// GenerateLegalCaptures generates every legal capturing (and promotion) move, used by
// quiescence search.
func GenerateLegalCaptures(pos *board.Position, z *board.ZobristTable) board.MoveList {
	all := GenerateLegalMoves(pos, z)

	var captures board.MoveList
	for i := 0; i < all.Len(); i++ {
		m := all.Get(i)
		if m.Flag.IsCapture() || m.Flag.IsPromotion() {
			captures.Add(m)
		}
	}
	return captures
}

// HasLegalMove reports whether the side to move has at least one legal move,
// without materializing the full list.
func HasLegalMove(pos *board.Position, z *board.ZobristTable) bool {
	pseudo := GeneratePseudoLegalMoves(pos)
	turn := pos.Turn

	for i := 0; i < pseudo.Len(); i++ {
		m := pseudo.Get(i)
		next := *pos
		next.MakeMove(m, z)

		kings := next.Pieces[turn][board.King]
		if kings == board.EmptyBitboard {
			continue
		}
		if !next.IsAttacked(kings.LastPopSquare(), turn.Opponent()) {
			return true
		}
	}
	return false
}

// Perft counts the number of leaf nodes reachable from pos at exactly the given depth,
// used to validate the move generator against known reference counts.
func Perft(pos *board.Position, depth int, z *board.ZobristTable) uint64 {
	if depth == 0 {
		return 1
	}

	moves := GenerateLegalMoves(pos, z)
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		child := *pos
		child.MakeMove(moves.Get(i), z)
		nodes += Perft(&child, depth-1, z)
	}
	return nodes
}
