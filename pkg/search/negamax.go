// Package search implements negamax alpha-beta search over board.Position values:
// transposition table, killer/history move ordering, null-move pruning, late move
// reductions, check extension, quiescence search and iterative deepening with
// aspiration windows. The search is strictly single-threaded; cooperative cancellation
// and time control are the only concurrency-adjacent concerns (see Control).
package search

import (
	"context"

	"github.com/halberd-chess/halberd/pkg/board"
	"github.com/halberd-chess/halberd/pkg/eval"
	"github.com/halberd-chess/halberd/pkg/movegen"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

const (
	// maxPly mirrors eval.MaxPly; aliased here for readability in search code that
	// reasons about ply directly.
	maxPly     = eval.MaxPly
	aspWindow  = 50
	nullMoveMinDepth = 3
)

// Core bundles everything one negamax search needs beyond the position itself: the
// engine's shared transposition table, killers, history table and move evaluator, plus
// the Zobrist table used to make moves and the cancellation/time Control.
type Core struct {
	Zobrist *board.ZobristTable
	TT      *TranspositionTable
	Killers *Killers
	History *History
	Eval    eval.Evaluator
	Control *Control
}

// Negamax runs a negamax alpha-beta search rooted at pos to the given depth, returning
// the score from the side-to-move's perspective at the root. The best move found is
// recorded in the transposition table rather than returned. doNull permits null-move
// pruning at this node only (children are searched with it enabled again); callers
// searching the real root always pass true.
func (c *Core) Negamax(ctx context.Context, pos *board.Position, depth int, alpha, beta eval.Score, ply int, doNull bool) eval.Score {
	c.Control.Tick()
	if c.Control.IsStopped() || contextx.IsCancelled(ctx) {
		return 0
	}

	if pos.HalfmoveClock >= 100 {
		return 0
	}

	isPV := beta-alpha > 1

	var ttMove board.Move
	if bound, ttDepth, ttScore, move, ok := c.TT.Read(pos.Hash, ply); ok {
		ttMove = move
		if ttDepth >= depth && !isPV {
			switch bound {
			case ExactBound:
				return ttScore
			case LowerBound:
				if ttScore >= beta {
					return beta
				}
			case UpperBound:
				if ttScore <= alpha {
					return alpha
				}
			}
		}
	}

	if depth <= 0 {
		return c.Quiescence(ctx, pos, alpha, beta, ply)
	}

	inCheck := pos.IsChecked(pos.Turn)
	if inCheck {
		depth++
	}

	if doNull && !isPV && !inCheck && depth >= nullMoveMinDepth && ply > 0 && hasNonPawnMaterial(pos) {
		next := *pos
		next.Turn = next.Turn.Opponent()
		next.Hash ^= c.Zobrist.TurnKey()
		if next.EnPassant != board.NoSquare {
			next.Hash ^= c.Zobrist.EnPassantKey(next.EnPassant.File())
			next.EnPassant = board.NoSquare
		}

		r := 2
		if depth >= 6 {
			r = 3
		}
		score := -c.Negamax(ctx, &next, depth-1-r, -beta, -beta+1, ply+1, false)
		if score >= beta {
			return beta
		}
	}

	moves := movegen.GenerateLegalMoves(pos, c.Zobrist)
	if moves.Len() == 0 {
		if inCheck {
			return eval.MatedIn(ply)
		}
		return 0
	}

	scores := scoreMoves(&moves, pos, ttMove, c.Killers, ply, c.History)

	origAlpha := alpha
	var best board.Move
	searched := 0

	for i := 0; i < moves.Len(); i++ {
		selectNext(&moves, scores, i)
		m := moves.Get(i)

		next := *pos
		next.MakeMove(m, c.Zobrist)

		quiet := !m.Flag.IsCapture() && !m.Flag.IsPromotion()
		isKiller := c.Killers.Match(ply, m) >= 0

		var score eval.Score
		if searched == 0 {
			score = -c.Negamax(ctx, &next, depth-1, -beta, -alpha, ply+1, true)
		} else {
			if searched >= 4 && depth >= 3 && !inCheck && quiet && !isKiller {
				r := 1
				if searched >= 8 {
					r = 2
				}
				score = -c.Negamax(ctx, &next, depth-1-r, -alpha-1, -alpha, ply+1, true)
				if score > alpha {
					score = -c.Negamax(ctx, &next, depth-1, -alpha-1, -alpha, ply+1, true)
				}
			} else {
				score = -c.Negamax(ctx, &next, depth-1, -alpha-1, -alpha, ply+1, true)
			}
			if score > alpha && score < beta {
				score = -c.Negamax(ctx, &next, depth-1, -beta, -alpha, ply+1, true)
			}
		}
		searched++

		if c.Control.IsStopped() {
			return 0
		}

		if score >= beta {
			if quiet {
				c.Killers.Update(ply, m)
				c.History.Add(pos.Turn, m, depth)
			}
			c.TT.Write(pos.Hash, LowerBound, depth, beta, m, ply)
			return beta
		}
		if score > alpha {
			alpha = score
			best = m
		}
	}

	bound := UpperBound
	if alpha > origAlpha {
		bound = ExactBound
	}
	c.TT.Write(pos.Hash, bound, depth, alpha, best, ply)
	return alpha
}

func hasNonPawnMaterial(pos *board.Position) bool {
	turn := pos.Turn
	for _, p := range [4]board.Piece{board.Knight, board.Bishop, board.Rook, board.Queen} {
		if pos.Pieces[turn][p] != board.EmptyBitboard {
			return true
		}
	}
	return false
}
