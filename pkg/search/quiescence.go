package search

import (
	"context"

	"github.com/halberd-chess/halberd/pkg/board"
	"github.com/halberd-chess/halberd/pkg/eval"
	"github.com/halberd-chess/halberd/pkg/movegen"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

// deltaPruningMargin is the centipawn margin added to a captured piece's value before
// comparing against alpha in quiescence's delta pruning.
const deltaPruningMargin = 200

// Quiescence extends the search along capture sequences until the position is "quiet",
// avoiding the horizon effect of evaluating a position mid-exchange. It does not probe
// the transposition table and never extends for checks.
func (c *Core) Quiescence(ctx context.Context, pos *board.Position, alpha, beta eval.Score, ply int) eval.Score {
	c.Control.Tick()
	if c.Control.IsStopped() || contextx.IsCancelled(ctx) {
		return 0
	}

	standPat := eval.Unit(pos.Turn) * c.Eval.Evaluate(ctx, pos)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	captures := movegen.GenerateLegalCaptures(pos, c.Zobrist)
	scores := scoreMoves(&captures, pos, board.Move{}, c.Killers, ply, c.History)

	for i := 0; i < captures.Len(); i++ {
		selectNext(&captures, scores, i)
		m := captures.Get(i)

		if !m.Flag.IsPromotion() && standPat+victimValue(m, pos)+deltaPruningMargin < alpha {
			continue
		}

		next := *pos
		next.MakeMove(m, c.Zobrist)

		score := -c.Quiescence(ctx, &next, -beta, -alpha, ply+1)
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}
