package search

import (
	"context"
	"time"

	"github.com/halberd-chess/halberd/pkg/board"
	"github.com/halberd-chess/halberd/pkg/eval"
	"github.com/halberd-chess/halberd/pkg/movegen"
)

// PV is the result of one completed iterative-deepening iteration: the depth reached, the evaluated score, the principal variation and the
// node count and wall-clock time spent.
type PV struct {
	Depth int
	Score eval.Score
	Moves []board.Move
	Nodes uint64
	Time  time.Duration
}

// IterativeDeepen runs negamax at increasing depths starting from 1, up to depthLimit
// (0 means no limit beyond Control's time budget / cancellation). It retains the best
// move and score from the last fully completed iteration: if an iteration is aborted
// partway, its partial result is discarded. If no iteration completes, the returned PV
// has depth 0 and holds just the first legal move (or no move if there is none).
// Depths 4 and up open an aspiration window
// around the previous iteration's score, re-searching with the full window if the
// result falls outside it. onIteration, if non-nil, is invoked with the PV of every
// completed iteration, so a protocol collaborator can report progress as it happens.
func (c *Core) IterativeDeepen(ctx context.Context, root *board.Position, depthLimit int, onIteration func(PV)) PV {
	start := time.Now()
	var best PV
	var prevScore eval.Score

	for depth := 1; depthLimit == 0 || depth <= depthLimit; depth++ {
		if depth > 1 && !c.Control.ShouldStartNextIteration() {
			break
		}

		alpha, beta := eval.MinScore, eval.MaxScore
		if depth >= 4 {
			alpha = prevScore - aspWindow
			beta = prevScore + aspWindow
		}

		score := c.Negamax(ctx, root, depth, alpha, beta, 0, true)
		if score <= alpha || score >= beta {
			score = c.Negamax(ctx, root, depth, eval.MinScore, eval.MaxScore, 0, true)
		}

		if c.Control.IsStopped() {
			break
		}

		prevScore = score
		best = PV{
			Depth: depth,
			Score: score,
			Moves: c.extractPV(root, depth),
			Nodes: c.Control.Nodes(),
			Time:  time.Since(start),
		}
		if onIteration != nil {
			onIteration(best)
		}

		if eval.IsMateScore(score) {
			break
		}
	}

	if len(best.Moves) == 0 {
		if legal := movegen.GenerateLegalMoves(root, c.Zobrist); legal.Len() > 0 {
			best.Moves = []board.Move{legal.Get(0)}
		}
	}
	return best
}

// extractPV reconstructs the principal variation by walking the transposition table's
// best-move chain from root, stopping at depth plies, a TT miss, or a repeated
// position (which would otherwise loop forever on a drawn line).
func (c *Core) extractPV(root *board.Position, depth int) []board.Move {
	seen := map[board.ZobristHash]bool{}
	pos := *root

	var pv []board.Move
	for i := 0; i < depth; i++ {
		if seen[pos.Hash] {
			break
		}
		seen[pos.Hash] = true

		_, _, _, move, ok := c.TT.Read(pos.Hash, i)
		if !ok || move == (board.Move{}) {
			break
		}

		legal := movegen.GenerateLegalMoves(&pos, c.Zobrist)
		found := false
		for j := 0; j < legal.Len(); j++ {
			if legal.Get(j).Equals(move) {
				found = true
				break
			}
		}
		if !found {
			break
		}

		pv = append(pv, move)
		pos.MakeMove(move, c.Zobrist)
	}
	return pv
}
