// perft is a movegen conformance tool. See: https://www.chessprogramming.org/Perft_Results.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/halberd-chess/halberd/pkg/board"
	"github.com/halberd-chess/halberd/pkg/board/fen"
	"github.com/halberd-chess/halberd/pkg/movegen"
	"github.com/seekerror/logw"
)

var (
	depth    = flag.Int("depth", 4, "Search depth")
	position = flag.String("fen", "", "Start position (defaults to standard)")
	divide   = flag.Bool("divide", false, "Divide counts by the initial move, at the deepest depth")
)

func main() {
	ctx := context.Background()
	flag.Parse()

	if *position == "" {
		*position = fen.Initial
	}

	z := board.NewZobristTable(0)
	pos, err := fen.Decode(*position, z)
	if err != nil {
		logw.Exitf(ctx, "Invalid fen %q: %v", *position, err)
	}

	for i := 1; i <= *depth; i++ {
		start := time.Now()
		nodes := run(pos, z, i, *divide && i == *depth)
		duration := time.Since(start)

		fmt.Printf("perft,%v,%v,%v,%v\n", *position, i, nodes, duration.Microseconds())
	}
}

func run(pos *board.Position, z *board.ZobristTable, depth int, d bool) uint64 {
	if !d {
		return movegen.Perft(pos, depth, z)
	}

	var nodes uint64
	legal := movegen.GenerateLegalMoves(pos, z)
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		next := *pos
		next.MakeMove(m, z)

		count := movegen.Perft(&next, depth-1, z)
		fmt.Printf("%v: %v\n", m, count)
		nodes += count
	}
	return nodes
}
