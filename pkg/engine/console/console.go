// Package console implements a minimal line-oriented REPL for driving an engine
// interactively, independent of the UCI-like dialect: "move <coord>", "fen", "go",
// "new" and "quit".
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/halberd-chess/halberd/pkg/board"
	"github.com/halberd-chess/halberd/pkg/engine"
	"github.com/halberd-chess/halberd/pkg/notation"
	"github.com/halberd-chess/halberd/pkg/search"
	"github.com/seekerror/logw"
)

const ProtocolName = "console"

// Driver implements a console driver for interactive/manual use.
type Driver struct {
	e *engine.Engine

	out chan<- string

	quit   chan struct{}
	closed atomic.Bool
	active atomic.Bool // a "go" is in flight, awaiting its bestmove
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		e:    e,
		out:  out,
		quit: make(chan struct{}),
	}
	go d.process(ctx, in)
	return d, out
}

func (d *Driver) Close() {
	if d.closed.CompareAndSwap(false, true) {
		close(d.quit)
	}
}

func (d *Driver) Closed() <-chan struct{} {
	return d.quit
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "Console protocol initialized")

	d.out <- fmt.Sprintf("engine %v (%v)", d.e.Name(), d.e.Author())
	d.printBoard()

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Fields(line)
			if len(parts) == 0 {
				break
			}
			cmd, args := strings.ToLower(parts[0]), parts[1:]

			switch cmd {
			case "new", "n":
				_, _ = d.e.Halt(ctx)
				if err := d.e.NewGame(ctx); err != nil {
					d.out <- fmt.Sprintf("reset failed: %v", err)
					break
				}
				d.printBoard()

			case "fen", "position", "p":
				_, _ = d.e.Halt(ctx)

				descriptor := args
				if len(descriptor) < 6 {
					d.out <- "fen: expected six fields"
					break
				}
				if err := d.e.Reset(ctx, strings.Join(descriptor[:6], " ")); err != nil {
					d.out <- fmt.Sprintf("invalid position: %v", err)
					break
				}
				d.printBoard()

			case "move", "m":
				if len(args) == 0 {
					d.out <- "move: expected a coordinate move"
					break
				}
				if err := d.e.Move(ctx, args[0]); err != nil {
					d.out <- fmt.Sprintf("illegal move: %v", err)
					break
				}
				d.printBoard()

			case "depth", "d":
				if len(args) > 0 {
					depth, _ := strconv.Atoi(args[0])
					d.e.SetDepth(depth)
				}

			case "hash":
				if len(args) > 0 {
					entries, _ := strconv.Atoi(args[0])
					d.e.SetHash(uint64(entries))
				}

			case "go", "g":
				_, _ = d.e.Halt(ctx)

				depth := 0
				if len(args) > 0 {
					depth, _ = strconv.Atoi(args[0])
				}

				out, err := d.e.Analyze(ctx, 0, depth, nil, func(pv search.PV) {
					d.out <- formatPV(pv)
				})
				if err != nil {
					d.out <- fmt.Sprintf("go failed: %v", err)
					break
				}
				d.active.Store(true)

				go func() {
					pv := <-out
					if d.active.CompareAndSwap(true, false) {
						d.searchCompleted(pv)
					}
				}()

			case "stop", "halt":
				pv, err := d.e.Halt(ctx)
				if err == nil {
					d.searchCompleted(pv)
				}

			case "quit", "exit", "q":
				_, _ = d.e.Halt(ctx)
				return

			default:
				// Assume a bare coordinate move if not a recognized command.
				if err := d.e.Move(ctx, cmd); err != nil {
					d.out <- fmt.Sprintf("unknown command or illegal move %q", cmd)
				} else {
					d.printBoard()
				}
			}

		case <-d.quit:
			_, _ = d.e.Halt(ctx)
			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) searchCompleted(pv search.PV) {
	if len(pv.Moves) == 0 {
		d.out <- "bestmove (none)"
		return
	}
	d.out <- fmt.Sprintf("bestmove %v", notation.Coordinate(pv.Moves[0]))
}

func formatPV(pv search.PV) string {
	coords := make([]string, len(pv.Moves))
	for i, m := range pv.Moves {
		coords[i] = notation.Coordinate(m)
	}
	return fmt.Sprintf("depth %v  score %v  nodes %v  pv %v", pv.Depth, pv.Score, pv.Nodes, strings.Join(coords, " "))
}

const (
	files      = "    a   b   c   d   e   f   g   h"
	horizontal = "  ---------------------------------"
	vertical   = " | "
)

func (d *Driver) printBoard() {
	pos := d.e.Snapshot()

	d.out <- ""
	d.out <- files
	d.out <- horizontal

	var sb strings.Builder
	for r := int(board.NumRanks) - 1; r >= 0; r-- {
		sb.Reset()
		sb.WriteString(board.Rank(r).String())
		sb.WriteString(vertical)
		for f := board.ZeroFile; f < board.NumFiles; f++ {
			sq := board.NewSquare(f, board.Rank(r))
			if color, piece, ok := pos.PieceAt(sq); ok {
				sb.WriteString(printPiece(color, piece))
			} else {
				sb.WriteString(" ")
			}
			sb.WriteString(vertical)
		}
		d.out <- sb.String()
		d.out <- horizontal
	}
	d.out <- files
	d.out <- ""
	d.out <- fmt.Sprintf("fen:    %v", d.e.Position())
	d.out <- fmt.Sprintf("result: %v, hash: 0x%x", d.e.Outcome(), pos.Hash)
	d.out <- ""
}

func printPiece(c board.Color, p board.Piece) string {
	if c == board.White {
		return strings.ToUpper(p.String())
	}
	return strings.ToLower(p.String())
}
