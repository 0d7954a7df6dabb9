// Package uci contains a driver for using the engine under a UCI-like protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
// See: https://en.wikipedia.org/wiki/Universal_Chess_Interface
package uci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/halberd-chess/halberd/pkg/board"
	"github.com/halberd-chess/halberd/pkg/board/fen"
	"github.com/halberd-chess/halberd/pkg/engine"
	"github.com/halberd-chess/halberd/pkg/eval"
	"github.com/halberd-chess/halberd/pkg/notation"
	"github.com/halberd-chess/halberd/pkg/search"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

const ProtocolName = "uci"

// Driver implements a UCI-like driver for an engine. It is activated once "uci" is
// received.
type Driver struct {
	e *engine.Engine

	out chan<- string

	active atomic.Bool // a "go" is in flight, awaiting its bestmove

	quit   chan struct{}
	closed atomic.Bool
}

// NewDriver starts a driver that reads lines from in and writes protocol output to
// the returned channel, until in is closed, "quit" is received, or Close is called.
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
	if d.closed.CAS(false, true) {
		close(d.quit)
	}
}

func (d *Driver) Closed() <-chan struct{} {
	return d.quit
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "UCI protocol initialized")

	// The "uci" line that selected this protocol was read before the driver started,
	// so answer it here.
	d.dispatch(ctx, ProtocolName)

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}
			d.dispatch(ctx, line)

		case <-d.quit:
			_, _ = d.e.Halt(ctx)
			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) dispatch(ctx context.Context, line string) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "uci":
		// Identify the engine and declare the dialect ready; this engine exposes no
		// configurable options so no "option" lines are sent.
		d.out <- fmt.Sprintf("id name %v", d.e.Name())
		d.out <- fmt.Sprintf("id author %v", d.e.Author())
		d.out <- "uciok"

	case "isready":
		d.out <- "readyok"

	case "debug":
		// No debug-mode distinction; every received/sent line is already logged at
		// Debug level by the stdin/stdout plumbing.

	case "ucinewgame":
		_, _ = d.e.Halt(ctx)
		if err := d.e.NewGame(ctx); err != nil {
			logw.Errorf(ctx, "ucinewgame failed: %v", err)
		}

	case "position":
		d.handlePosition(ctx, args, line)

	case "go":
		d.handleGo(ctx, args)

	case "stop":
		pv, err := d.e.Halt(ctx)
		if err == nil {
			d.sendBestMove(pv)
		}

	case "quit":
		d.Close()

	default:
		logw.Warningf(ctx, "Unknown command %q: %v", cmd, args)
	}
}

// handlePosition implements:
//
//	position startpos [moves m1 m2 ...]
//	position fen <FEN> [moves m1 m2 ...]
func (d *Driver) handlePosition(ctx context.Context, args []string, line string) {
	_, _ = d.e.Halt(ctx)

	if len(args) == 0 {
		logw.Errorf(ctx, "Empty position command: %v", line)
		return
	}

	var descriptor string
	rest := args
	switch args[0] {
	case "startpos":
		descriptor = fen.Initial
		rest = args[1:]
	case "fen":
		if len(args) < 7 {
			logw.Errorf(ctx, "Truncated FEN in position command: %v", line)
			return
		}
		descriptor = strings.Join(args[1:7], " ")
		rest = args[7:]
	default:
		logw.Errorf(ctx, "Invalid position command: %v", line)
		return
	}

	if err := d.e.Reset(ctx, descriptor); err != nil {
		logw.Errorf(ctx, "Invalid position %q: %v", descriptor, err)
		return
	}

	move := false
	for _, arg := range rest {
		if arg == "moves" {
			move = true
			continue
		}
		if !move {
			continue
		}
		if err := d.e.Move(ctx, arg); err != nil {
			logw.Errorf(ctx, "Invalid move %q in %v: %v", arg, line, err)
			return
		}
	}
}

// handleGo implements:
//
//	go [depth N] [movetime ms] [wtime ms] [btime ms] [winc ms] [binc ms]
//	   [movestogo N] [infinite]
func (d *Driver) handleGo(ctx context.Context, args []string) {
	_, _ = d.e.Halt(ctx)

	var depth int
	var wtime, btime, winc, binc, movetime time.Duration
	movestogo := 0
	infinite := false

	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() (int, bool) {
			i++
			if i >= len(args) {
				return 0, false
			}
			n, err := strconv.Atoi(args[i])
			return n, err == nil
		}

		switch arg {
		case "depth":
			if n, ok := next(); ok {
				depth = n
			}
		case "movetime":
			if n, ok := next(); ok {
				movetime = time.Duration(n) * time.Millisecond
			}
		case "wtime":
			if n, ok := next(); ok {
				wtime = time.Duration(n) * time.Millisecond
			}
		case "btime":
			if n, ok := next(); ok {
				btime = time.Duration(n) * time.Millisecond
			}
		case "winc":
			if n, ok := next(); ok {
				winc = time.Duration(n) * time.Millisecond
			}
		case "binc":
			if n, ok := next(); ok {
				binc = time.Duration(n) * time.Millisecond
			}
		case "movestogo":
			if n, ok := next(); ok {
				movestogo = n
			}
		case "infinite":
			infinite = true
		}
	}

	timeLimit := movetime
	if timeLimit == 0 && !infinite {
		own, inc := wtime, winc
		if d.e.Turn() == board.Black {
			own, inc = btime, binc
		}
		if own > 0 {
			timeLimit = timeBudget(own, inc, movestogo)
		}
	}

	// No poll hook: this driver's stdin loop and the search run on different
	// goroutines already (Analyze launches its own), so cancellation during a search
	// arrives only via an explicit "stop" line, handled by Halt directly.
	d.active.Store(true)
	out, err := d.e.Analyze(ctx, timeLimit, depth, nil, func(pv search.PV) {
		d.out <- formatInfo(pv)
	})
	if err != nil {
		logw.Errorf(ctx, "go failed: %v", err)
		d.active.Store(false)
		return
	}

	go func() {
		pv := <-out
		if d.active.CAS(true, false) {
			d.sendBestMove(pv)
		}
	}()
}

func (d *Driver) sendBestMove(pv search.PV) {
	if len(pv.Moves) == 0 {
		d.out <- fmt.Sprintf("bestmove %v", notation.NullMove)
		return
	}
	d.out <- fmt.Sprintf("bestmove %v", notation.Coordinate(pv.Moves[0]))
}

// timeBudget implements the time-budget derivation: with a known number of moves to
// the next time control, split the remaining clock (plus increment) evenly across
// them with a 2-move safety margin; otherwise assume a 30-move horizon. The result is
// clamped to at most a third of the remaining clock, and — so long as there is more
// than 200ms left — to at least 50ms, with an absolute floor of 10ms.
func timeBudget(own, inc time.Duration, movestogo int) time.Duration {
	var budget time.Duration
	if movestogo > 0 {
		budget = own/time.Duration(movestogo+2) + inc
	} else {
		budget = own/30 + 3*inc/4
	}

	if max := own / 3; budget > max {
		budget = max
	}
	min := 10 * time.Millisecond
	if own > 200*time.Millisecond {
		min = 50 * time.Millisecond
	}
	if budget < min {
		budget = min
	}
	return budget
}

// formatInfo renders one completed iteration as an "info" line:
//
//	info depth <d> score cp <n>|mate <n> nodes <n> time <ms> nps <n> pv <moves...>
func formatInfo(pv search.PV) string {
	parts := []string{"info", fmt.Sprintf("depth %v", pv.Depth)}

	if eval.IsMateScore(pv.Score) {
		plies := eval.MatePly(pv.Score)
		moves := (plies + 1) / 2
		if pv.Score < 0 {
			moves = -moves
		}
		parts = append(parts, fmt.Sprintf("score mate %v", moves))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %v", int(pv.Score)))
	}

	parts = append(parts, fmt.Sprintf("nodes %v", pv.Nodes))
	parts = append(parts, fmt.Sprintf("time %v", pv.Time.Milliseconds()))
	if pv.Time > 0 {
		nps := pv.Nodes * uint64(time.Second) / uint64(pv.Time)
		parts = append(parts, fmt.Sprintf("nps %v", nps))
	}

	if len(pv.Moves) > 0 {
		coords := make([]string, len(pv.Moves))
		for i, m := range pv.Moves {
			coords[i] = notation.Coordinate(m)
		}
		parts = append(parts, "pv "+strings.Join(coords, " "))
	}

	return strings.Join(parts, " ")
}
