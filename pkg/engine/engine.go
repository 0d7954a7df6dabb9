// Package engine ties the board, movegen, notation, eval and search packages
// together into one long-lived game-playing instance: it owns the Zobrist table,
// transposition table, killer and history tables, and the current position, and
// exposes the lifecycle operations the UCI and console collaborators drive.
package engine

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/halberd-chess/halberd/pkg/board"
	"github.com/halberd-chess/halberd/pkg/board/fen"
	"github.com/halberd-chess/halberd/pkg/eval"
	"github.com/halberd-chess/halberd/pkg/movegen"
	"github.com/halberd-chess/halberd/pkg/notation"
	"github.com/halberd-chess/halberd/pkg/search"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 1, 0)

// Options are the engine's default runtime options, overridden per-search by explicit
// search options if provided.
type Options struct {
	// Depth is the search depth limit. If zero, there is no limit.
	Depth int
	// Hash is the transposition table size, in entries. If zero, the default table
	// size is used.
	Hash uint64
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%v}", o.Depth, o.Hash)
}

// Engine encapsulates game-playing logic: one Zobrist table, transposition table,
// killer and history tables, and the current position, plus at most one active
// search at a time.
type Engine struct {
	name, author string

	zobrist *board.ZobristTable
	tt      *search.TranspositionTable
	killers *search.Killers
	history *search.History
	eval    eval.Evaluator

	seed int64
	opts Options

	pos    *board.Position
	active *handle
	mu     sync.Mutex
}

// handle tracks one in-flight background search. done is closed (never sent to) when
// the search finishes, so that both the caller awaiting the result off Analyze's
// returned channel and a concurrent Halt can each independently learn of completion
// without racing to drain a single value off one channel.
type handle struct {
	control *search.Control
	done    chan struct{}
	result  search.PV
}

// Option is an engine creation option.
type Option func(*Engine)

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithZobrist configures the engine to use the given random seed for its Zobrist
// table instead of the default (which seeds deterministically from zero).
func WithZobrist(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// New creates an engine, initialized to the standard starting position.
func New(ctx context.Context, name, author string, opts ...Option) *Engine {
	e := &Engine{
		name:   name,
		author: author,
		eval:   eval.Standard{},
	}
	for _, fn := range opts {
		fn(e)
	}
	e.zobrist = board.NewZobristTable(e.seed)
	e.killers = &search.Killers{}
	e.history = &search.History{}
	e.newTable()

	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

func (e *Engine) newTable() {
	size := e.opts.Hash
	if size == 0 {
		size = search.DefaultTranspositionTableEntries
	}
	e.tt = search.NewTranspositionTable(size)
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

func (e *Engine) SetDepth(depth int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Depth = depth
}

func (e *Engine) SetHash(entries uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Hash = entries
	e.newTable()
}

// Position returns the current position in board-descriptor form.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.pos)
}

// Snapshot returns a copy of the current position, safe for a caller to inspect or
// render without racing a concurrent Move/Reset.
func (e *Engine) Snapshot() board.Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	return *e.pos
}

// Reset sets the current position from a board descriptor. It halts any active
// search but leaves the transposition table, killers and history untouched: callers
// that want the full new-game reset should call NewGame instead.
func (e *Engine) Reset(ctx context.Context, descriptor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	pos, err := fen.Decode(descriptor, e.zobrist)
	if err != nil {
		return err
	}
	e.pos = pos

	logw.Infof(ctx, "Reset to %v", descriptor)
	return nil
}

// NewGame resets the engine to the starting position and clears the transposition
// table, killers and history, per the new-game protocol signal.
func (e *Engine) NewGame(ctx context.Context) error {
	e.mu.Lock()
	e.tt.Clear()
	e.killers.Clear()
	e.history.Clear()
	e.mu.Unlock()

	logw.Infof(ctx, "New game")
	return e.Reset(ctx, fen.Initial)
}

// Move plays a move given in pure coordinate notation against the current position,
// usually an opponent's or a GUI-relayed move. It halts any active search first.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	m, err := notation.ParseCoordinate(move, e.pos, e.zobrist)
	if err != nil {
		return fmt.Errorf("illegal move %q: %w", move, err)
	}

	e.pos.MakeMove(m, e.zobrist)
	logw.Infof(ctx, "Move %v: %v", notation.Coordinate(m), fen.Encode(e.pos))
	return nil
}

// Turn returns the side to move in the current position.
func (e *Engine) Turn() board.Color {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.pos.Turn
}

// Outcome classifies the current position as ongoing, checkmate, stalemate or a
// draw, per the game-state oracle.
func (e *Engine) Outcome() board.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.pos.Classify(movegen.HasLegalMove(e.pos, e.zobrist))
}

// Analyze launches a background iterative-deepening search of the current position,
// bounded by timeLimit (0 for no limit) and depthLimit (0 for no limit). The returned
// channel receives exactly one PV, sent when the search completes or is halted.
// poll, if non-nil, is invoked by the search every few thousand nodes, so a protocol
// collaborator can drain pending stdin input and call Halt if it demands cancellation.
func (e *Engine) Analyze(ctx context.Context, timeLimit time.Duration, depthLimit int, poll search.PollFunc, onIteration func(search.PV)) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}
	if depthLimit == 0 {
		depthLimit = e.opts.Depth
	}

	root := *e.pos
	control := search.NewControl(timeLimit, poll)
	core := &search.Core{
		Zobrist: e.zobrist,
		TT:      e.tt,
		Killers: e.killers,
		History: e.history,
		Eval:    e.eval,
		Control: control,
	}
	e.history.Decay()

	h := &handle{control: control, done: make(chan struct{})}
	e.active = h

	out := make(chan search.PV, 1)

	logw.Infof(ctx, "Analyze %v, timeLimit=%v, depthLimit=%v", fen.Encode(&root), timeLimit, depthLimit)

	go func() {
		pv := core.IterativeDeepen(ctx, &root, depthLimit, onIteration)
		h.result = pv
		close(h.done)
		out <- pv
	}()
	return out, nil
}

// Halt halts the active search, if any, and returns its best completed PV.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pv, ok := e.haltSearchIfActive(ctx)
	if !ok {
		return search.PV{}, fmt.Errorf("no active search")
	}
	return pv, nil
}

// haltSearchIfActive must be called with e.mu held.
func (e *Engine) haltSearchIfActive(ctx context.Context) (search.PV, bool) {
	if e.active == nil {
		return search.PV{}, false
	}

	h := e.active
	e.active = nil

	h.control.Stop()
	<-h.done
	pv := h.result

	logw.Infof(ctx, "Search halted: %v", pv)
	return pv, true
}

// ReadStdinLines feeds the UCI/console line protocol from stdin, one line per receive,
// closing the channel when stdin is exhausted. Async: the caller picks which driver
// consumes the line stream off the returned channel.
func ReadStdinLines(ctx context.Context) <-chan string {
	ret := make(chan string, 1)
	go func() {
		defer close(ret)

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			logw.Debugf(ctx, "engine <<< %v", scanner.Text())
			ret <- scanner.Text()
		}
	}()
	return ret
}

// WriteStdoutLines drains a driver's outgoing line protocol to stdout until its channel
// is closed, logging each line at debug level for session replay.
func WriteStdoutLines(ctx context.Context, out <-chan string) {
	for line := range out {
		logw.Debugf(ctx, "engine >>> %v", line)
		_, _ = fmt.Fprintln(os.Stdout, line)
	}
}
