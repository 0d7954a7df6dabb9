package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/halberd-chess/halberd/pkg/engine"
	"github.com/halberd-chess/halberd/pkg/engine/console"
	"github.com/halberd-chess/halberd/pkg/engine/uci"
	"github.com/seekerror/logw"
)

var (
	depth = flag.Int("depth", 0, "Search depth limit (zero for no limit)")
	hash  = flag.Uint64("hash", 0, "Transposition table size, in entries (zero for the default size)")
	seed  = flag.Int64("seed", 0, "Zobrist hashing random seed")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: halberd [options]

HALBERD is a simple UCI-like chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	e := engine.New(ctx, "halberd", "halberd-chess",
		engine.WithOptions(engine.Options{Depth: *depth, Hash: *hash}),
		engine.WithZobrist(*seed),
	)

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	case console.ProtocolName:
		driver, out := console.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported: send %q or %q as the first line", uci.ProtocolName, console.ProtocolName)
	}
}
