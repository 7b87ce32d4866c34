// Command simengine serves the sim engine over the wire protocol on stdin
// and stdout, for use with the process driver.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wippyai/enginewrap/driver/sim"
	"github.com/wippyai/enginewrap/wire"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := wire.Serve(ctx, sim.New(), os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "simengine: %v\n", err)
		os.Exit(1)
	}
}
