// Command inventory tracks kitchen stock on the burger backend.
//
// Usage examples:
//
//	inventory                                # interactive manager
//	inventory list --search sauce --sort desc
//	inventory add --name Ketchup --unit bottles --quantity 6 --unit-cost 12000
//	inventory decrement 64f0c2... --amount 2
//	inventory import --from stock.xlsx
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/poku-e/kitchen/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewInventoryCommand(cli.Options{}).ExecuteContext(ctx); err != nil {
		stop()
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
