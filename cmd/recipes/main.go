// Command recipes manages the recipes stored on the burger backend.
//
// Usage examples:
//
//	recipes                                  # interactive manager
//	recipes list
//	recipes add --name Cheeseburger -i "Bun:1:pcs" -i "Beef patty:150:g"
//	recipes delete 64f0c2... --yes
//	recipes export --out recipes.xlsx
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

	if err := cli.NewRecipesCommand(cli.Options{}).ExecuteContext(ctx); err != nil {
		stop()
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
