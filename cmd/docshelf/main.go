package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/docshelf/internal/adapters/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(cli.Deps{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "docshelf: %v\n", err)
		stop()
		os.Exit(1)
	}
}
