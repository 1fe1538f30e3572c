package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/tyrese/isobox/cmd/isobox/command"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := command.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
