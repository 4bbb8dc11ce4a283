package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnovate/bactocloud-dl/internal/cli"
)

func main() {
	// Ctrl-C cancels the context; the downloader finishes the in-flight
	// measurement and stops before the next one.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
