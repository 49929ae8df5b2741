package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"reviewhub/internal/client"
	"reviewhub/internal/config"
	"reviewhub/internal/log"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Diagnostics go to stderr so they do not interleave with the pages.
	logger := log.NewWithWriter(os.Stderr, "client", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scanner := bufio.NewScanner(os.Stdin)
	ctl := client.NewController(
		client.NewAPI(cfg.BaseURL, cfg.Timeout),
		&client.Session{},
		client.NewFileSessionStore(cfg.SessionFile),
		client.NewLinePrompter(scanner, os.Stdout, int(os.Stdin.Fd())),
		os.Stdout,
		logger,
	)

	ctl.Rehydrate(ctx)
	client.RunREPL(ctx, ctl, scanner)
}
