package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"socialdash/internal/cli"
	"socialdash/internal/config"
	"socialdash/internal/logging"
)

func main() {
	cfg := config.Load()
	// logs go to stderr so --output json stays parseable
	logger := logging.NewLogger(cfg.LogLevel)
	logger.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(cli.DefaultFactory(cfg, logger)).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
