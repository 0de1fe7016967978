package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"smartcents/internal/cli"
	"smartcents/internal/config"
)

func main() {
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Run(ctx, config.Load(), os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
