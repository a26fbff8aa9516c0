package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/fbellini/daybook-server/internal/client/cli"
)

func main() {
	serverURL := flag.String("server", envOr("DAYBOOK_SERVER", "http://localhost:8080"), "daybook server base URL")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	app := cli.NewApp(*serverURL)
	app.Run(ctx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
