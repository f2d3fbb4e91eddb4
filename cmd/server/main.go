// Command server runs the vocabulary backend HTTP server.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/wordfall/wordfall/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
