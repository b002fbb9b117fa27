package main

import (
	"context"
	"log"

	"user-webclient/cmd/api/app"
	"user-webclient/cmd/api/server"
)

func main() {
	ctx, stop := server.WithSignal(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := a.Run(ctx); err != nil {
		stop()
		log.Fatalf("application exited with error: %v", err)
	}
}
