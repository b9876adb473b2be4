package main

import (
	"context"
	"log"

	"github.com/viralforge/campaign-bot/internal/app/bootstrap"
)

func main() {
	ctx := context.Background()
	runtime, err := bootstrap.NewRuntime(ctx, "configs/default.yaml")
	if err != nil {
		log.Fatalf("bootstrap bot runtime: %v", err)
	}
	if err := runtime.Run(ctx); err != nil {
		log.Fatalf("run bot: %v", err)
	}
}
