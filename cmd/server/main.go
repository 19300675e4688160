package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alex-user-go/tripplan/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Getenv("TRIPPLAN_CONFIG")); err != nil {
		log.Println(err)
		stop()
		os.Exit(1)
	}
}
