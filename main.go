// main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"codenames-sync/logger"
)

const releaseVersion = "0.1.0"

func main() {
	// a missing .env is normal outside development
	if err := godotenv.Load(); err == nil {
		logger.Debug.Println("[main] Loaded .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &Config{}
	err := newCmd(cfg).ExecuteContext(ctx)
	_ = logger.Close()
	cobra.CheckErr(err)
}
