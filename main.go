// ./main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mintfeed/mintfeed-cli/cmd"
)

// main is the entry point for the mintfeed CLI application.
func main() {
	// A .env file is the easiest place to keep MINTFEED_GALLERY_API_KEY
	// out of the shell history. Missing files are fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
}
