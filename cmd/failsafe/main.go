package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/byte4ever/failsafe/cmd/failsafe/cmd"
	"github.com/byte4ever/failsafe/cmd/internal/app"
)

var (
	appVersion = cmd.VersionDev
	commitHash = "dev"
)

func main() {
	// Initializing context with cancel for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cmd.NewCmd(appVersion, commitHash).ExecuteContext(ctx)

	stop()

	if err == nil {
		return
	}

	var ece *app.ExitCodeError
	if errors.As(err, &ece) {
		os.Exit(ece.Code)
	}

	fmt.Fprintln(os.Stderr, "failsafe:", err)
	os.Exit(1)
}
