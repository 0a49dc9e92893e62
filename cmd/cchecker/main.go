package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"

	"github.com/pthm/cchecker/internal/cmd"
	"github.com/pthm/cchecker/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := fang.Execute(ctx, cmd.RootCmd, fang.WithVersion(version.Short()))
	stop()

	os.Exit(cmd.ExitCode(err))
}
