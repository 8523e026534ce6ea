package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/NamanBalaji/ravenmagnet/internal/cli"
	"github.com/NamanBalaji/ravenmagnet/internal/config"
	"github.com/NamanBalaji/ravenmagnet/internal/errors"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.GetConfig()
	if err != nil {
		err = errors.NewConfigError(err, config.Path())
		cli.PrintError(os.Stderr, err)
		return errors.ExitCode(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = cli.New(cfg).Run(ctx, os.Args[1:])
	if err != nil {
		cli.PrintError(os.Stderr, err)
	}

	return errors.ExitCode(err)
}
