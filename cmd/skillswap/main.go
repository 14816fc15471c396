package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/oggyb/skillswap/internal/app"
	"github.com/oggyb/skillswap/internal/config"
	svcErr "github.com/oggyb/skillswap/internal/errors"
	"github.com/oggyb/skillswap/internal/logger"
)

func main() {
	cfg := config.New()

	// CLI output goes to stdout, so logs go to stderr
	logger.Init(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     logger.Format(cfg.Log.Format),
		Component:  cfg.Log.Component,
		WithSource: cfg.Log.Source,
		Output:     os.Stderr,
	})
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, cfg, log, os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(exitCode(err))
}

// run opens the state layout, executes one command and flushes on the way out.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(out)
		return nil
	}

	cmd, ok := lookup(args[0])
	if !ok {
		printUsage(out)
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	appCtx, err := app.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := appCtx.Close(context.WithoutCancel(ctx)); err != nil {
			log.Error("failed to close state layout", "err", err)
		}
	}()

	return cmd.run(ctx, newEnv(appCtx, out), args[1:])
}

var errUsage = errors.New("usage")

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	case errors.Is(err, svcErr.ErrNotFound):
		return 3
	case errors.Is(err, svcErr.ErrUnauthorized):
		return 4
	case errors.Is(err, svcErr.ErrInvalidArgument),
		errors.Is(err, svcErr.ErrDuplicateEmail),
		errors.Is(err, svcErr.ErrInvalidTransition),
		errors.Is(err, svcErr.ErrAlreadyRated):
		return 5
	default:
		return 1
	}
}
