// Command pocketledger is a small personal finance tracker: register, sign in,
// record income and expenses, and print the running balance and the last
// seven days.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"pocketledger/internal/cli"
	"pocketledger/internal/identity"
	"pocketledger/internal/kv"
	"pocketledger/internal/ledger"
	"pocketledger/internal/log"
	"pocketledger/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pocketledger", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := fs.String("env", ".env", "Optional dotenv file read before the environment")

	commander := subcommands.NewCommander(fs, "pocketledger")
	commander.Output = stdout
	commander.Error = stderr
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	for _, c := range identityCommands {
		commander.Register(c, "account")
	}
	for _, c := range ledgerCommands {
		commander.Register(c, "ledger")
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return int(subcommands.ExitSuccess)
		}
		return int(subcommands.ExitUsageError)
	}

	cli.LoadEnvFile(*envFile)
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return int(subcommands.ExitFailure)
	}

	logger := cli.SetupLogger(cfg.LogLevel, stderr)
	ctx = log.NewContext(ctx, logger)
	store, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return int(subcommands.ExitFailure)
	}
	defer func() {
		if err := store.Cleanup(); err != nil {
			log.NewStructuredLogger(logger).LogError(ctx, "Failed to close store", err, log.ErrorTypeStorage, log.OpShutdown, nil)
		}
	}()

	writer := kv.NewWriter()
	users := identity.NewRepository(store.Store, writer, identity.Options{
		Cost:   cfg.BcryptCost,
		Logger: logger,
	})
	txs := ledger.NewRepository(store.Store, writer, ledger.Options{Logger: logger})
	tracker := services.NewTracker(users, txs, services.TrackerOptions{
		Location: cfg.Location(),
		Logger:   logger,
	})

	if _, _, err := tracker.Restore(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return int(subcommands.ExitFailure)
	}

	a := newApp(tracker, cfg.Location(), stdin, stdout, stderr)
	return int(commander.Execute(ctx, a))
}
