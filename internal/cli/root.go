package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"budget/internal/backend"
	"budget/internal/config"
	"budget/internal/ledger"
	applog "budget/internal/log"
	"budget/internal/services"

	"github.com/spf13/cobra"
)

// publisherTimeout bounds broker setup so a down broker only delays a command
// briefly.
const publisherTimeout = 3 * time.Second

// app carries what the commands share once PersistentPreRunE has run.
type app struct {
	file    string
	backend string
	debug   bool

	logger *applog.Logger
	svc    *services.LedgerService
}

func Execute() {
	cmd, a := newRootCmd()
	err := cmd.Execute()
	if cerr := a.close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "budget",
		Short:        "Track income and expenses in a local ledger",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context(), cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMenu(cmd, a.svc)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	cmd.PersistentFlags().StringVar(&a.file, "file", "", "ledger file for the json backend (default $LEDGER_FILE or transactions.json)")
	cmd.PersistentFlags().StringVar(&a.backend, "backend", "", "store backend: json, sqlite, sheets or memory (default $LEDGER_BACKEND)")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging on stderr")

	cmd.AddCommand(
		menuCmd(a),
		addCmd(a),
		balanceCmd(a),
		analyzeCmd(a),
		listCmd(a),
	)
	return cmd, a
}

func (a *app) open(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := LoadEnvFile(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg := config.Load()
	if a.file != "" {
		cfg.LedgerFile = a.file
		if a.backend == "" {
			cfg.Backend = string(backend.JSONBackend)
		}
	}
	if a.backend != "" {
		cfg.Backend = a.backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.logger = SetupLogger(cfg, a.debug, cmd.ErrOrStderr())
	log := a.logger.WithComponent(applog.ComponentCLI)

	factory := backend.NewFactory(a.logger)
	bcfg, err := backend.FromAppConfig(cfg, cfg.Backend)
	if err != nil {
		return err
	}
	res, err := factory.CreateStore(ctx, bcfg)
	if err != nil {
		return err
	}

	l, err := ledger.New(ctx, res.Store, ledger.WithLogger(a.logger))
	if err != nil {
		if res.Cleanup != nil {
			_ = res.Cleanup()
		}
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, publisherTimeout)
	pub, err := factory.CreatePublisher(pubCtx, bcfg)
	cancel()
	if err != nil {
		// Notifications are optional; the ledger works without them.
		log.WarnContext(ctx, "Event publisher unavailable, continuing without notifications", applog.FieldError, err)
		pub = nil
	}

	a.svc = services.NewLedgerService(l, pub, res.Cleanup, a.logger)
	log.DebugContext(ctx, "Ledger opened",
		applog.FieldStore, l.StoreName(),
		applog.FieldCount, l.Len())
	return nil
}

func (a *app) close() error {
	if a.svc == nil {
		return nil
	}
	svc := a.svc
	a.svc = nil
	return svc.Close()
}
