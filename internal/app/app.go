// Package app wires configuration, logging, storage and services into the
// running client.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cybersib/cybersib/internal/audit"
	"github.com/cybersib/cybersib/internal/buildinfo"
	"github.com/cybersib/cybersib/internal/cli"
	"github.com/cybersib/cybersib/internal/config"
	"github.com/cybersib/cybersib/internal/cryptox"
	"github.com/cybersib/cybersib/internal/filex"
	"github.com/cybersib/cybersib/internal/idgen"
	"github.com/cybersib/cybersib/internal/kvstore"
	"github.com/cybersib/cybersib/internal/logging"
	"github.com/cybersib/cybersib/internal/services"
	"github.com/cybersib/cybersib/internal/store"
	"github.com/cybersib/cybersib/internal/terminal"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	logClose io.Closer
	store    *store.Store

	Auth     services.AuthService
	Progress services.ProgressService
	Terminal *terminal.Interpreter
}

// Options tune NewApp for the caller.
type Options struct {
	// Interactive sends logs to a file under the data directory when no
	// log file is configured, keeping stderr clear for the REPL.
	Interactive bool
}

func NewApp(ctx context.Context, c *config.Config, opts Options) (*App, error) {
	dataDir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	logOpts := c.LogOptions()
	if opts.Interactive && logOpts.File == "" {
		logOpts.File = filepath.Join(dataDir, "cybersib.log")
	}
	logger, logClose, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	a, err := build(ctx, c, logger)
	if err != nil {
		_ = logClose.Close()
		return nil, err
	}
	a.logClose = logClose
	return a, nil
}

func build(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	hasher, err := cryptox.NewHasher(c.Hash.Algorithm, c.Hash.Argon2, c.Hash.BcryptCost)
	if err != nil {
		return nil, err
	}

	kv, err := kvstore.Open(ctx, kvstore.Options{
		Driver:    c.Store.Driver,
		DSN:       c.StoreDSN(),
		KeyPrefix: c.Store.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	st, err := store.Open(ctx, kv, store.Options{
		Log:            logger,
		Hasher:         hasher,
		Ladder:         c.RankLadder(),
		LogCap:         c.Audit.Cap,
		DemoAccount:    c.Bootstrap.DemoAccount,
		SampleAccounts: c.Bootstrap.SampleAccounts,
		AdminPassword:  c.Bootstrap.AdminPassword,
	})
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	rec := audit.NewRecorder(st, logger, nil)
	as, err := services.NewAuthService(ctx, st, hasher, idgen.NewSnowflake(idgen.NodeFromEnv()), rec, logger,
		services.AuthOptions{Secret: c.Session.Secret, TTL: c.Session.TTL})
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	ps := services.NewProgressService(st, rec, logger,
		services.ProgressOptions{AwardRepeatCompletions: c.Progress.AwardRepeatCompletions})

	if u, err := as.RestoreSession(ctx); err != nil {
		logger.Warn(ctx, "session restore failed", "error", err)
	} else if u != nil {
		logger.Info(ctx, "session restored", "user_id", u.ID)
	}

	term := terminal.New(st, as, logger, terminal.Options{
		BufferLines: c.Terminal.BufferLines,
		Version:     buildinfo.ShortVersion(),
	})

	return &App{
		config:   c,
		logger:   logger,
		store:    st,
		Auth:     as,
		Progress: ps,
		Terminal: term,
	}, nil
}

func (app *App) Store() *store.Store { return app.store }

func (app *App) Logger() logging.Logger { return app.logger }

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run starts the interactive client on in/out and blocks until the user
// exits, input ends or a termination signal arrives.
func (app *App) Run(ctx context.Context, in io.Reader, out io.Writer) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting client...", "driver", app.config.Store.Driver)
	app.initSignalHandler(ctx, cancelFunc)

	cli.NewApp(cli.Deps{
		Auth:            app.Auth,
		Progress:        app.Progress,
		Terminal:        app.Terminal,
		Log:             app.logger,
		Health:          app.store.Err,
		In:              in,
		Out:             out,
		RefreshInterval: app.config.RefreshInterval,
	}).Run(ctx)
}

// Close flushes the store and releases the backing store and log file.
func (app *App) Close(ctx context.Context) error {
	var errs []error
	if err := app.store.Flush(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flush: %w", err))
	}
	if err := app.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	app.logger.Info(ctx, "Client stopped")
	if app.logClose != nil {
		if err := app.logClose.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
