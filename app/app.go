// File: app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"go-bank-ledger/config"
	"go-bank-ledger/console"
	"go-bank-ledger/db"
	"go-bank-ledger/handler"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"go-bank-ledger/repository"
	"go-bank-ledger/router"
	"go-bank-ledger/service"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// TestApp bundles the layers wired over an in-memory store, without the
// scheduler, console or listener.
type TestApp struct {
	Repo           *repository.AccountRepository
	AccountService *service.AccountService
	Router         http.Handler
}

// NewTestApp wires repository, service, handlers and router around accounts.
func NewTestApp(accounts []*model.Account, rate decimal.Decimal) (*TestApp, error) {
	repo, err := repository.NewAccountRepository(accounts)
	if err != nil {
		return nil, err
	}
	accountService := service.NewAccountService(repo, rate)
	r := router.NewRouter(
		handler.NewAccountHandler(accountService),
		handler.NewTransactionHandler(accountService),
	)
	return &TestApp{Repo: repo, AccountService: accountService, Router: r}, nil
}

// Run loads configuration and customers, starts the interest scheduler and
// the optional HTTP API, then serves the console on stdin/stdout until the
// user exits, input ends, or a shutdown signal arrives.
func Run(args []string, stdin io.Reader, stdout io.Writer) error {
	logger.Init()

	fs := config.Flags()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	configDir, _ := fs.GetString("config")

	cfg, err := config.LoadConfig(configDir, fs)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logOut, closeLog, err := openLogOutput(cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Configure(cfg.Log.Level, cfg.Log.Format, logOut)
	logger.Log.Info("Configuration loaded successfully")

	accounts, err := db.LoadAccounts(cfg.Ledger.DataFile)
	if err != nil {
		return err
	}

	// --- Wiring ---
	accountRepo, err := repository.NewAccountRepository(accounts)
	if err != nil {
		return err
	}
	accountService := service.NewAccountService(accountRepo, cfg.InterestRate())
	logger.Log.WithFields(logrus.Fields{
		"accounts": accountRepo.Count(),
		"file":     cfg.Ledger.DataFile,
	}).Info("Customers loaded")

	var scheduler *service.InterestScheduler
	if cfg.Interest.Enabled {
		scheduler, err = service.NewInterestScheduler(accountRepo, cfg.Interest.Interval, cfg.InterestRate())
		if err != nil {
			return err
		}
		if err := scheduler.Start(); err != nil {
			return err
		}
	}

	var srv *http.Server
	if cfg.Server.Enabled {
		srv = &http.Server{
			Addr: ":" + cfg.Server.Port,
			Handler: router.NewRouter(
				handler.NewAccountHandler(accountService),
				handler.NewTransactionHandler(accountService),
			),
		}
		go func() {
			logger.Log.Infof("Server starting on port :%s", cfg.Server.Port)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Log.WithError(err).Error("HTTP server failed")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consoleDone := make(chan error, 1)
	go func() {
		consoleDone <- console.NewDispatcher(accountService, stdin, stdout).Run(ctx)
	}()

	var consoleErr error
	select {
	case consoleErr = <-consoleDone:
		logger.Log.Info("Console session ended. Starting shutdown...")
	case <-ctx.Done():
		logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("Server forced to shutdown")
		}
	}
	if scheduler != nil {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("Interest scheduler did not stop in time")
		}
	}

	fmt.Fprintln(stdout, "Exiting...")
	logger.Log.Info("Ledger exited properly")
	return consoleErr
}

// openLogOutput sends logs to path when set so they do not interleave with
// the console prompt; otherwise stderr.
func openLogOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
