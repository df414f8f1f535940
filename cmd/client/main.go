// Package main runs the interactive ebudget shell. It keeps a local SQLite
// cache of the signed-in user's categories and transactions and refreshes it
// from the budget API.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/atinyakov/ebudget/internal/client/api"
	"github.com/atinyakov/ebudget/internal/client/auth"
	"github.com/atinyakov/ebudget/internal/client/budget"
	"github.com/atinyakov/ebudget/internal/client/cache"
	"github.com/atinyakov/ebudget/internal/client/session"
	"github.com/atinyakov/ebudget/internal/client/shell"
	"github.com/atinyakov/ebudget/internal/config"
	"github.com/atinyakov/ebudget/internal/logger"
)

var (
	version   string
	buildDate string
)

func main() {
	options := config.ParseClient()

	fmt.Printf("ebudget %s (built %s)\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.InitTo(options.LogLevel, options.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient, err := api.NewHTTPClient(options.CAFile, options.Timeout)
	if err != nil {
		zapLogger.Fatal("cannot build HTTP client", zap.Error(err))
	}
	remote := api.New(options.BaseURL, httpClient, api.WithLogger(zapLogger))

	sessions, err := session.Open(options.SessionPath)
	if err != nil {
		zapLogger.Fatal("cannot open session store", zap.Error(err))
	}

	store, err := cache.Open(ctx, options.CachePath, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot open cache", zap.Error(err))
	}
	defer store.Close()

	engine := budget.NewService(remote, store, budget.WithLogger(zapLogger))
	controller := auth.NewController(remote, sessions, session.NewHolder(), zapLogger)
	for name, flow := range map[string]*auth.Flow{"login": controller.LoginFlow(), "register": controller.RegisterFlow()} {
		flow.Subscribe(func(st auth.State) {
			zapLogger.Debug("auth flow", zap.String("flow", name), zap.Stringer("status", st.Status), zap.String("reason", st.Reason))
		})
	}
	if sess, err := controller.Restore(ctx); err != nil {
		zapLogger.Warn("cannot restore session", zap.Error(err))
	} else if sess.Valid() {
		zapLogger.Info("session restored", zap.Int64("user_id", sess.UserID))
	}

	sh := shell.New(os.Stdin, os.Stdout, engine, controller, shell.WithLogger(zapLogger))
	sh.StartAutoSync(ctx, options.SyncInterval)
	if err := sh.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zapLogger.Error("shell stopped", zap.Error(err))
		os.Exit(1)
	}
}
