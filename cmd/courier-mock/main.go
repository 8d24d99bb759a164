// Command courier-mock serves a simulated marketplace API for trying courier
// without a backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/five82/courier/internal/logging"
	"github.com/five82/courier/internal/mockapi"
)

func main() {
	os.Exit(run())
}

func run() int {
	addr := flag.String("addr", "127.0.0.1:8088", "listen address")
	token := flag.String("token", "", "require this bearer token (optional)")
	failEvery := flag.Int("fail-every", 0, "answer every Nth API request with 503 (0 disables)")
	stageEvery := flag.Int("stage-every", 0, "advance orders one stage per N polls (default 3)")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	lvl, err := logging.ParseLevel(*level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "courier-mock: %v\n", err)
		return 2
	}
	logger := logging.NewWriter(zapcore.Lock(os.Stderr), lvl).Named("mockapi")
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	api := mockapi.New(mockapi.Options{
		Token:      *token,
		FailEvery:  *failEvery,
		StageEvery: *stageEvery,
		Logger:     logger,
	})
	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", *addr), logging.Token("token", *token))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve failed", zap.Error(err))
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
			return 1
		}
	}
	logger.Info("stopped")
	return 0
}
