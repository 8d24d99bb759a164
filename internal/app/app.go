package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/courier/internal/config"
	"github.com/five82/courier/internal/logging"
	"github.com/five82/courier/internal/market"
	"github.com/five82/courier/internal/poller"
	"github.com/five82/courier/internal/prefs"
	"github.com/five82/courier/internal/ui"
)

// Options configure the courier application. Non-empty ids and log level
// override the config file.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/courier/prefs.toml
	OrderID    string
	RiderID    string
	UserID     string
	LogLevel   string
}

// Run boots the courier TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load courier config: %w", err)
	}
	cfg = applyOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, closeLog, err := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closeLog() }()

	client, err := market.NewClient(cfg.APIBase, cfg.APIToken)
	if err != nil {
		return fmt.Errorf("init marketplace client: %w", err)
	}
	logger.Info("courier starting",
		zap.String("api_base", cfg.APIBase),
		logging.Token("api_token", cfg.APIToken),
		zap.String("order_id", cfg.OrderID),
		zap.String("rider_id", cfg.RiderID),
		zap.String("user_id", cfg.UserID),
	)

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	out := &relay{}
	live := newSessions(client, cfg, out, poller.SystemClock{}, logger)

	model := ui.New(ui.Options{
		Tracking:    live.order,
		Wallet:      live.wallet,
		Chats:       live.chats,
		OrderID:     cfg.OrderID,
		SwitchOrder: live.switchOrder,
		Prefs:       userPrefs,
		PrefsPath:   opts.PrefsPath,
		LogFile:     cfg.LogFile,
		Logger:      logger.Named("ui"),
	})
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	out.bind(program)

	live.mount(ctx)
	defer live.close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})

	watcher, err := prefs.NewWatcher(opts.PrefsPath, out, logger.Named("prefs"))
	if err != nil {
		logger.Warn("prefs watcher disabled", zap.Error(err))
	} else {
		g.Go(func() error { return watcher.Run(gctx) })
	}

	err = g.Wait()
	logger.Info("courier stopped", zap.Error(err))
	return err
}

func applyOverrides(cfg config.Config, opts Options) config.Config {
	if v := strings.TrimSpace(opts.OrderID); v != "" {
		cfg.OrderID = v
	}
	if v := strings.TrimSpace(opts.RiderID); v != "" {
		cfg.RiderID = v
	}
	if v := strings.TrimSpace(opts.UserID); v != "" {
		cfg.UserID = v
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}
