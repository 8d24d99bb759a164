package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/courier/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override courier config path (optional)")
	prefsPath := flag.String("prefs", "", "override prefs path (optional)")
	orderID := flag.String("order", "", "order id to track (overrides config)")
	riderID := flag.String("rider", "", "rider id whose wallet to watch (overrides config)")
	userID := flag.String("user", "", "user id whose chats to list (overrides config)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (overrides config)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		OrderID:    *orderID,
		RiderID:    *riderID,
		UserID:     *userID,
		LogLevel:   *logLevel,
	}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "courier: %v\n", err)
		return 1
	}
	return 0
}
