package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"fintrack/fintrack/cmd/analytics"
	"fintrack/fintrack/cmd/auth"
	"fintrack/fintrack/cmd/categories"
	"fintrack/fintrack/cmd/dashboard"
	"fintrack/fintrack/cmd/export"
	"fintrack/fintrack/cmd/importer"
	"fintrack/fintrack/cmd/root"
	"fintrack/fintrack/cmd/tx"
	"fintrack/fintrack/internal/config"

	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	_, _ = config.LoadEnv()

	// 2. Configure the global log level before any logger is created
	configureLogLevelDirectly()

	// 3. Initialize root command
	root.Init()

	// 4. Add all subcommands
	root.Cmd.AddCommand(auth.LoginCmd)
	root.Cmd.AddCommand(auth.LogoutCmd)
	root.Cmd.AddCommand(auth.WhoamiCmd)
	root.Cmd.AddCommand(auth.RegisterCmd)
	root.Cmd.AddCommand(tx.Cmd)
	root.Cmd.AddCommand(importer.Cmd)
	root.Cmd.AddCommand(export.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
	root.Cmd.AddCommand(analytics.Cmd)
	root.Cmd.AddCommand(dashboard.Cmd)
}

// configureLogLevelDirectly sets the global logrus level from LOG_LEVEL.
// The application logger is configured separately from the config file.
func configureLogLevelDirectly() {
	level, err := logrus.ParseLevel(strings.ToLower(config.GetEnv("LOG_LEVEL", "warn")))
	if err != nil {
		level = logrus.WarnLevel
	}
	logrus.SetLevel(level)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.Cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", root.ErrorMessage(err))
		os.Exit(1)
	}
}
