// Package root contains the root command for the application
package root

import (
	"fmt"
	"io"
	"strings"

	"fintrack/fintrack/internal/apierror"
	"fintrack/fintrack/internal/config"
	"fintrack/fintrack/internal/container"
	"fintrack/fintrack/internal/render"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// GlobalFlags represents the flags that are common to all commands
type GlobalFlags struct {
	ConfigFile string
	Output     string
	LogLevel   string
	BaseURL    string
	Offline    bool
}

var (
	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "fintrack",
		Short: "A CLI client for the fintrack personal finance backend.",
		Long: `fintrack is a command line client for a personal finance backend.
It lists, filters and edits transactions, imports bank statements, manages
categories and prints spending analytics. With --offline it works on local
files instead of the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return Setup(cfg, cmd.OutOrStdout())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			Teardown()
		},
	}

	// SharedFlags holds the persistent flags after parsing
	SharedFlags = GlobalFlags{}

	app      *container.Container
	renderer *render.Renderer
)

// Init registers the persistent flags.
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.ConfigFile, "config", "c", "", "Config file (default $HOME/.fintrack/config.yaml)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output format: table, json or yaml")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	Cmd.PersistentFlags().StringVar(&SharedFlags.BaseURL, "api-url", "", "Base URL of the finance backend")
	Cmd.PersistentFlags().BoolVar(&SharedFlags.Offline, "offline", false, "Work on local files instead of the server")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.InitializeConfigFromFile(SharedFlags.ConfigFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Format = strings.ToLower(SharedFlags.Output)
	}
	if flags.Changed("log-level") {
		if _, err := logrus.ParseLevel(SharedFlags.LogLevel); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
		cfg.Log.Level = SharedFlags.LogLevel
	}
	if flags.Changed("api-url") {
		cfg.API.BaseURL = SharedFlags.BaseURL
	}
	if flags.Changed("offline") {
		cfg.Offline.Enabled = SharedFlags.Offline
	}
	return cfg, nil
}

// Setup builds the container and the output renderer used by every
// subcommand. Command tests call it directly with their own config.
func Setup(cfg *config.Config, out io.Writer, opts ...container.Option) error {
	r, err := render.New(out, cfg.Output.Format, cfg.Output.CurrencySymbol)
	if err != nil {
		return err
	}
	c, err := container.NewContainer(cfg, opts...)
	if err != nil {
		return err
	}
	Teardown()
	app, renderer = c, r
	return nil
}

// Teardown closes the container built by Setup.
func Teardown() {
	if app != nil {
		_ = app.Close()
		app = nil
	}
}

// Container returns the container built for the running command.
func Container() *container.Container {
	return app
}

// Renderer returns the output renderer for the running command.
func Renderer() *render.Renderer {
	return renderer
}

// RequireLogin fails unless the command can reach transaction data: the
// offline backend always can, the server needs a session token.
func RequireLogin() error {
	if app == nil {
		return fmt.Errorf("command not initialized")
	}
	if app.GetConfig().Offline.Enabled || app.GetSession().Authenticated() {
		return nil
	}
	return apierror.ErrUnauthorized
}

// ErrorMessage is the line printed for a failed command.
func ErrorMessage(err error) string {
	if msg := apierror.UserMessage(err); msg != "" {
		return msg
	}
	return err.Error()
}
