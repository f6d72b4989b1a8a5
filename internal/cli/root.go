// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trade-journal/internal/config"
	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/kv"
	"trade-journal/internal/logging"
	"trade-journal/internal/notify"
	"trade-journal/internal/resilience"
	"trade-journal/internal/security"
	"trade-journal/internal/service"
	"trade-journal/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-05-01"
)

// Command annotations controlling what the root sets up.
const (
	annotationSkip  = "journal.skip"
	skipAll         = "all"
	skipJournalOnly = "journal"
)

// notificationLimit bounds the in-process feed served by the API.
const notificationLimit = 100

// App holds the application dependencies.
type App struct {
	ConfigDir string
	Config    *config.Config
	Logger    zerolog.Logger
	Journal   *service.Journal
	Notifier  *notify.MultiNotifier
	Feed      *notify.Recorder
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd() *cobra.Command {
	app := &App{Logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Trade Journal - log trades, earn achievements",
		Long: `Trade Journal records closed trades and keeps score.

Every trade you log is checked against the achievement catalog. Unlocks
grant experience and badges, streaks track how consistently you journal,
and playbooks keep your setups in one place.

Use 'journal <command> --help' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			skip := skipLevel(cmd)
			if skip == skipAll {
				return nil
			}
			if err := app.loadConfig(cmd); err != nil {
				return err
			}
			if skip == skipJournalOnly {
				return nil
			}
			return app.openJournal(cmd.Context(), cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trade-journal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	addTradeCommands(rootCmd, app)
	addAchievementCommands(rootCmd, app)
	addProfileCommands(rootCmd, app)
	addPlaybookCommands(rootCmd, app)
	addStatsCommands(rootCmd, app)
	rootCmd.AddCommand(newExportCmd(app))
	rootCmd.AddCommand(newServeCmd(app))

	return rootCmd
}

// skipLevel returns the nearest skip annotation on cmd or its parents.
func skipLevel(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "help" || c.Name() == "completion" {
			return skipAll
		}
		if v, ok := c.Annotations[annotationSkip]; ok {
			return v
		}
	}
	return ""
}

func (app *App) loadConfig(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("config")
	if dir == "" {
		dir = config.DefaultConfigDir()
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	app.ConfigDir = dir
	app.Config = cfg

	app.Logger = logging.NewLoggerWithConfig(logging.LogConfig{
		Level:      cfg.Logging.Level,
		Console:    cfg.Logging.Console,
		Color:      cfg.UI.ColorEnabled && isTerminal(cmd.ErrOrStderr()),
		File:       cfg.Logging.File,
		FilePath:   cfg.Logging.Path,
		MaxSize:    cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAgeDays,
	})
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logging.SetDebugLevel()
		app.Logger = app.Logger.Level(zerolog.DebugLevel)
	}
	return nil
}

// openStore builds the data store selected by storage.backend.
func openStore(ctx context.Context, cfg *config.Config) (store.DataStore, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		return store.NewSQLiteStore(cfg.Journal.DBPath)
	case config.BackendFile:
		f, err := kv.NewFile(cfg.Storage.FilePath)
		if err != nil {
			return nil, err
		}
		return store.NewKVStore(f, cfg.Storage.Backend), nil
	case config.BackendRedis:
		r, err := kv.NewRedis(cfg.Storage.RedisURL, cfg.Storage.Prefix)
		if err != nil {
			return nil, err
		}
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, apperrors.NewStorageError(cfg.Storage.Backend, "ping", "", err)
		}
		return store.NewKVStore(r, cfg.Storage.Backend), nil
	case config.BackendMemory:
		return store.NewKVStore(kv.NewMemory(), cfg.Storage.Backend), nil
	}
	return nil, apperrors.Wrapf(apperrors.ErrConfigInvalid, "unknown storage backend %q", cfg.Storage.Backend)
}

// newNotifier fans notifications out to the terminal, the log and the
// in-process feed.
func (app *App) newNotifier(cmd *cobra.Command) *notify.MultiNotifier {
	cfg := app.Config
	mn := notify.NewMultiNotifier(&cfg.Notifications)
	if webhook, ok := mn.Webhook(); ok {
		logger := app.Logger
		webhook.Breaker().OnStateChange(func(name string, from, to resilience.CircuitState) {
			logging.LogCircuit(logger, name, string(from), string(to))
		})
	}

	term := notify.NewTerminalChannel(cmd.ErrOrStderr(), cfg.UI.ColorEnabled && isTerminal(cmd.ErrOrStderr()))
	term.SetEnabled(cfg.Notifications.Terminal.Enabled)
	term.SetBellEnabled(cfg.Notifications.Terminal.Bell)
	mn.AddChannel(term)
	mn.AddChannel(notify.NewLogChannel(app.Logger))

	app.Feed = notify.NewRecorder(notificationLimit)
	mn.AddChannel(app.Feed)
	app.Notifier = mn
	return mn
}

func (app *App) openJournal(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := openStore(ctx, app.Config)
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", app.Config.Storage.Backend, err)
	}

	j, err := service.Open(ctx, service.Options{
		Data:      data,
		Notifier:  app.newNotifier(cmd),
		Logger:    app.Logger,
		ProfileID: app.Config.Profile.ID,
		Name:      app.Config.Profile.Name,
		Email:     app.Config.Profile.Email,
	})
	if err != nil {
		_ = data.Close()
		return err
	}
	app.Journal = j
	app.Logger.Debug().Str("backend", app.Config.Storage.Backend).Msg("Journal opened")
	return nil
}

func (app *App) close() error {
	if app.Journal == nil {
		return nil
	}
	err := app.Journal.Close()
	app.Journal = nil
	return err
}

// skip marks cmd so the root does not open the journal (or, with skipAll,
// load the config) before running it.
func skip(cmd *cobra.Command, level string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationSkip] = level
	return cmd
}

func newVersionCmd() *cobra.Command {
	return skip(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("Trade Journal v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}, skipAll)
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := skip(&cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}, skipJournalOnly)

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			cfg := redactedConfig(app.Config)
			if output.IsJSON() {
				return output.JSON(cfg)
			}
			showConfig(output, cfg)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path := config.ConfigPath(app.ConfigDir)
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": path})
			}
			output.Println(path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

// redactedConfig returns a copy of cfg with credentials in URLs masked.
func redactedConfig(cfg *config.Config) *config.Config {
	c := *cfg
	c.Storage.RedisURL = security.RedactURL(c.Storage.RedisURL)
	c.Notifications.Webhook.URL = security.RedactURL(c.Notifications.Webhook.URL)
	return &c
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Storage")
	output.Printf("  Backend:         %s\n", cfg.Storage.Backend)
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		output.Printf("  Database:        %s\n", cfg.Journal.DBPath)
	case config.BackendFile:
		output.Printf("  File:            %s\n", cfg.Storage.FilePath)
	case config.BackendRedis:
		output.Printf("  Redis:           %s (prefix %s)\n", cfg.Storage.RedisURL, cfg.Storage.Prefix)
	}
	output.Println()

	output.Bold("Profile")
	output.Printf("  Name:            %s\n", cfg.Profile.Name)
	output.Printf("  Email:           %s\n", cfg.Profile.Email)
	output.Println()

	output.Bold("Notifications")
	output.Printf("  Enabled:         %v\n", cfg.Notifications.Enabled)
	output.Printf("  Level:           %s\n", cfg.Notifications.Level)
	output.Printf("  Terminal:        %v\n", cfg.Notifications.Terminal.Enabled)
	output.Printf("  Webhook:         %v\n", cfg.Notifications.Webhook.Enabled)
	if cfg.Notifications.Webhook.URL != "" {
		output.Printf("  Webhook URL:     %s\n", cfg.Notifications.Webhook.URL)
	}
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	if cfg.Logging.File {
		output.Printf("  File:            %s\n", cfg.Logging.Path)
	}
	output.Println()

	output.Bold("Server")
	output.Printf("  Address:         %s\n", cfg.Server.Addr)
	output.Printf("  Mode:            %s\n", cfg.Server.Mode)
}
