package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/penwyp/go-claude-usage/internal/application/refresh"
	"github.com/penwyp/go-claude-usage/internal/cli"
	"github.com/penwyp/go-claude-usage/internal/config"
	"github.com/penwyp/go-claude-usage/internal/core/parser"
	"github.com/penwyp/go-claude-usage/internal/data/sharing"
	"github.com/penwyp/go-claude-usage/internal/data/store"
	"github.com/penwyp/go-claude-usage/internal/presentation/formatter"
	"github.com/penwyp/go-claude-usage/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Configuration
	configFile string
	storeType  string
	timezone   string

	// Logging related
	debug bool

	// Output related
	outputFormat string

	rootCmd = &cobra.Command{
		Use:   "go-claude-usage [flags]",
		Short: "Claude plan usage limits from the claude CLI",
		Long: `go-claude-usage runs "claude /usage", parses the session and weekly usage limits,
and publishes them to a shared store read by the show and widget commands.

Without a subcommand it fetches once, stores the result and prints it.

Examples:
  go-claude-usage                          # Fetch once and print
  go-claude-usage --output json            # Fetch once and print JSON
  go-claude-usage daemon                   # Refresh in the background on the preferred interval
  go-claude-usage show                     # Print the last stored usage
  go-claude-usage widget --size large      # Full-screen view that follows the store
  go-claude-usage prefs set --refresh-interval 30`,
		SilenceUsage: true,
		RunE:         runFetch,
	}
)

const defaultOutput = "text"

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultConfigFile,
		"Config file path (optional)")
	rootCmd.PersistentFlags().StringVar(&storeType, "store", "",
		"Shared store backend (file, redis, sqlite); overrides the config file")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "",
		"Timezone used to resolve reset times (e.g., Asia/Shanghai, UTC, Local)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", defaultOutput,
		"Output format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug logging to stderr")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := initRuntime(cmd)
	if err != nil {
		return err
	}
	defer util.CloseLogger()

	out, err := formatter.NewFormatter(outputFormat)
	if err != nil {
		return err
	}

	st, shared, err := openShared(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	refresher := refresh.NewRefresher(newUsageService(cfg), shared)
	_, fetchErr := refresher.Refresh(ctx)

	if err := out.FormatUsage(cmd.OutOrStdout(), loadReport(ctx, shared)); err != nil {
		return err
	}
	return fetchErr
}

func Execute() error {
	return rootCmd.Execute()
}

// initRuntime loads the configuration, applies flag overrides and sets up
// logging and the time provider
func initRuntime(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store.Type = storeType
	}
	if flags.Changed("timezone") {
		cfg.Timezone = timezone
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logLevel := cfg.Logging.Level
	if debug {
		logLevel = "debug"
	}
	if cfg.Logging.File != "" {
		if err := ensureDir(filepath.Dir(cfg.Logging.File)); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	if err := util.InitLogger(util.LoggerConfig{
		Level:   logLevel,
		File:    cfg.Logging.File,
		Format:  util.ParseLogFormat(cfg.Logging.Format),
		Console: debug,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := util.InitializeTimeProvider(cfg.Timezone); err != nil {
		return nil, err
	}

	util.LogDebug("Configuration loaded",
		util.F("command", cmd.Name()),
		util.F("store", cfg.Store.Type),
		util.F("timezone", cfg.Timezone))
	return cfg, nil
}

func openShared(cfg *config.Config) (store.WatchableStore, *sharing.Service, error) {
	st, err := store.Open(cfg.StoreOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Type, err)
	}
	return st, sharing.NewService(st), nil
}

func newUsageService(cfg *config.Config) *cli.Service {
	return cli.NewService(
		cli.NewLocator(cfg.CLI.BinaryPath),
		cli.NewRunner(cli.SearchDirs()),
		parser.NewUsageParser(),
		cli.ServiceConfig{
			Args:    cfg.CLI.Args,
			Timeout: cfg.CLI.Timeout,
			Now:     util.GetTimeProvider().Now,
		},
	)
}

func loadReport(ctx context.Context, shared *sharing.Service) formatter.Report {
	return formatter.Report{
		Snapshot:    shared.LoadUsage(ctx),
		LastError:   shared.LoadLastError(ctx),
		Preferences: shared.LoadPreferences(ctx),
		GeneratedAt: util.GetTimeProvider().Now(),
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return config.ExpandPath(path)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
