package commands

import (
	"errors"

	"github.com/penwyp/go-claude-usage/internal/application/refresh"
	"github.com/penwyp/go-claude-usage/internal/cli"
	"github.com/penwyp/go-claude-usage/internal/presentation/formatter"
	"github.com/penwyp/go-claude-usage/internal/util"
	"github.com/spf13/cobra"
)

var (
	showRefresh bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the usage stored by the last refresh",
	Long: `Reads the shared store and prints the last snapshot, its age and the message
of the last failed refresh, if any. With --refresh one cycle runs first.`,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVarP(&showRefresh, "refresh", "r", false,
		"Fetch from the claude CLI before printing")
}

func runShow(cmd *cobra.Command, args []string) error {
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

	service := newUsageService(cfg)
	if showRefresh {
		refresher := refresh.NewRefresher(service, shared)
		if _, err := refresher.Refresh(ctx); err != nil && !errors.Is(err, refresh.ErrInFlight) {
			// recorded as the last error, shown below
			util.LogDebug("Refresh before show failed", util.F("error", err))
		}
	}

	report := loadReport(ctx, shared)
	if report.Snapshot == nil && report.LastError == "" && !service.Available() {
		report.LastError = cli.UserMessage(cli.ErrNotFound)
	}
	return out.FormatUsage(cmd.OutOrStdout(), report)
}
