package commands

import (
	"context"
	"errors"
	"time"

	"github.com/penwyp/go-claude-usage/internal/application/refresh"
	"github.com/penwyp/go-claude-usage/internal/metrics"
	"github.com/penwyp/go-claude-usage/internal/util"
	"github.com/spf13/cobra"
)

var (
	daemonMetricsAddr string
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Refresh usage in the background on the preferred interval",
	Long: `Runs the producer loop: fetches immediately, then again every refresh interval
from the shared preferences (never more often than every 5 minutes). Every cycle
publishes the snapshot or the failure message to the shared store and notifies readers.

A refresh that is still running when the next one is due is not stacked; the later
trigger is dropped. Stop with Ctrl+C or SIGTERM.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.Flags().StringVar(&daemonMetricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on this address (e.g., 127.0.0.1:9464); overrides metrics.address")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := initRuntime(cmd)
	if err != nil {
		return err
	}
	defer util.CloseLogger()

	st, shared, err := openShared(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	metricsAddr := cfg.Metrics.Address
	if cmd.Flags().Changed("metrics-addr") {
		metricsAddr = daemonMetricsAddr
	}

	var opts []refresh.Option
	if metricsAddr != "" {
		server := metrics.NewServer(metricsAddr)
		if err := server.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Stop(shutdownCtx); err != nil {
				util.LogWarn("Metrics server shutdown failed", util.F("error", err))
			}
		}()
		opts = append(opts, refresh.WithObserver(metrics.NewRecorder()))
	}

	changes, err := st.Watch(ctx)
	if err != nil {
		// the schedule still works; preference changes apply after the next cycle
		util.LogWarn("Store watch unavailable", util.F("error", err))
		changes = nil
	}

	refresher := refresh.NewRefresher(newUsageService(cfg), shared,
		append(opts, refresh.WithClock(util.GetTimeProvider().Now))...)
	scheduler := refresh.NewScheduler(refresher, shared, changes)

	started := time.Now()
	util.LogInfo("Daemon started", util.F("store", cfg.Store.Type), util.F("metrics", metricsAddr))
	err = scheduler.Run(ctx)
	if errors.Is(err, context.Canceled) {
		util.LogInfof("Daemon stopped after %s", util.FormatDuration(time.Since(started)))
		return nil
	}
	return err
}
