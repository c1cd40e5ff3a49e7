package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/triangulate/internal/monitoring"
	"github.com/banshee-data/triangulate/internal/timeutil"
	"github.com/banshee-data/triangulate/internal/triangulation"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	var (
		interval    time.Duration
		debugListen string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Update the companion device periodically until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("interval") {
				interval = cfg.GetUpdateInterval()
			}
			if interval <= 0 {
				return errors.New("interval must be positive")
			}
			if !cmd.Flags().Changed("debug-listen") {
				debugListen = cfg.GetDebugListen()
			}

			sess, err := opts.openSession(cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			runner := triangulation.NewRunner(sess.coord, cfg.GetClearOnEmptyScan(), cfg.GetUseCache())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var wg sync.WaitGroup
			if debugListen != "" {
				wg.Add(1)
				go func() {
					defer wg.Done()
					serveDebug(ctx, debugListen, runner)
				}()
			}

			monitoring.Logf("updating every %s", interval)
			err = runner.Run(ctx, timeutil.RealClock{}, interval)

			wg.Wait()
			if errors.Is(err, context.Canceled) {
				monitoring.Logf("Graceful shutdown complete")
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Update interval (defaults to update_interval from the config)")
	cmd.Flags().StringVar(&debugListen, "debug-listen", "", "Serve /debug/ routes on this address")
	return cmd
}

// serveDebug serves the debug routes until ctx is done.
func serveDebug(ctx context.Context, addr string, runner *triangulation.Runner) {
	mux := http.NewServeMux()
	runner.AttachAdminRoutes(mux)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			monitoring.Logf("debug server failed: %v", err)
		}
	}()
	monitoring.Logf("debug routes on http://%s/debug/", addr)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("debug server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			monitoring.Logf("debug server force close error: %v", err)
		}
	}
}
