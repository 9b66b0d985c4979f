// Command nexusflow runs a dataflow pipeline described by a declarative
// YAML configuration file until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/youngzilla0/nexusflow"
	"github.com/youngzilla0/nexusflow/modules"
)

var (
	logLevel    string
	metricsAddr string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "nexusflow <config.yaml>",
		Short:        "Run a dataflow pipeline from a declarative config",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         run,
	}
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (empty disables)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	modules.RegisterBuiltins()

	opts := []nexusflow.Option{nexusflow.WithLogger(log)}
	registry := prometheus.NewRegistry()
	if metricsAddr != "" {
		opts = append(opts, nexusflow.WithMetrics(nexusflow.NewMetrics(registry)))
	}

	pipe, err := nexusflow.CreateFromYaml(args[0], opts...)
	if err != nil {
		return err
	}
	if err := pipe.Init(); err != nil {
		return err
	}
	if err := pipe.Start(); err != nil {
		_ = pipe.DeInit()
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	if metricsAddr != "" {
		srv := &http.Server{
			Addr:    metricsAddr,
			Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}
		g.Go(func() error {
			log.Info("serving metrics", "addr", metricsAddr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("runtime error", "error", err)
	}
	log.Info("shutting down")

	if err := pipe.Stop(); err != nil {
		_ = pipe.DeInit()
		return err
	}
	return pipe.DeInit()
}
