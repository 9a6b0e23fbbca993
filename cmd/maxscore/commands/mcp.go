package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/maxscore/pkg/mcp"
	"github.com/Sumatoshi-tech/maxscore/pkg/observability"
)

// metricsReadHeaderTimeout bounds slow clients of the metrics endpoint.
const metricsReadHeaderTimeout = 5 * time.Second

const (
	// metricsPath serves the Prometheus exposition.
	metricsPath = "/metrics"
	// meterName names the meter of the Prometheus provider.
	meterName = "github.com/Sumatoshi-tech/maxscore"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(app *App) *cobra.Command {
	var (
		debug       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes the search as a tool that AI agents can discover and
invoke:
  - find_maximal_subsequences: all maximal scoring subsequences of a list of
    values at a fixed or derived threshold

With --metrics-addr, RED and scan metrics are also served for Prometheus.`,
		Annotations:   map[string]string{annotationMode: string(observability.ModeMCP)},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			return app.serveMCP(cobraCmd.Context(), metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")

	return cmd
}

// serveMCP runs the MCP stdio server and, when metricsAddr is set, a
// Prometheus endpoint next to it. The metrics server stops when the MCP
// session ends or either one fails.
func (a *App) serveMCP(ctx context.Context, metricsAddr string) error {
	meter := a.Providers.Meter

	var metricsHandler http.Handler

	if metricsAddr != "" {
		provider, handler, err := observability.PrometheusProvider()
		if err != nil {
			return err
		}

		defer func() { _ = provider.Shutdown(context.Background()) }()

		meter = provider.Meter(meterName)
		metricsHandler = handler

		err = a.buildEngine(meter)
		if err != nil {
			return err
		}
	}

	red, err := observability.NewREDMetrics(meter)
	if err != nil {
		return err
	}

	srv := mcp.NewServer(mcp.ServerDeps{
		Logger:  a.Logger,
		Metrics: red,
		Tracer:  a.Providers.Tracer,
		Engine:  a.Engine,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer cancel()

		return srv.Run(groupCtx)
	})

	if metricsHandler != nil {
		mux := http.NewServeMux()
		mux.Handle(metricsPath, observability.HTTPMiddleware(a.Providers.Tracer, metricsHandler))

		httpSrv := &http.Server{
			Addr:              metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: metricsReadHeaderTimeout,
		}

		group.Go(func() error {
			a.Logger.InfoContext(groupCtx, "serving metrics", "addr", metricsAddr, "path", metricsPath)

			serveErr := httpSrv.ListenAndServe()
			if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", serveErr)
			}

			return nil
		})

		group.Go(func() error {
			<-groupCtx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsReadHeaderTimeout)
			defer cancel()

			return httpSrv.Shutdown(shutdownCtx)
		})
	}

	return group.Wait()
}
