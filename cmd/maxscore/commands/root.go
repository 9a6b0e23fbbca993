// Package commands implements the maxscore CLI commands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/maxscore/pkg/cache"
	"github.com/Sumatoshi-tech/maxscore/pkg/config"
	"github.com/Sumatoshi-tech/maxscore/pkg/observability"
	"github.com/Sumatoshi-tech/maxscore/pkg/scoring"
	"github.com/Sumatoshi-tech/maxscore/pkg/version"
)

// annotationMode names the cobra annotation that selects the observability
// mode of a command.
const annotationMode = "observability.mode"

// App is the state shared by all commands of one invocation. It is built by
// the root command before any subcommand runs.
type App struct {
	Config    *config.Config
	Providers observability.Providers
	Logger    *slog.Logger
	Engine    *scoring.Engine
	Cache     *cache.ResultCache[*scoring.Result]

	configPath string
	verbose    bool
	quiet      bool
}

// NewRootCommand creates the maxscore root command with all subcommands.
func NewRootCommand() *cobra.Command {
	app := &App{}

	rootCmd := &cobra.Command{
		Use:   "maxscore",
		Short: "Find all maximal scoring subsequences of a numeric sequence",
		Long: `maxscore finds every maximal scoring subsequence of a sequence of scores
in linear time (Ruzzo-Tompa).

Commands:
  run       Search a file or stdin
  demo      Run the built-in example inputs
  bench     Time the search on random inputs
  mcp       Serve the search as an MCP tool over stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return app.teardown(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default .maxscore.yaml in . or $HOME)")
	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&app.quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newDemoCommand(app))
	rootCmd.AddCommand(newBenchCommand(app))
	rootCmd.AddCommand(NewMCPCommand(app))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// setup loads the configuration and builds the observability providers and
// the engine.
func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	a.Config = cfg

	obsCfg, err := a.observabilityConfig(cmd)
	if err != nil {
		return err
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	a.Providers = providers
	a.Logger = providers.Logger

	if cfg.Cache.Enabled {
		a.Cache = cache.New[*scoring.Result](cfg.Cache.Entries)
	}

	return a.buildEngine(providers.Meter)
}

// buildEngine (re)creates the engine with scan metrics from meter.
func (a *App) buildEngine(meter metric.Meter) error {
	scanMetrics, err := observability.NewScanMetrics(meter)
	if err != nil {
		return fmt.Errorf("scan metrics: %w", err)
	}

	a.Engine = scoring.New(scoring.Deps{
		Logger:  a.Logger,
		Tracer:  a.Providers.Tracer,
		Metrics: scanMetrics,
		Cache:   a.Cache,
	})

	return nil
}

func (a *App) observabilityConfig(cmd *cobra.Command) (observability.Config, error) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	cfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	cfg.Environment = os.Getenv("MAXSCORE_ENV")
	cfg.LogJSON = a.Config.Logging.JSON
	cfg.LogOutput = cmd.ErrOrStderr()

	level, err := observability.ParseLevel(a.Config.Logging.Level)
	if err != nil {
		return cfg, err
	}

	cfg.LogLevel = level

	switch {
	case a.verbose:
		cfg.LogLevel = slog.LevelDebug
	case a.quiet:
		cfg.LogLevel = slog.LevelError
	}

	if cmd.Annotations[annotationMode] == string(observability.ModeMCP) {
		cfg.Mode = observability.ModeMCP
		cfg.LogJSON = true
	}

	if debug, lookupErr := cmd.Flags().GetBool("debug"); lookupErr == nil && debug {
		cfg.LogLevel = slog.LevelDebug
		cfg.DebugTrace = true
	}

	return cfg, nil
}

func (a *App) teardown(ctx context.Context) error {
	if a.Providers.Shutdown == nil {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if a.Cache != nil {
		st := a.Cache.Stats()
		a.Logger.DebugContext(ctx, "result cache",
			"hits", st.Hits,
			"misses", st.Misses,
			"evictions", st.Evictions,
			"entries", st.Entries,
			"hit_rate", st.HitRate(),
		)
	}

	err := a.Providers.Shutdown(ctx)
	if err != nil {
		a.Logger.Warn("observability shutdown failed", "error", err)
	}

	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		// The version needs no configuration or telemetry.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "maxscore %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
