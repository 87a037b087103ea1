package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/edaloom-cli/internal/config"
	"github.com/KaramelBytes/edaloom-cli/internal/logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global

	logger = slog.Default()

	// appFs backs every dataset read and report write.
	appFs afero.Fs = afero.NewOsFs()
)

var rootCmd = &cobra.Command{
	Use:   "edaloom",
	Short: "edaloom: automated exploratory data analysis for CSV/TSV/XLSX files",
	Long: `edaloom classifies every column of a tabular file, computes type-appropriate
statistics, measures data quality, finds strong correlations and turns the results
into insights and recommendations, as text, JSON or YAML reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.edaloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log output format: text|json (overrides config)")
	registerLoadFlags(rootCmd)
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so read-only commands still work
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = defaultConfig()
	}
	cfg = c

	format, level := cfg.LogFormat, cfg.LogLevel
	if logFormat != "" {
		format = logFormat
	}
	if debug {
		level = "debug"
	}
	logger = logging.New(format, level, os.Stderr)
}

func defaultConfig() *cfgpkg.Global {
	return &cfgpkg.Global{
		CorrelationThreshold: 0.7,
		ReportFormat:         "text",
		LogFormat:            "text",
		LogLevel:             "warn",
	}
}

// settings returns the loaded configuration or the built-in defaults.
func settings() *cfgpkg.Global {
	if cfg == nil {
		return defaultConfig()
	}
	return cfg
}
