package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/config"
)

var version = "0.1.0"

const defaultConfigPath = "config/config.toml"

var (
	configPath string
	logLevel   string
	logFormat  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "addrecon",
		Short: "Find primary addresses that have no equivalent in a reference workbook",
		Long: `addrecon compares every unique address of a primary workbook against the
addresses of a reference workbook, asking an LLM whether two addresses name the same
place, and writes the addresses it could not match to a colour-coded report.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel, logFormat)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file (default "+defaultConfigPath+" if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format: console or json")

	rootCmd.AddCommand(createRunCmd())
	rootCmd.AddCommand(createServeCmd())
	rootCmd.AddCommand(createVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func createVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func setupLogging(level, format string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	switch format {
	case "console":
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	case "json":
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	default:
		return fmt.Errorf("invalid log format %q", format)
	}
	return nil
}

// loadConfig reads .env, then the config file, then environment overrides.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}

	path := configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		log.Debug().Str("path", path).Msg("loaded config")
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
