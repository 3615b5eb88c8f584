// Package cmd provides the weft command-line interface.
//
// Configuration is layered: command-line flags override WEFT_*
// environment variables, which override the config file (.weft.yml by
// default, or the path given with --config / WEFT_CONFIG_FILE).
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/weft/internal/config"
	"github.com/conneroisu/weft/internal/logging"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "weft",
	Short: "A declarative directive engine for server-side HTML",
	Long: `Weft binds data to HTML through declarative data-* directives:
text and markup injection, conditionals, lists, classes, styles,
two-way form values, and event handlers, with allow-list sanitization
of everything that enters the tree.

Quick start:
  weft serve                   Start the preview server
  weft render /page.html       Render a stored template with mock state
  weft clean page.html         Sanitize a markup file
  weft version                 Show version information`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .weft.yml, or WEFT_CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")

	// accept underscores in flag names for parity with config keys
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = os.Getenv("WEFT_CONFIG_FILE")
	}
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".weft")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("WEFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: could not read config: %v\n", err)
		}
	}
}

// loadConfig resolves the effective configuration for a command run.
func loadConfig() (*config.Config, error) {
	return config.Load()
}

// newLogger builds the process logger from the --log-level flag.
func newLogger() logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(logLevel),
		Format: "text",
		Output: os.Stderr,
	})
}
