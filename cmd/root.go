package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/stft-explainer/configs"
	"github.com/RyanBlaney/stft-explainer/logging"
)

var (
	configFile   string
	logLevel     string
	outputFormat string
	samplesDir   string
	chunkSize    int
	overlapRatio int
	workers      int

	// appViper holds the configuration of the running command
	appViper = viper.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stft-explainer",
	Short: "Short-time Fourier transform explorer",
	Long: `Decompose audio into a sequence of short-time spectra and put it back together.

Key features:
- Windowed FFT analysis with and without overlap
- Overlap-add reconstruction with error report
- Silencing a frequency band and hearing the result
- Spectrogram data in decibels, trimmed to the audible content`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "",
		"config file (YAML)")
	flags.StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	flags.StringVarP(&outputFormat, "output", "o", "table",
		"output format (table, json, yaml)")
	flags.StringVar(&samplesDir, "samples-dir", "samples",
		"directory holding the bundled sample WAV files")
	flags.IntVar(&chunkSize, "chunk-size", 512,
		"analysis chunk size (power of two)")
	flags.IntVar(&overlapRatio, "overlap-ratio", 8,
		"chunks overlapping each sample in overlap-add mode")
	flags.IntVar(&workers, "workers", 0,
		"transform workers (0 = based on CPU count)")
}

// flagKeys maps persistent flags to configuration keys
var flagKeys = map[string]string{
	"log-level":     "log_level",
	"output":        "output_format",
	"samples-dir":   "samples_dir",
	"chunk-size":    "analysis.chunk_size",
	"overlap-ratio": "analysis.overlap_ratio",
	"workers":       "analysis.workers",
}

// initializeConfig loads the config file and environment, binds flags on top
// and installs the global logger
func initializeConfig(cmd *cobra.Command) error {
	loaded, err := configs.NewViper(configFile)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	appViper = loaded

	if err := bindFlags(cmd, appViper); err != nil {
		return err
	}

	level, err := logging.ParseLevel(appViper.GetString("log_level"))
	if err != nil {
		return err
	}

	logger := logging.NewDefaultLogger()
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)

	if configFile != "" {
		logging.Debug("Using config file", logging.Fields{"path": appViper.ConfigFileUsed()})
	}

	return nil
}

// bindFlags binds changed flags to their configuration keys so that flags
// override the config file and environment
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || !f.Changed {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

// loadConfig returns the validated configuration for the running command
func loadConfig() (*configs.Config, error) {
	return configs.LoadConfig(appViper)
}
