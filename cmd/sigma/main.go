package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sigmair/internal/config"
	"sigmair/internal/logging"
	"sigmair/internal/sigma"
)

var (
	// Global flags
	verbose    bool
	configPath string
	dbPath     string

	// Logger
	logger *zap.Logger

	// Loaded in PersistentPreRunE
	cfg        *config.Config
	translator *sigma.Translator
)

// defaultConfigPath is where config init writes and every command reads.
var defaultConfigPath = filepath.Join(".sigma", "config.yaml")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sigma",
	Short: "sigma - English to Σ-IR translator",
	Long: `sigma translates short English task descriptions into Σ-IR blocks:
compact bracketed strings of primitive codes, payload terms and modifiers.

  sigma translate "Design a language specification"
  [[I2 O4|specification|_]]

Blocks can be collected in a persisted list and assembled into a
deterministic, deduplicated Σ-frame. Run "sigma tui" for the interactive
frame builder.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.Store.DatabasePath = dbPath
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", configPath, err)
		}

		// Initialize logger
		logger, err = logging.Build(logging.Options{
			Level:      cfg.Logging.Level,
			Format:     cfg.Logging.Format,
			File:       cfg.Logging.File,
			Categories: cfg.Logging.Categories,
		})
		if err != nil {
			// Fall back to a plain production logger
			zc := zap.NewProductionConfig()
			if verbose {
				zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			if logger, err = zc.Build(); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
		}
		logging.Initialize(logger, cfg.Logging.Categories)

		lex, err := config.LoadLexicon(cfg.Lexicon.Path, cfg.Lexicon.Mode)
		if err != nil {
			return err
		}
		if cfg.Lexicon.Path != "" {
			logging.Boot("Loaded lexicon %s (mode %s)", cfg.Lexicon.Path, cfg.Lexicon.Mode)
		}
		translator = sigma.NewTranslator(lex)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Block list database (overrides config)")

	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(frameCmd)
	rootCmd.AddCommand(blocksCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(grammarCmd)
	rootCmd.AddCommand(checkpointCmd)
	rootCmd.AddCommand(reasoningCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(tuiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// activeConfig returns the loaded config, or defaults when a command runs
// without the root pre-run (tests).
func activeConfig() *config.Config {
	if cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}

// activeTranslator returns the lexicon-aware translator, or one over the
// built-in lexicon.
func activeTranslator() *sigma.Translator {
	if translator == nil {
		return sigma.NewTranslator(sigma.DefaultLexicon())
	}
	return translator
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
