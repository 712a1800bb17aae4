package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/press-dig/broadsheet/internal/config"
	"github.com/press-dig/broadsheet/internal/home"
	"github.com/press-dig/broadsheet/version"
)

var (
	cfgFile string
	homeDir string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "broadsheet",
	Short: "Batch OCR pipeline for digitized newspaper archives",
	Long: `Broadsheet processes digitized newspaper issues from a remote corpus
into per-issue article text files.

The pipeline includes:
  - Manifest-driven work selection with durable checkpoints
  - Structure/layout alignment of articles to page regions
  - Pluggable text recognition (tesseract, OpenAI vision)
  - Crash-safe resume: interrupted runs pick up where they left off`,
	Version: version.GitRelease,

	// main prints the error; keep cobra from echoing it a second time.
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.broadsheet/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "broadsheet home directory (default: ~/.broadsheet)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	// Secrets may live in a .env file next to the working directory.
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	}

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(manifestCmd)
	rootCmd.AddCommand(uploadResultsCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the process logger honoring the verbose flag.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

// setupHome resolves and creates the home directory.
func setupHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, err
	}
	return h, nil
}

// loadConfig loads the resolved configuration, expanding ${ENV_VAR}
// references in secrets.
func loadConfig() (*config.Config, error) {
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	return cm.Get().Resolved(), nil
}
