package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/press-dig/broadsheet/internal/config"
	"github.com/press-dig/broadsheet/internal/corpus"
	"github.com/press-dig/broadsheet/internal/home"
	"github.com/press-dig/broadsheet/internal/manifest"
	"github.com/press-dig/broadsheet/internal/metrics"
	"github.com/press-dig/broadsheet/internal/pipeline"
	"github.com/press-dig/broadsheet/internal/progress"
	"github.com/press-dig/broadsheet/internal/recognize"
	"github.com/press-dig/broadsheet/internal/storage"
)

var (
	runWorkers         int
	runMaxIssues       int
	runCheckpointEvery int
	runDryRun          bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process pending issues from the corpus",
	Long: `Run the processing pipeline over the pending portion of the corpus.

Pending issues are the corpus manifest minus the processed manifest.
They are downloaded, distributed across workers, processed into
per-issue CSV result files, and checkpointed: once an issue is recorded
in the processed manifest and its result file uploaded, no later run
touches it again.

Examples:
  broadsheet run                         # defaults from config
  broadsheet run --workers 8             # more parallel workers
  broadsheet run --max-issues 100        # bounded batch
  broadsheet run --dry-run               # skip recognition, exercise the rest`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyRunFlags(cmd, cfg)

		h, err := setupHome()
		if err != nil {
			return err
		}

		store, err := storage.NewBlobStore(storage.BlobStoreConfig{
			AccountURL: cfg.Storage.AccountURL,
			Container:  cfg.Storage.Container,
		})
		if err != nil {
			return err
		}

		driver, err := buildDriver(h, store, cfg, logger)
		if err != nil {
			return err
		}
		return driver.Run(cmd.Context())
	},
}

func init() {
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "parallel worker count")
	runCmd.Flags().IntVar(&runMaxIssues, "max-issues", 0, "max issues this run (0 = config default)")
	runCmd.Flags().IntVar(&runCheckpointEvery, "checkpoint-every", 0, "issues per checkpoint")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "skip recognition, record sentinel text")
}

// applyRunFlags overlays explicitly set flags onto the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("workers") {
		cfg.Run.Workers = runWorkers
	}
	if cmd.Flags().Changed("max-issues") {
		cfg.Run.MaxIssues = runMaxIssues
	}
	if cmd.Flags().Changed("checkpoint-every") {
		cfg.Run.CheckpointEvery = runCheckpointEvery
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.Run.DryRun = runDryRun
	}
}

// buildDriver wires the pipeline collaborators for one run.
func buildDriver(h *home.Dir, store storage.Store, cfg *config.Config, logger *slog.Logger) (*pipeline.Driver, error) {
	engineCfg := recognize.Config{
		Engine:   cfg.Recognition.Engine,
		Language: cfg.Recognition.Language,
		Model:    cfg.Recognition.Model,
		APIKey:   cfg.Recognition.APIKey,
	}
	if cfg.Run.DryRun {
		engineCfg.Engine = "dry-run"
	}
	engine, err := recognize.NewEngine(engineCfg)
	if err != nil {
		return nil, err
	}

	rec := metrics.NewRecorder()

	manifests := manifest.NewStore(store, h, logger)
	manifests.Suffix = cfg.Manifest.Suffix
	manifests.ExcludePrefix = cfg.Manifest.ExcludePrefix

	syncer := corpus.NewSyncer(store, h, logger)
	syncer.Suffix = cfg.Manifest.Suffix

	checkpointer := pipeline.NewCheckpointer(manifests, store, h, logger)
	checkpointer.ProcessedName = cfg.Manifest.Processed
	checkpointer.Suffix = cfg.Manifest.Suffix

	worker := pipeline.NewWorker(h, engine, rec, logger)
	worker.Suffix = cfg.Manifest.Suffix
	worker.DryRun = cfg.Run.DryRun

	driver := pipeline.NewDriver(pipeline.DriverOptions{
		Manifests:    manifests,
		Syncer:       syncer,
		Checkpointer: checkpointer,
		Reporter:     progress.NewReporter(manifests, logger),
		Processor:    worker,
		Recorder:     rec,
		Log:          logger,
	})
	driver.CorpusName = cfg.Manifest.Corpus
	driver.ProcessedName = cfg.Manifest.Processed
	driver.Workers = cfg.Run.Workers
	driver.MaxIssues = cfg.Run.MaxIssues
	driver.CheckpointEvery = cfg.Run.CheckpointEvery
	return driver, nil
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the home directory and a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := setupHome()
		if err != nil {
			return err
		}
		if h.ConfigExists() {
			cmd.Printf("config already exists at %s\n", h.ConfigPath())
			return nil
		}
		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}
		cmd.Printf("wrote default config to %s\n", h.ConfigPath())
		return nil
	},
}
