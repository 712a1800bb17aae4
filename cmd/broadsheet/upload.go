package main

import (
	"github.com/spf13/cobra"

	"github.com/press-dig/broadsheet/internal/manifest"
	"github.com/press-dig/broadsheet/internal/pipeline"
	"github.com/press-dig/broadsheet/internal/storage"
)

var uploadResultsCmd = &cobra.Command{
	Use:   "upload-results",
	Short: "Upload pending result files left behind by an interrupted run",
	Long: `Push every result file still in the pending output directory to
remote storage and move it to the uploaded holding area.

Runs do this automatically at startup and at every checkpoint; this
command exists for manual reconciliation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
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

		manifests := manifest.NewStore(store, h, logger)
		checkpointer := pipeline.NewCheckpointer(manifests, store, h, logger)
		checkpointer.ProcessedName = cfg.Manifest.Processed
		return checkpointer.UploadOutstanding(cmd.Context())
	},
}
