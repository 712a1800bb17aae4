package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/press-dig/broadsheet/internal/manifest"
	"github.com/press-dig/broadsheet/internal/progress"
	"github.com/press-dig/broadsheet/internal/storage"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Manage the corpus and processed manifests",
}

var manifestGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Regenerate the corpus manifest from remote storage",
	Long: `Rebuild the corpus manifest by listing remote storage.

Objects matching the configured structure-document suffix become corpus
entries; the configured excluded prefix is dropped. The regenerated
manifest is written locally and uploaded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manifests, cfg, err := buildManifestStore()
		if err != nil {
			return err
		}
		return manifests.Regenerate(cmd.Context(), cfg.corpusName)
	},
}

var manifestUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload the local manifests to remote storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		manifests, cfg, err := buildManifestStore()
		if err != nil {
			return err
		}
		if err := manifests.Upload(cmd.Context(), cfg.corpusName); err != nil {
			return err
		}
		return manifests.Upload(cmd.Context(), cfg.processedName)
	},
}

var manifestReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report corpus completion progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		manifests, cfg, err := buildManifestStore()
		if err != nil {
			return err
		}
		reporter := progress.NewReporter(manifests, newLogger())
		snap, err := reporter.Report(cmd.Context(), cfg.corpusName, cfg.processedName)
		if err != nil {
			return err
		}
		progress.Render(os.Stdout, snap)
		return nil
	},
}

var manifestCleanupCmd = &cobra.Command{
	Use:   "cleanup-processed",
	Short: "Delete the processed manifest locally and remotely",
	Long: `Delete the processed manifest so the next run reprocesses the whole
corpus. Result files already uploaded are untouched; reprocessing
overwrites them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manifests, cfg, err := buildManifestStore()
		if err != nil {
			return err
		}
		return manifests.Cleanup(cmd.Context(), cfg.processedName)
	},
}

var (
	corpusNameFlag    string
	processedNameFlag string
)

type manifestNames struct {
	corpusName    string
	processedName string
}

// buildManifestStore wires a manifest store from config and home.
func buildManifestStore() (*manifest.Store, manifestNames, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, manifestNames{}, err
	}
	h, err := setupHome()
	if err != nil {
		return nil, manifestNames{}, err
	}
	store, err := storage.NewBlobStore(storage.BlobStoreConfig{
		AccountURL: cfg.Storage.AccountURL,
		Container:  cfg.Storage.Container,
	})
	if err != nil {
		return nil, manifestNames{}, err
	}

	manifests := manifest.NewStore(store, h, newLogger())
	manifests.Suffix = cfg.Manifest.Suffix
	manifests.ExcludePrefix = cfg.Manifest.ExcludePrefix

	names := manifestNames{
		corpusName:    cfg.Manifest.Corpus,
		processedName: cfg.Manifest.Processed,
	}
	if corpusNameFlag != "" {
		names.corpusName = corpusNameFlag
	}
	if processedNameFlag != "" {
		names.processedName = processedNameFlag
	}
	return manifests, names, nil
}

func init() {
	manifestCmd.PersistentFlags().StringVar(
		&corpusNameFlag, "corpus", "", "corpus manifest name (default from config)",
	)
	manifestCmd.PersistentFlags().StringVar(
		&processedNameFlag, "processed", "", "processed manifest name (default from config)",
	)

	manifestCmd.AddCommand(manifestGenerateCmd)
	manifestCmd.AddCommand(manifestUploadCmd)
	manifestCmd.AddCommand(manifestReportCmd)
	manifestCmd.AddCommand(manifestCleanupCmd)
}
