package config

// DefaultConfig returns the built-in configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageCfg{
			AccountURL: "${AZURE_STORAGE_SAS_URL}",
			Container:  "${AZURE_STORAGE_CONTAINER_NAME}",
		},
		Manifest: ManifestCfg{
			Corpus:        "corpus.manifest.txt",
			Processed:     "processed.manifest.txt",
			Suffix:        "-METS.xml",
			ExcludePrefix: "Forverts",
		},
		Run: RunCfg{
			Workers:         4,
			MaxIssues:       16,
			CheckpointEvery: 1,
		},
		Recognition: RecognitionCfg{
			Engine:   "tesseract",
			Language: "heb",
			Model:    "gpt-4o-mini",
			APIKey:   "${OPENAI_API_KEY}",
		},
	}
}
