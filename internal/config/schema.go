package config

// Config is the top-level broadsheet configuration.
type Config struct {
	Storage     StorageCfg     `mapstructure:"storage" yaml:"storage"`
	Manifest    ManifestCfg    `mapstructure:"manifest" yaml:"manifest"`
	Run         RunCfg         `mapstructure:"run" yaml:"run"`
	Recognition RecognitionCfg `mapstructure:"recognition" yaml:"recognition"`
}

// StorageCfg configures the remote object store holding the corpus.
type StorageCfg struct {
	AccountURL string `mapstructure:"account_url" yaml:"account_url"` // SAS URL (supports ${ENV_VAR} syntax)
	Container  string `mapstructure:"container" yaml:"container"`
}

// ManifestCfg configures manifest names and corpus filtering.
type ManifestCfg struct {
	Corpus        string `mapstructure:"corpus" yaml:"corpus"`                 // corpus manifest file name
	Processed     string `mapstructure:"processed" yaml:"processed"`           // processed manifest file name
	Suffix        string `mapstructure:"suffix" yaml:"suffix"`                 // structure-document suffix, e.g. "-METS.xml"
	ExcludePrefix string `mapstructure:"exclude_prefix" yaml:"exclude_prefix"` // top-level namespace excluded from generation
}

// RunCfg specifies pipeline run defaults.
type RunCfg struct {
	Workers         int  `mapstructure:"workers" yaml:"workers"`                   // parallel worker count
	MaxIssues       int  `mapstructure:"max_issues" yaml:"max_issues"`             // cap per run, 0 = unlimited
	CheckpointEvery int  `mapstructure:"checkpoint_every" yaml:"checkpoint_every"` // issues per checkpoint
	DryRun          bool `mapstructure:"dry_run" yaml:"dry_run"`
}

// RecognitionCfg selects and configures the recognition engine.
type RecognitionCfg struct {
	Engine   string `mapstructure:"engine" yaml:"engine"`     // "tesseract", "openai", "dry-run"
	Language string `mapstructure:"language" yaml:"language"` // tesseract language code
	Model    string `mapstructure:"model" yaml:"model"`       // openai vision model
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`   // API key (supports ${ENV_VAR} syntax)
}
