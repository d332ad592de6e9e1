package log

// Config configures the global logger.
type Config struct {
	Name  string `conf:"name" yaml:"name" json:"name"`
	Debug bool   `conf:"debug" yaml:"debug" json:"debug"`

	// Level is one of debug, info, warn, error.
	Level string `conf:"level" yaml:"level" json:"level"`

	// Encoding is json or console.
	Encoding string `conf:"encoding" yaml:"encoding" json:"encoding"`

	// Output is stdout, stderr or a file path. File output is rotated.
	Output string       `conf:"output" yaml:"output" json:"output"`
	File   RotateConfig `conf:"file" yaml:"file" json:"file"`
}

type RotateConfig struct {
	MaxSizeMB  int  `conf:"max_size_mb" yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int  `conf:"max_backups" yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int  `conf:"max_age_days" yaml:"max_age_days" json:"max_age_days"`
	Compress   bool `conf:"compress" yaml:"compress" json:"compress"`
}
