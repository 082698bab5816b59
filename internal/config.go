package internal

import (
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Vault   VaultConfig       `yaml:"vault"`
	Backup  BackupConfig      `yaml:"backup"`
	Match   MatchConfig       `yaml:"match"`
	Rewrite RewriteConfig     `yaml:"rewrite"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Match.Validate(); err != nil {
		return err
	}
	return c.Rewrite.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// VaultConfig holds the path to the Markdown vault directory.
type VaultConfig struct {
	Path string `yaml:"path"`
	// Ignore lists directory names excluded from the scan in addition
	// to dot directories, which are always skipped.
	Ignore []string `yaml:"ignore"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// BackupConfig controls safe mode.
//
// When Enabled (the default) the vault tree is snapshotted to a
// timestamped sibling directory before any note is written; a failed
// snapshot aborts the run. Disabling it applies mutations directly and
// is logged as a data-loss warning at run start.
type BackupConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// MatchConfig holds match-engine tuning.
type MatchConfig struct {
	// AcronymMinLength gates acronym matches; two-letter acronyms
	// produce too many false positives.
	AcronymMinLength int `yaml:"acronym_min_length"`
}

// Validate validates the match configuration.
func (c *MatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AcronymMinLength, validation.Required, validation.Min(2)),
	)
}

var headingRe = regexp.MustCompile(`^#{1,6} \S`)

// RewriteConfig controls where and how links are inserted.
type RewriteConfig struct {
	// SectionHeading delimits the block that collects inserted links.
	SectionHeading string `yaml:"section_heading"`
	// Inline additionally replaces occurrences of other notes' titles
	// in prose with wikilinks.
	Inline bool `yaml:"inline"`
}

// Validate validates the rewrite configuration.
func (c *RewriteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SectionHeading, validation.Required, validation.Match(headingRe)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Vault: VaultConfig{
			Path:   "./vault",
			Ignore: nil,
		},
		Backup: BackupConfig{
			Enabled: true,
		},
		Match: MatchConfig{
			AcronymMinLength: 3,
		},
		Rewrite: RewriteConfig{
			SectionHeading: "## Related",
		},
	}
}
