// Package config loads adimpact settings from an optional YAML file,
// a .env file and the process environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"adimpact/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Output formats understood by the report renderer.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// Config represents the complete application configuration
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Report ReportConfig `mapstructure:"report"`
	Server ServerConfig `mapstructure:"server"`
}

// LogConfig controls logging verbosity and output style.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// ReportConfig holds the report's ranking limits and output settings.
type ReportConfig struct {
	// TopCampaigns is how many campaigns the ranked table keeps.
	TopCampaigns int `mapstructure:"top_campaigns"`

	// KeywordCampaigns is how many top campaigns feed keyword analysis.
	KeywordCampaigns int `mapstructure:"keyword_campaigns"`

	// MaxKeywords is how many recurring keywords the paragraph names.
	MaxKeywords int `mapstructure:"max_keywords"`

	// Format is the default output format: markdown, html or json.
	Format string `mapstructure:"format"`

	// LenientNumbers also accepts currency symbols, percent signs and
	// thousands separators when coercing metric cells.
	LenientNumbers bool `mapstructure:"lenient_numbers"`
}

// ServerConfig holds upload dashboard settings
type ServerConfig struct {
	Port        string `mapstructure:"port"`
	GinMode     string `mapstructure:"gin_mode"`
	MaxUploadMB int    `mapstructure:"max_upload_mb"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Report: ReportConfig{
			TopCampaigns:     50,
			KeywordCampaigns: 20,
			MaxKeywords:      4,
			Format:           FormatMarkdown,
		},
		Server: ServerConfig{
			Port:        "8080",
			GinMode:     "release",
			MaxUploadMB: 50,
		},
	}
}

// Load reads configuration. Sources, lowest precedence first: defaults,
// ./adimpact.yaml (or configFile), .env, environment. Environment keys use
// the ADIMPACT_ prefix (ADIMPACT_REPORT_TOP_CAMPAIGNS); LOG_LEVEL, PORT and
// GIN_MODE are honoured unprefixed as well.
func Load(configFile string) (*Config, error) {
	// Missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("adimpact")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "adimpact"))
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	v.SetEnvPrefix("ADIMPACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("log.level", "ADIMPACT_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("server.port", "ADIMPACT_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.gin_mode", "ADIMPACT_SERVER_GIN_MODE", "GIN_MODE")

	setDefaults(v, DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "error reading config file")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "error parsing config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.pretty", d.Log.Pretty)
	v.SetDefault("report.top_campaigns", d.Report.TopCampaigns)
	v.SetDefault("report.keyword_campaigns", d.Report.KeywordCampaigns)
	v.SetDefault("report.max_keywords", d.Report.MaxKeywords)
	v.SetDefault("report.format", d.Report.Format)
	v.SetDefault("report.lenient_numbers", d.Report.LenientNumbers)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.gin_mode", d.Server.GinMode)
	v.SetDefault("server.max_upload_mb", d.Server.MaxUploadMB)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Report.TopCampaigns <= 0 {
		return errors.ConfigInvalid("report.top_campaigns must be positive")
	}
	if c.Report.KeywordCampaigns <= 0 {
		return errors.ConfigInvalid("report.keyword_campaigns must be positive")
	}
	if c.Report.MaxKeywords <= 0 {
		return errors.ConfigInvalid("report.max_keywords must be positive")
	}
	if err := ValidateFormat(c.Report.Format); err != nil {
		return err
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("server.max_upload_mb must be positive")
	}
	return nil
}

// ValidateFormat rejects output formats the renderer does not know.
func ValidateFormat(format string) error {
	switch format {
	case FormatMarkdown, FormatHTML, FormatJSON:
		return nil
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown output format %q (want markdown, html or json)", format))
	}
}
