package mapper

import (
	"strings"

	"github.com/lk2023060901/garden-serde/pkg/log"
	"github.com/lk2023060901/garden-serde/pkg/serde/format"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
	"github.com/lk2023060901/garden-serde/pkg/util/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SERDE_MAPPER_INCLUSION.
const EnvPrefix = "serde"

// Config is the file form of the mapper options.
//
//	mapper:
//	  default-content-type: application/json
//	  inclusion: non-empty
//	  fail-on-unknown-fields: false
//	log:
//	  level: info
type Config struct {
	Mapper MapperConfig `mapstructure:"mapper"`
	Log    log.Config   `mapstructure:"log"`
}

type MapperConfig struct {
	DefaultContentType  string `mapstructure:"default-content-type"`
	Inclusion           string `mapstructure:"inclusion"`
	FailOnUnknownFields bool   `mapstructure:"fail-on-unknown-fields"`
}

func newViper() *viper.Config {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetDefault("mapper.default-content-type", format.ContentTypeJSON)
	v.SetDefault("mapper.inclusion", InclusionNonEmpty.String())
	v.SetDefault("mapper.fail-on-unknown-fields", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", log.FormatConsole)
	return v
}

// DefaultConfig returns the defaults, with environment overrides applied.
func DefaultConfig() (*Config, error) {
	cfg := &Config{}
	if err := newViper().Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML or JSON config file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	v := newViper()
	if err := v.LoadFile(path); err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseInclusion parses "non-empty" or "always".
func ParseInclusion(s string) (Inclusion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", InclusionNonEmpty.String(), "non_empty", "nonempty":
		return InclusionNonEmpty, nil
	case InclusionAlways.String():
		return InclusionAlways, nil
	}
	return 0, merr.WrapErrParameterInvalid("non-empty|always", s, "inclusion")
}

// Options converts the config to mapper options. The default content type is
// checked against the built-in formats.
func (c *Config) Options() ([]Option, error) {
	inclusion, err := ParseInclusion(c.Mapper.Inclusion)
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithInclusion(inclusion),
		WithFailOnUnknownFields(c.Mapper.FailOnUnknownFields),
	}
	if ct := c.Mapper.DefaultContentType; ct != "" {
		if _, err := format.DefaultRegistry().Get(ct); err != nil {
			return nil, err
		}
		opts = append(opts, WithDefaultContentType(ct))
	}
	return opts, nil
}
