package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"fontdl/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	// DefaultsConfig is the lowest layer of download settings, profiles and
	// their units override it.
	DefaultsConfig struct {
		ServiceURL string `yaml:"service_url" validate:"required,url"`
		OutDir     string `yaml:"out_dir" sanitize:"path_clean" validate:"required"`
		CSSFile    string `yaml:"css_file" validate:"required"`
		EmptyDir   bool   `yaml:"empty_dir"`
		URLPrefix  string `yaml:"url_prefix"`
		UserAgent  string `yaml:"user_agent" validate:"required"`
		Pattern    string `yaml:"pattern" validate:"required"`
		Ext        string `yaml:"ext" validate:"required,alphanum"`
	}

	DownloadConfig struct {
		Concurrency int                  `yaml:"concurrency" validate:"min=1,max=64"`
		Timeout     time.Duration        `yaml:"timeout" validate:"gte=0"`
		OnError     common.FailurePolicy `yaml:"on_error" validate:"gte=0"`
		CheckType   common.TypeCheck     `yaml:"check_type" validate:"gte=0"`
	}

	ProfilesConfig struct {
		Dir string `yaml:"dir" sanitize:"path_clean"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Defaults  DefaultsConfig `yaml:"defaults"`
		Download  DownloadConfig `yaml:"download"`
		Profiles  ProfilesConfig `yaml:"profiles"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	PatternFieldName TemplateFieldName = "pattern"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(PatternFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// SetConcurrency replaces download concurrency keeping the rest of the
// configuration constraints, used for command line overrides.
func (c *Config) SetConcurrency(n int) error {
	dc := c.Download
	dc.Concurrency = n
	if err := gencfg.Validate(&dc); err != nil {
		return fmt.Errorf("bad concurrency %d: %w", n, err)
	}
	c.Download = dc
	return nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration tamplate to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
