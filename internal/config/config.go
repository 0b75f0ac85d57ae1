// Package config loads the harness settings from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFile     = "epub-harness.yaml"
	DefaultInputDir = "test-epubs"
	DefaultPreset   = "toc"
)

// Presets name the extractor commands shipped with this repository.
var Presets = map[string][]string{
	"toc":  {"epub-extractor", "dump-toc"},
	"jpeg": {"epub-extractor", "extract-jpeg"},
	"meta": {"epub-extractor", "dump-meta"},
	"text": {"epub-extractor", "dump-text"},
}

// Command is an extractor argv. In YAML it is either a preset name or a list.
type Command []string

func (c *Command) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		argv, err := Preset(n.Value)
		if err != nil {
			return err
		}
		*c = argv
		return nil
	}
	var argv []string
	if err := n.Decode(&argv); err != nil {
		return err
	}
	*c = argv
	return nil
}

type Config struct {
	// BaseDir anchors InputDir. It is not read from the file.
	BaseDir   string  `yaml:"-"`
	InputDir  string  `yaml:"input_dir"`
	Extractor Command `yaml:"extractor"`
	LogLevel  string  `yaml:"log_level"`
	LogFormat string  `yaml:"log_format"`
}

func Preset(name string) (Command, error) {
	argv, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown extractor preset %q", name)
	}
	return append(Command{}, argv...), nil
}

func Default(baseDir string) *Config {
	argv, _ := Preset(DefaultPreset)
	return &Config{
		BaseDir:   baseDir,
		InputDir:  DefaultInputDir,
		Extractor: argv,
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Load reads path on top of the defaults. A missing file is not an error
// unless required is set.
func Load(baseDir, path string, required bool) (*Config, error) {
	cfg := Default(baseDir)
	if path == "" {
		path = filepath.Join(baseDir, DefaultFile)
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("input_dir must not be empty")
	}
	if len(c.Extractor) == 0 || c.Extractor[0] == "" {
		return errors.New("extractor command must not be empty")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}

// InputPath is the input directory resolved against BaseDir.
func (c *Config) InputPath() string {
	if filepath.IsAbs(c.InputDir) {
		return c.InputDir
	}
	return filepath.Join(c.BaseDir, c.InputDir)
}

// Command is the extractor argv with a relative program path, one that
// names a file rather than a PATH lookup, resolved against BaseDir.
func (c *Config) Command() []string {
	argv := append([]string{}, c.Extractor...)
	if len(argv) == 0 {
		return argv
	}
	if prog := argv[0]; !filepath.IsAbs(prog) && strings.ContainsRune(prog, filepath.Separator) {
		argv[0] = filepath.Join(c.BaseDir, prog)
	}
	return argv
}

// Logger builds a logger writing to stderr.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = c.LogFormat
	zc.Sampling = nil
	if c.LogFormat == "console" {
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		zc.DisableStacktrace = true
	}
	return zc.Build()
}
