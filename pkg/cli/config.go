package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".voiceink"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// Config represents the persisted configuration for the voiceink CLI
type Config struct {
	// DefaultModel is the model used when none is given on the command line
	DefaultModel string `yaml:"default_model,omitempty"`

	// ModelsDir overrides the models directory (~/.voiceink/models)
	ModelsDir string `yaml:"models_dir,omitempty"`

	// Language is the recognition language hint for models that take one
	// ("zh", "en", "yue", "ja", "ko"; empty for automatic detection)
	Language string `yaml:"language,omitempty"`

	// SkipTextNorm disables inverse text normalization for models that
	// support it
	SkipTextNorm bool `yaml:"skip_text_norm,omitempty"`

	// VAD configures voice activity segmentation of long recordings
	VAD VADConfig `yaml:"vad,omitempty"`

	// Models maps a model name to its configuration
	Models map[string]*ModelConfig `yaml:"models,omitempty"`

	// configPath is the path to the config file
	configPath string
}

// VADConfig configures voice activity segmentation
type VADConfig struct {
	// Enabled turns segmentation of long recordings on
	Enabled bool `yaml:"enabled,omitempty"`

	// Mode is the detector aggressiveness, 0 (permissive) to 3 (strict)
	Mode int `yaml:"mode,omitempty"`

	// ThresholdSeconds is the minimum recording length, in seconds, before
	// segmentation kicks in (default 20)
	ThresholdSeconds int `yaml:"threshold_seconds,omitempty"`
}

// ModelConfig describes one installed recognition model
type ModelConfig struct {
	// Name is the model name (map key, set on load)
	Name string `yaml:"name,omitempty"`

	// Family is the model family: "fastconformer", "sensevoice" or
	// "parakeet"
	Family string `yaml:"family"`

	// Dir overrides the model directory (default <models_dir>/<name>)
	Dir string `yaml:"dir,omitempty"`
}

// LoadConfig loads or creates the voiceink configuration
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath("")
}

// LoadConfigWithPath loads configuration from a custom path
func LoadConfigWithPath(customPath string) (*Config, error) {
	var configPath string

	if customPath != "" {
		configPath = customPath
	} else {
		paths, err := DefaultPaths()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = paths.ConfigFile()
	}

	// Ensure config directory exists
	if err := (Paths{BaseDir: filepath.Dir(configPath)}).EnsureBaseDir(); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		Models:     make(map[string]*ModelConfig),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Create empty config file
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Ensure models map is initialized
	if cfg.Models == nil {
		cfg.Models = make(map[string]*ModelConfig)
	}
	for name, m := range cfg.Models {
		m.Name = name
	}

	cfg.configPath = configPath

	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory path
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// Paths returns the directory layout rooted at the config directory
func (c *Config) Paths() Paths {
	return Paths{BaseDir: c.Dir()}
}

// ResolvedModelsDir returns the models directory, applying the default
// when unset
func (c *Config) ResolvedModelsDir() string {
	if c.ModelsDir != "" {
		return c.ModelsDir
	}
	return c.Paths().ModelsDir()
}

// AddModel registers a model and persists the change
func (c *Config) AddModel(name string, m *ModelConfig) error {
	m.Name = name
	c.Models[name] = m
	return c.Save()
}

// DeleteModel removes a model registration
func (c *Config) DeleteModel(name string) error {
	if _, ok := c.Models[name]; !ok {
		return fmt.Errorf("model %q not found", name)
	}
	delete(c.Models, name)
	if c.DefaultModel == name {
		c.DefaultModel = ""
	}
	return c.Save()
}

// UseModel sets the default model
func (c *Config) UseModel(name string) error {
	if _, ok := c.Models[name]; !ok {
		return fmt.Errorf("model %q not found", name)
	}
	c.DefaultModel = name
	return c.Save()
}

// GetModel returns a specific model configuration
func (c *Config) GetModel(name string) (*ModelConfig, error) {
	m, ok := c.Models[name]
	if !ok {
		return nil, fmt.Errorf("model %q not found", name)
	}
	return m, nil
}

// ResolveModel returns the model by name, or the default model if name is
// empty
func (c *Config) ResolveModel(name string) (*ModelConfig, error) {
	if name == "" {
		if c.DefaultModel == "" {
			return nil, fmt.Errorf("no default model set")
		}
		name = c.DefaultModel
	}
	return c.GetModel(name)
}

// ListModels returns all registered model names, sorted
func (c *Config) ListModels() []string {
	names := make([]string, 0, len(c.Models))
	for name := range c.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolvedDir returns the model's directory, applying the
// <models_dir>/<name> default when unset
func (m *ModelConfig) ResolvedDir(modelsDir string) string {
	if m.Dir != "" {
		return m.Dir
	}
	return filepath.Join(modelsDir, m.Name)
}
