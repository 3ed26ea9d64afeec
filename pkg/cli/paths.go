package cli

import (
	"os"
	"path/filepath"
)

// Paths derives the voiceink directory layout from one base directory.
type Paths struct {
	// BaseDir is the root of the layout (~/.voiceink by default, or the
	// directory of a custom config file).
	BaseDir string
}

// DefaultPaths returns the layout rooted at ~/.voiceink.
func DefaultPaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, err
	}
	return Paths{BaseDir: filepath.Join(home, DefaultBaseDir)}, nil
}

// ConfigFile returns the config file path (<base>/config.yaml)
func (p Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir, DefaultConfigFile)
}

// ModelsDir returns the models directory (<base>/models)
func (p Paths) ModelsDir() string {
	return filepath.Join(p.BaseDir, "models")
}

// ModelDir returns the directory of a named model (<base>/models/<name>)
func (p Paths) ModelDir(name string) string {
	return filepath.Join(p.ModelsDir(), name)
}

// EnsureBaseDir creates the base directory if it doesn't exist
func (p Paths) EnsureBaseDir() error {
	return os.MkdirAll(p.BaseDir, 0755)
}

// EnsureModelsDir creates the models directory if it doesn't exist
func (p Paths) EnsureModelsDir() error {
	return os.MkdirAll(p.ModelsDir(), 0755)
}
