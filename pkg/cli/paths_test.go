package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPaths(t *testing.T) {
	paths, err := DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths error: %v", err)
	}

	if filepath.Base(paths.BaseDir) != DefaultBaseDir {
		t.Errorf("BaseDir = %q, want a %q directory", paths.BaseDir, DefaultBaseDir)
	}
}

func TestPaths_ConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	paths := Paths{BaseDir: tmpDir}

	configFile := paths.ConfigFile()
	expected := filepath.Join(tmpDir, DefaultConfigFile)

	if configFile != expected {
		t.Errorf("ConfigFile() = %q, want %q", configFile, expected)
	}
}

func TestPaths_ModelDir(t *testing.T) {
	tmpDir := t.TempDir()
	paths := Paths{BaseDir: tmpDir}

	modelDir := paths.ModelDir("sensevoice-small")
	expected := filepath.Join(tmpDir, "models", "sensevoice-small")

	if modelDir != expected {
		t.Errorf("ModelDir() = %q, want %q", modelDir, expected)
	}
}

func TestPaths_EnsureDirs(t *testing.T) {
	tmpDir := t.TempDir()
	paths := Paths{BaseDir: filepath.Join(tmpDir, DefaultBaseDir)}

	if err := paths.EnsureModelsDir(); err != nil {
		t.Fatalf("EnsureModelsDir error: %v", err)
	}

	info, err := os.Stat(paths.ModelsDir())
	if err != nil {
		t.Fatalf("stat %s: %v", paths.ModelsDir(), err)
	}
	if !info.IsDir() {
		t.Errorf("%s is not a directory", paths.ModelsDir())
	}
}
