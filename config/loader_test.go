package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoader_Load_Defaults(t *testing.T) {
	home, work := t.TempDir(), t.TempDir()

	cfg, err := NewLoader(quietLogger()).WithDirs(home, work).Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoader_Load_Layers(t *testing.T) {
	home, root := t.TempDir(), t.TempDir()
	work := filepath.Join(root, "studies", "drought")
	require.NoError(t, os.MkdirAll(work, 0755))

	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), `
output:
  encoding: iso-8859-1
  date_layout: "02.01.2006"
`)
	// Found by walking up from the working directory.
	writeFile(t, filepath.Join(root, ProjectConfigFile), `
output:
  dir: out
`)
	explicit := filepath.Join(t.TempDir(), "ci.yaml")
	writeFile(t, explicit, `
output:
  date_layout: "2006-01-02T15:04:05Z07:00"
`)

	cfg, err := NewLoader(quietLogger()).WithDirs(home, work).Load(explicit)
	require.NoError(t, err)

	assert.Equal(t, "iso-8859-1", cfg.Output.Encoding, "user layer survives later layers")
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "2006-01-02T15:04:05Z07:00", cfg.Output.DateLayout, "explicit file wins")
}

func TestLoader_Load_MissingExplicitFile(t *testing.T) {
	_, err := NewLoader(quietLogger()).WithDirs(t.TempDir(), t.TempDir()).Load("/does/not/exist.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_Load_InvalidResult(t *testing.T) {
	explicit := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, explicit, "output:\n  encoding: no-such-charset\n")

	_, err := NewLoader(quietLogger()).WithDirs(t.TempDir(), t.TempDir()).Load(explicit)
	assert.Error(t, err)
}

func TestLoader_EnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	loader := NewLoader(quietLogger()).WithDirs(home, t.TempDir())

	require.NoError(t, loader.EnsureUserConfig())
	path := filepath.Join(home, UserConfigDir, UserConfigFile)
	assert.FileExists(t, path)

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)

	// A second call leaves the existing file alone.
	writeFile(t, path, "output:\n  encoding: windows-1252\n")
	require.NoError(t, loader.EnsureUserConfig())
	loaded, err = LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "windows-1252", loaded.Output.Encoding)
}
