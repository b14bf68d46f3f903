package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// mapReader is a Reader backed by a map.
type mapReader map[string]string

func (m mapReader) Getenv(key string) string { return m[key] }

func TestLoadFileDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), mapReader{})
	require.NoError(t, err)
	require.Equal(t, 1, cfg.ServerID)
	require.Equal(t, "MIHCSME", cfg.Namespace)
	require.Empty(t, cfg.Server)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server: https://omero.example.org\nserver_id: 2\nusername: ada\nnamespace: LabMeta\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path, mapReader{})
	require.NoError(t, err)
	require.Equal(t, "https://omero.example.org", cfg.Server)
	require.Equal(t, 2, cfg.ServerID)
	require.Equal(t, "ada", cfg.Username)
	require.Equal(t, "LabMeta", cfg.Namespace)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: https://file.example.org\nusername: ada\n"), 0o600))

	env := mapReader{
		EnvServer:   "https://env.example.org",
		EnvServerID: "3",
	}
	cfg, err := LoadFile(path, env)
	require.NoError(t, err)
	require.Equal(t, "https://env.example.org", cfg.Server)
	require.Equal(t, 3, cfg.ServerID)
	require.Equal(t, "ada", cfg.Username, "file value kept when env unset")
}

func TestLoadFileInvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := LoadFile(path, mapReader{})
	require.Error(t, err)
}

func TestPassword(t *testing.T) {
	t.Parallel()

	require.Equal(t, "secret", Password(mapReader{EnvPassword: "secret"}))
	require.Empty(t, Password(mapReader{}))
}
