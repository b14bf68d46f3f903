package mihcsme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFileNotFound(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestParseFileWrongExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.csv")
	require.NoError(t, os.WriteFile(path, []byte("Plate,Well\n"), 0o600))

	_, err := ParseFile(path)
	require.ErrorIs(t, err, ErrInvalidFormat)
}
