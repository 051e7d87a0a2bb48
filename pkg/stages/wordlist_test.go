package stages

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWordlist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wordlist.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadWordlist(t *testing.T) {
	path := writeWordlist(t, "Alpha\n\n# comment\nbeta  \nGAMMA\n")

	words, err := ReadWordlist(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, words)
}

func TestReadWordlistEmpty(t *testing.T) {
	path := writeWordlist(t, "# only comments\n\n")

	_, err := ReadWordlist(path)
	assert.ErrorContains(t, err, "empty")
}

func TestReadWordlistMissingFile(t *testing.T) {
	_, err := ReadWordlist(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorContains(t, err, "failed to open wordlist")
}
