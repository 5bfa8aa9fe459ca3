package executor

import (
	"code-lab/errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadLanguages_EmbeddedDefault(t *testing.T) {
	req := require.New(t)

	// When loading without an override path
	table, err := LoadLanguages("")

	// Then the shipped table covers the usual suspects
	req.NoError(err)
	for _, tag := range []string{"python3", "go", "java", "cpp", "javascript"} {
		_, ok := table.Resolve(tag)
		req.True(ok, "missing language %q", tag)
	}
	_, ok := table.Resolve("cobol")
	req.False(ok)
}

func TestLoadLanguages_OverrideFile(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "languages.yaml")
	content := "languages:\n  brainfuck:\n    language: bf\n    version: \"0\"\n"
	req.NoError(os.WriteFile(path, []byte(content), 0o600))

	table, err := LoadLanguages(path)

	req.NoError(err)
	req.Len(table, 1)
	target, ok := table.Resolve("brainfuck")
	req.True(ok)
	req.Equal("bf", target.Language)
}

func TestLoadLanguages_EmptyTableRejected(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "languages.yaml")
	req.NoError(os.WriteFile(path, []byte("languages: {}\n"), 0o600))

	_, err := LoadLanguages(path)

	req.ErrorIs(err, errors.ErrEmptyLanguageTable)
}

func TestLoadLanguages_MissingFile(t *testing.T) {
	req := require.New(t)

	_, err := LoadLanguages(filepath.Join(t.TempDir(), "nope.yaml"))

	req.Error(err)
}
