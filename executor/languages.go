package executor

import (
	"code-lab/domain"
	"code-lab/errors"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed languages.yaml
var defaultLanguages []byte

// LanguageTable resolves a client language tag to the provider-specific
// execution target. Keeping it data keeps the retry/timeout/normalization
// logic independent of which languages are currently supported.
type LanguageTable map[string]domain.ExecTarget

type languagesFile struct {
	Languages map[string]domain.ExecTarget `yaml:"languages"`
}

// LoadLanguages parses the table from path, or from the embedded default
// table when path is empty.
func LoadLanguages(path string) (LanguageTable, error) {
	data := defaultLanguages
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading language table: %w", err)
		}
	}

	var file languagesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing language table: %w", err)
	}
	if len(file.Languages) == 0 {
		return nil, errors.ErrEmptyLanguageTable
	}
	return file.Languages, nil
}

// Resolve returns the execution target for tag.
func (t LanguageTable) Resolve(tag string) (domain.ExecTarget, bool) {
	target, ok := t[tag]
	return target, ok
}
