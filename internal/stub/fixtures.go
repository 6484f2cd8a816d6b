// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stub

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ragscholar/pkg/types"
)

// FixtureFile is the on-disk paper set the stub serves. `ragscholar
// fixtures fetch` writes it from arXiv; it can also be edited by hand.
type FixtureFile struct {
	Source  string        `yaml:"source,omitempty"`
	Topics  []string      `yaml:"topics,omitempty"`
	Fetched time.Time     `yaml:"fetched,omitempty"`
	Papers  []types.Paper `yaml:"papers"`
}

// WriteFixtureFile saves papers to a YAML file, creating parent
// directories as needed.
func WriteFixtureFile(path string, ff FixtureFile) error {
	data, err := yaml.Marshal(&ff)
	if err != nil {
		return fmt.Errorf("marshaling fixture file: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating fixture directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFixtureFile loads a fixture file. Papers without an id or title are
// dropped since the front end cannot link or label them.
func ReadFixtureFile(path string) (*FixtureFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture file: %w", err)
	}
	var ff FixtureFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parsing fixture file: %w", err)
	}

	kept := ff.Papers[:0]
	for _, p := range ff.Papers {
		if p.ID != "" && p.Title != "" {
			kept = append(kept, p)
		}
	}
	ff.Papers = kept
	return &ff, nil
}
