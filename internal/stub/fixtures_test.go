// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stub

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ragscholar/pkg/types"
)

func TestFixtureFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures", "papers.yaml")
	in := FixtureFile{
		Source:  "arxiv",
		Topics:  []string{"robotics"},
		Fetched: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Papers: []types.Paper{{
			ID:              "http://arxiv.org/abs/2301.00001v1",
			Title:           "Learning to Grasp",
			Summary:         "We study grasping.",
			Authors:         []types.Author{{Name: "Ada Lovelace"}},
			Published:       "2023-01-05T18:00:00Z",
			PrimaryCategory: "cs.RO",
			Categories:      []string{"cs.RO"},
			Links:           []types.Link{{Href: "http://arxiv.org/pdf/2301.00001v1", Type: "application/pdf"}},
		}},
	}

	require.NoError(t, WriteFixtureFile(path, in))
	out, err := ReadFixtureFile(path)
	require.NoError(t, err)

	if diff := cmp.Diff(in, *out); diff != "" {
		t.Errorf("fixture round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFixtureFileDropsUnusablePapers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`papers:
  - id: "1"
    title: One
  - id: "2"
  - title: No id
`), 0o644))

	ff, err := ReadFixtureFile(path)
	require.NoError(t, err)
	require.Len(t, ff.Papers, 1)
	assert.Equal(t, "One", ff.Papers[0].Title)
}

func TestReadFixtureFileErrors(t *testing.T) {
	_, err := ReadFixtureFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("papers: [unterminated"), 0o644))
	_, err = ReadFixtureFile(path)
	assert.Error(t, err)
}
