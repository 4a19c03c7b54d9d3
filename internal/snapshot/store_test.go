package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedfold/feedfold/internal/domain"
)

func TestStoreLoadMissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing.json"))
	snap, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStore(path).Load()
	assert.Error(t, err)
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "rss_feeds.json")
	s := NewStore(path)

	published := time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)
	want := domain.Snapshot{
		LastUpdated: "2026-02-11T00:00:00Z",
		DaysFilter:  180,
		Groups: []domain.GroupResult{{
			Name: "World",
			Sources: []domain.SourceResult{{
				Name:    "News",
				Locator: "mirror://r/news",
				Entries: []domain.Entry{{
					Title:       "Hello",
					Link:        "https://example.com/1",
					PublishedAt: &published,
					Description: "Body",
				}},
			}},
		}},
	}

	require.NoError(t, s.Write(want))

	got, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestStoreWriteShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	s := NewStore(path)

	require.NoError(t, s.Write(domain.Snapshot{
		LastUpdated: "2026-02-11T00:00:00Z",
		DaysFilter:  30,
		Groups: []domain.GroupResult{{
			Name:    "g",
			Sources: []domain.SourceResult{{Name: "s", Locator: "u", Entries: []domain.Entry{}}},
		}},
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "lastUpdated")
	assert.Contains(t, doc, "daysFilter")
	assert.Contains(t, doc, "groups")

	// Empty sources serialize as [], never null.
	assert.Contains(t, string(raw), `"entries": []`)
}

func TestStoreWriteReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	s := NewStore(path)

	require.NoError(t, s.Write(domain.Snapshot{LastUpdated: "a"}))
	require.NoError(t, s.Write(domain.Snapshot{LastUpdated: "b"}))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "b", got.LastUpdated)

	// No temp files left behind.
	matches, err := filepath.Glob(filepath.Join(dir, ".snapshot-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
