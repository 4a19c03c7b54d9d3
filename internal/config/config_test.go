package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `days: 30
timeout: 5s
workers: 2
max_entries: 5
output: out/feeds.json
state: out/mirrors.db
log_level: debug
mirror_hosts:
  - m1.example
  - m2.example
groups:
  - name: World
    feeds:
      - name: BBC World
        url: https://feeds.bbci.co.uk/news/world/rss.xml
      - name: Mirrored
        url: mirror://r/worldnews
  - name: Tech
    feeds:
      - name: Lobsters
        url: https://lobste.rs/rss
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feedfold.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Days)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 5, cfg.MaxEntries)
	assert.Equal(t, "out/feeds.json", cfg.OutputPath)
	assert.Equal(t, []string{"m1.example", "m2.example"}, cfg.MirrorHosts)

	require.Len(t, cfg.Groups, 2)
	assert.Equal(t, "World", cfg.Groups[0].Name)
	require.Len(t, cfg.Groups[0].Sources, 2)
	assert.Equal(t, "mirror://r/worldnews", cfg.Groups[0].Sources[1].Locator)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `groups:
  - name: g
    feeds:
      - name: s
        url: https://x/feed
`))
	require.NoError(t, err)

	assert.Equal(t, DefaultDays, cfg.Days)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 10, cfg.MaxEntries)
	assert.Equal(t, "data/rss_feeds.json", cfg.OutputPath)
}

func TestLoadMirrorHostOverride(t *testing.T) {
	t.Setenv(EnvMirrorHost, "override.example")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, []string{"override.example", "m2.example"}, cfg.MirrorHosts,
		"override replaces the primary host, fallbacks keep their order")
}

func TestLoadMirrorHostOverrideWithoutConfiguredHosts(t *testing.T) {
	t.Setenv(EnvMirrorHost, "only.example")

	cfg, err := Load(writeConfig(t, `groups:
  - name: g
    feeds:
      - name: s
        url: mirror://r/x
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"only.example"}, cfg.MirrorHosts)
}

func TestLoadRejectsMirrorFeedsWithoutHosts(t *testing.T) {
	_, err := Load(writeConfig(t, `groups:
  - name: g
    feeds:
      - name: s
        url: mirror://r/x
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mirror_hosts")
}

func TestLoadRejectsDuplicateSources(t *testing.T) {
	_, err := Load(writeConfig(t, `groups:
  - name: g
    feeds:
      - name: s
        url: https://a/feed
      - name: s
        url: https://b/feed
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate source")
}

func TestLoadRejectsEmptyGroups(t *testing.T) {
	_, err := Load(writeConfig(t, `days: 10`))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}
