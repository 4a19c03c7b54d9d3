package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/feedfold/feedfold/internal/domain"
)

const (
	envPrefix = "FEEDFOLD"

	// EnvMirrorHost overrides the primary (first) mirror host.
	EnvMirrorHost = "FEEDFOLD_MIRROR_HOST"

	DefaultDays = 180
)

// Config is the full runtime configuration for one aggregation run.
type Config struct {
	Days          int           `mapstructure:"days"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Workers       int           `mapstructure:"workers"`
	MaxEntries    int           `mapstructure:"max_entries"`
	OutputPath    string        `mapstructure:"output"`
	StatePath     string        `mapstructure:"state"`
	LogLevel      string        `mapstructure:"log_level"`
	NotifiersPath string        `mapstructure:"notifiers"`
	MirrorHosts   []string      `mapstructure:"mirror_hosts"`

	Groups []domain.FeedGroup `mapstructure:"groups"`
}

// Load reads the YAML configuration at path and applies environment
// overrides under the FEEDFOLD_ prefix. FEEDFOLD_MIRROR_HOST replaces or
// installs the primary mirror host.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("days", DefaultDays)
	v.SetDefault("timeout", "15s")
	v.SetDefault("workers", 4)
	v.SetDefault("max_entries", 10)
	v.SetDefault("output", "data/rss_feeds.json")
	v.SetDefault("state", "data/mirror_state.db")
	v.SetDefault("log_level", "info")

	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if host := strings.TrimSpace(v.GetString("mirror_host")); host != "" {
		cfg.MirrorHosts = overridePrimaryMirror(cfg.MirrorHosts, host)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// overridePrimaryMirror swaps the first mirror host for the override,
// keeping the remaining fallback order intact.
func overridePrimaryMirror(hosts []string, primary string) []string {
	if len(hosts) == 0 {
		return []string{primary}
	}
	out := make([]string, 0, len(hosts))
	out = append(out, primary)
	for _, h := range hosts[1:] {
		out = append(out, h)
	}
	return out
}

func validate(cfg Config) error {
	if cfg.Days <= 0 {
		return fmt.Errorf("days must be positive, got %d", cfg.Days)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if strings.TrimSpace(cfg.OutputPath) == "" {
		return fmt.Errorf("output path is empty")
	}
	if len(cfg.Groups) == 0 {
		return fmt.Errorf("config declares no feed groups")
	}

	needMirrors := false
	seen := make(map[string]bool)
	for gi, group := range cfg.Groups {
		if strings.TrimSpace(group.Name) == "" {
			return fmt.Errorf("groups[%d]: name is empty", gi)
		}
		if len(group.Sources) == 0 {
			return fmt.Errorf("group %q declares no feeds", group.Name)
		}
		for si, src := range group.Sources {
			if strings.TrimSpace(src.Name) == "" {
				return fmt.Errorf("group %q feeds[%d]: name is empty", group.Name, si)
			}
			if strings.TrimSpace(src.Locator) == "" {
				return fmt.Errorf("group %q feed %q: url is empty", group.Name, src.Name)
			}
			key := domain.SourceKey(group.Name, src.Name)
			if seen[key] {
				return fmt.Errorf("duplicate source %q", key)
			}
			seen[key] = true
			if strings.HasPrefix(src.Locator, domain.MirrorScheme) {
				needMirrors = true
			}
		}
	}

	if needMirrors && len(cfg.MirrorHosts) == 0 {
		return fmt.Errorf("mirror:// feeds configured but mirror_hosts is empty")
	}
	return nil
}
