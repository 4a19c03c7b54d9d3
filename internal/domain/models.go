package domain

import "time"

// Domain contains the records flowing through the aggregation pipeline.

// MirrorScheme marks a locator that must be resolved against a mirror host
// before it can be fetched.
const MirrorScheme = "mirror://"

// FeedSource is one configured feed: a display name and a locator that is
// either a direct http(s) address or a mirror:// reference.
type FeedSource struct {
	Name    string `json:"name" yaml:"name" mapstructure:"name"`
	Locator string `json:"url" yaml:"url" mapstructure:"url"`
}

// FeedGroup is an ordered set of sources under a presentation heading.
type FeedGroup struct {
	Name    string       `json:"groupName" yaml:"name" mapstructure:"name"`
	Sources []FeedSource `json:"sources" yaml:"feeds" mapstructure:"feeds"`
}

// Entry is one normalized feed item. PublishedAt is nil when the upstream
// feed carries no usable date.
type Entry struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	PublishedAt *time.Time `json:"pubDate"`
	Description string     `json:"description"`
}

// SourceResult is the per-run outcome for one source. Entries are ordered
// newest first and may be empty when every fetch candidate failed.
type SourceResult struct {
	Name    string  `json:"name"`
	Locator string  `json:"url"`
	Entries []Entry `json:"entries"`
}

// GroupResult mirrors FeedGroup with fetched results in source order.
type GroupResult struct {
	Name    string         `json:"groupName"`
	Sources []SourceResult `json:"sources"`
}

// Snapshot is the persisted aggregate: the output artifact of one run and
// the cache consulted by the next.
type Snapshot struct {
	LastUpdated string        `json:"lastUpdated"`
	DaysFilter  int           `json:"daysFilter"`
	Groups      []GroupResult `json:"groups"`
}

// SourceKey identifies a source across runs. Group and source names form the
// identity; locators may move between mirrors without breaking cache hits.
func SourceKey(groupName, sourceName string) string {
	return groupName + "::" + sourceName
}
