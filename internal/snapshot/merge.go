package snapshot

import (
	"github.com/feedfold/feedfold/internal/domain"
)

// Merge reconciles freshly fetched group results against the previous
// snapshot. A source whose fresh fetch produced nothing inherits its cached
// entries verbatim when the cache has any; a non-empty fresh result always
// wins, and an empty fresh result with no cache stays empty, which is what a
// genuinely dead or newly added source looks like. Only configured sources
// appear in the output: entries cached for sources since removed from
// configuration are dropped.
//
// Merge constructs new records throughout and never mutates either input.
func Merge(fresh []domain.GroupResult, previous *domain.Snapshot) []domain.GroupResult {
	cached := cachedEntries(previous)

	merged := make([]domain.GroupResult, 0, len(fresh))
	for _, group := range fresh {
		out := domain.GroupResult{
			Name:    group.Name,
			Sources: make([]domain.SourceResult, 0, len(group.Sources)),
		}
		for _, src := range group.Sources {
			entries := src.Entries
			if len(entries) == 0 {
				// Cached entries were filtered when originally written, so
				// they are substituted without re-applying the cutoff.
				entries = cached[domain.SourceKey(group.Name, src.Name)]
			}
			out.Sources = append(out.Sources, domain.SourceResult{
				Name:    src.Name,
				Locator: src.Locator,
				Entries: cloneEntries(entries),
			})
		}
		merged = append(merged, out)
	}
	return merged
}

// cachedEntries indexes the previous snapshot's entry lists by source key.
// Everything else about a cached source is discarded; the merged source
// inherits name and locator from the fresh result.
func cachedEntries(previous *domain.Snapshot) map[string][]domain.Entry {
	index := make(map[string][]domain.Entry)
	if previous == nil {
		return index
	}
	for _, group := range previous.Groups {
		for _, src := range group.Sources {
			if len(src.Entries) == 0 {
				continue
			}
			index[domain.SourceKey(group.Name, src.Name)] = src.Entries
		}
	}
	return index
}

// cloneEntries deep-copies an entry list, including the timestamp values, so
// merged output never aliases fresh or cached structures. The result is
// never nil: an empty source serializes as [] rather than null.
func cloneEntries(entries []domain.Entry) []domain.Entry {
	out := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		clone := e
		if e.PublishedAt != nil {
			t := *e.PublishedAt
			clone.PublishedAt = &t
		}
		out = append(out, clone)
	}
	return out
}
