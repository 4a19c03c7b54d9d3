package feeds

import (
	"sort"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/feedfold/feedfold/internal/domain"
)

const fallbackTitle = "No Title"

// NormalizeItems converts parsed feed items into canonical entries. Items
// dated strictly before cutoff are dropped; items without any usable date
// are always kept, since their staleness cannot be judged. Entries come back
// newest first with undated entries sorted last, capped at limit when
// limit > 0.
func NormalizeItems(items []*gofeed.Item, cutoff time.Time, limit int) []domain.Entry {
	entries := make([]domain.Entry, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		published := publishedTime(item)
		if published != nil && published.Before(cutoff) {
			continue
		}

		title := item.Title
		if title == "" {
			title = fallbackTitle
		}

		entries = append(entries, domain.Entry{
			Title:       title,
			Link:        item.Link,
			PublishedAt: published,
			Description: Sanitize(description(item)),
		})
	}

	sortEntries(entries)

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// publishedTime picks the item timestamp, preferring the published field
// over updated.
func publishedTime(item *gofeed.Item) *time.Time {
	switch {
	case item.PublishedParsed != nil:
		t := *item.PublishedParsed
		return &t
	case item.UpdatedParsed != nil:
		t := *item.UpdatedParsed
		return &t
	default:
		return nil
	}
}

func description(item *gofeed.Item) string {
	if item.Description != "" {
		return item.Description
	}
	return item.Content
}

// sortEntries orders entries non-increasing by publish time. Undated entries
// sort as the minimum value. The sort is stable so feed order breaks ties.
func sortEntries(entries []domain.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, tj := entryTime(entries[i]), entryTime(entries[j])
		return ti.After(tj)
	})
}

func entryTime(e domain.Entry) time.Time {
	if e.PublishedAt == nil {
		return time.Time{}
	}
	return *e.PublishedAt
}
