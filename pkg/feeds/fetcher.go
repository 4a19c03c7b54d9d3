package feeds

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/feedfold/feedfold/internal/domain"
	"github.com/feedfold/feedfold/internal/logger"
	"github.com/feedfold/feedfold/pkg/httpclient"
)

var (
	// ErrEmptyFeed marks a candidate that parsed cleanly but carried no items.
	ErrEmptyFeed = errors.New("feed contains no entries")
	// ErrExhausted marks a source whose every candidate address failed.
	ErrExhausted = errors.New("all candidates exhausted")
	// ErrNoCandidates marks a source that resolved to nothing fetchable.
	ErrNoCandidates = errors.New("no fetch candidates")
)

const defaultAttemptTimeout = 15 * time.Second

// MirrorMemory remembers which mirror host last served a source, so the next
// run can try it first. Implementations may be nil-safe no-ops.
type MirrorMemory interface {
	LastGoodHost(sourceKey string) string
	RecordWin(sourceKey, host string) error
}

// Options tune a Fetcher. The timeout applies per attempt, not per source.
type Options struct {
	MirrorHosts []string
	Timeout     time.Duration
	MaxEntries  int
	Memory      MirrorMemory
}

// Fetcher retrieves one source at a time, walking its candidate addresses in
// order and keeping the first that yields a parseable, non-empty feed.
type Fetcher struct {
	client httpclient.Client
	log    logger.Logger
	opts   Options
}

// NewFetcher builds a Fetcher. A nil client gets a default resty client with
// the configured attempt timeout; a nil logger discards output.
func NewFetcher(client httpclient.Client, log logger.Logger, opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultAttemptTimeout
	}
	if client == nil {
		client = httpclient.NewRestyClient(opts.Timeout)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Fetcher{
		client: client,
		log:    log,
		opts:   opts,
	}
}

// FetchEntries fetches one source and returns its normalized entries, newest
// first, filtered by cutoff. On total failure it returns an empty slice and
// the terminal failure reason; the caller decides whether cached data papers
// over the gap.
func (f *Fetcher) FetchEntries(ctx context.Context, groupName string, src domain.FeedSource, cutoff time.Time) ([]domain.Entry, error) {
	key := domain.SourceKey(groupName, src.Name)

	var preferred string
	if f.opts.Memory != nil {
		preferred = f.opts.Memory.LastGoodHost(key)
	}

	candidates := Candidates(src.Locator, f.opts.MirrorHosts, preferred)

	items, winner, err := runFallback(ctx, candidates, f.attempt, f.log)
	if err != nil {
		return nil, err
	}

	if winner.Host != "" && f.opts.Memory != nil {
		if merr := f.opts.Memory.RecordWin(key, winner.Host); merr != nil {
			f.log.DebugObj("mirror memory update failed", "mirror_memory_error", map[string]any{
				"source_key": key,
				"error":      merr.Error(),
			})
		}
	}

	entries := NormalizeItems(items, cutoff, f.opts.MaxEntries)
	f.log.DebugObj("source fetched", "fetch_success", map[string]any{
		"source_key": key,
		"url":        winner.URL,
		"raw_items":  len(items),
		"entries":    len(entries),
	})
	return entries, nil
}

// attemptFunc retrieves and parses one candidate address, returning its raw
// items. Injected in tests so the fallback contract is checked without a
// network layer.
type attemptFunc func(ctx context.Context, url string) ([]*gofeed.Item, error)

// fallbackState drives the fetch-with-fallback loop. The machine starts in
// stateTrying on the first candidate, moves to stateSucceeded on the first
// non-empty parse, advances to the next candidate on any failure, and ends
// in stateExhausted when the last candidate fails.
type fallbackState int

const (
	stateTrying fallbackState = iota
	stateSucceeded
	stateExhausted
)

// runFallback walks candidates in order and returns the items and winning
// candidate of the first successful attempt. First success wins: no further
// candidates are tried and results are never merged across mirrors. When
// every candidate fails, the error wraps the reason from the last attempt.
func runFallback(ctx context.Context, candidates []Candidate, attempt attemptFunc, log logger.Logger) ([]*gofeed.Item, Candidate, error) {
	if len(candidates) == 0 {
		return nil, Candidate{}, ErrNoCandidates
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	state := stateTrying
	var lastErr error

	for i := 0; state == stateTrying; i++ {
		items, err := attempt(ctx, candidates[i].URL)
		if err == nil && len(items) == 0 {
			err = ErrEmptyFeed
		}
		if err == nil {
			state = stateSucceeded
			return items, candidates[i], nil
		}

		lastErr = err
		log.DebugObj("fetch attempt failed", "fetch_attempt_error", map[string]any{
			"url":       candidates[i].URL,
			"attempt":   i + 1,
			"remaining": len(candidates) - i - 1,
			"error":     err.Error(),
		})
		if i == len(candidates)-1 {
			state = stateExhausted
		}
	}

	return nil, Candidate{}, fmt.Errorf("%w: %w", ErrExhausted, lastErr)
}

// attempt retrieves one address under the per-attempt timeout and parses it.
// Responses that are not feeds but look like HTML pages go through one round
// of autodiscovery.
func (f *Fetcher) attempt(ctx context.Context, url string) ([]*gofeed.Item, error) {
	actx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	body, err := f.get(actx, url)
	if err != nil {
		return nil, err
	}

	// One parser per attempt: gofeed parsers initialize internals lazily
	// and are not safe to share across fetch workers.
	feed, perr := gofeed.NewParser().ParseString(string(body))
	if perr == nil {
		return feed.Items, nil
	}

	if feedURL, ok := DiscoverFeedURL(url, body); ok {
		f.log.DebugObj("following autodiscovered feed link", "feed_autodiscovery", map[string]any{
			"page": url,
			"feed": feedURL,
		})
		return f.attemptDirect(actx, feedURL)
	}

	return nil, fmt.Errorf("parse feed: %w", perr)
}

// attemptDirect is attempt without the autodiscovery fallback, so a page
// advertising another page cannot loop.
func (f *Fetcher) attemptDirect(ctx context.Context, url string) ([]*gofeed.Item, error) {
	body, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed.Items, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("status %d body: %s", resp.StatusCode(), responseSnippet(resp.Body()))
	}
	return resp.Body(), nil
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
