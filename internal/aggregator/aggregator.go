package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/feedfold/feedfold/internal/domain"
	"github.com/feedfold/feedfold/internal/logger"
	"github.com/feedfold/feedfold/internal/snapshot"
	"github.com/feedfold/feedfold/pkg/notify"
)

// SourceFetcher fetches one source's entries, newest first, filtered by the
// cutoff. Implementations return an empty list plus the terminal reason when
// every candidate address failed.
type SourceFetcher interface {
	FetchEntries(ctx context.Context, groupName string, src domain.FeedSource, cutoff time.Time) ([]domain.Entry, error)
}

// Aggregator drives one full run: fetch every configured source, merge the
// results against the previous snapshot, persist, then notify.
type Aggregator struct {
	fetcher   SourceFetcher
	store     *snapshot.Store
	notifiers []notify.Notifier
	log       logger.Logger
	workers   int
	now       func() time.Time
}

// New builds an Aggregator. workers bounds parallel source fetches; 1 means
// strictly sequential.
func New(fetcher SourceFetcher, store *snapshot.Store, notifiers []notify.Notifier, log logger.Logger, workers int) *Aggregator {
	if log == nil {
		log = logger.NopLogger{}
	}
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{
		fetcher:   fetcher,
		store:     store,
		notifiers: notifiers,
		log:       log,
		workers:   workers,
		now:       time.Now,
	}
}

// Run executes one aggregation pass and returns the written snapshot.
// Per-source failures degrade to empty or cached results; only a failed
// snapshot write is fatal.
func (a *Aggregator) Run(ctx context.Context, groups []domain.FeedGroup, days int) (domain.Snapshot, error) {
	started := a.now()
	cutoff := started.AddDate(0, 0, -days)

	previous, err := a.store.Load()
	if err != nil {
		// A corrupt cache only costs the backfill, not the run.
		a.log.WarnObj("previous snapshot unreadable, running without cache", "snapshot_load_error", map[string]any{
			"path":  a.store.Path(),
			"error": err.Error(),
		})
	}

	fresh, failed := a.fetchAll(ctx, groups, cutoff)
	merged := snapshot.Merge(fresh, previous)

	snap := domain.Snapshot{
		LastUpdated: started.Format(time.RFC3339),
		DaysFilter:  days,
		Groups:      merged,
	}
	if err := a.store.Write(snap); err != nil {
		return domain.Snapshot{}, err
	}

	sources, entries := tally(merged)
	a.log.InfoObj("snapshot written", "snapshot_written", map[string]any{
		"path":           a.store.Path(),
		"groups":         len(merged),
		"sources":        sources,
		"entries":        entries,
		"failed_sources": len(failed),
		"elapsed":        a.now().Sub(started).String(),
	})

	notify.NotifyAll(ctx, a.notifiers, notify.Event{
		Kind:          notify.EventSnapshotUpdated,
		GeneratedAt:   started,
		OutputPath:    a.store.Path(),
		Groups:        len(merged),
		Sources:       sources,
		Entries:       entries,
		FailedSources: failed,
	}, a.log)

	return snap, nil
}

// job addresses one source slot in the result tree.
type job struct {
	group, source int
}

// outcome is written by exactly one worker into its own slot.
type outcome struct {
	entries []domain.Entry
	err     error
}

// fetchAll walks the group tree with a bounded worker pool. Each job owns a
// distinct slot in the outcome grid, so workers never share mutable state;
// the tree is assembled only after all fetches complete. Group and source
// order in the output always matches configuration.
func (a *Aggregator) fetchAll(ctx context.Context, groups []domain.FeedGroup, cutoff time.Time) ([]domain.GroupResult, []string) {
	outcomes := make([][]outcome, len(groups))
	jobCount := 0
	for gi, group := range groups {
		outcomes[gi] = make([]outcome, len(group.Sources))
		jobCount += len(group.Sources)
	}

	workerCount := a.workers
	if jobCount < workerCount {
		workerCount = jobCount
	}

	jobCh := make(chan job)
	var wg sync.WaitGroup

	for range workerCount {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				if ctx.Err() != nil {
					return
				}
				group := groups[j.group]
				src := group.Sources[j.source]
				entries, err := a.fetcher.FetchEntries(ctx, group.Name, src, cutoff)
				outcomes[j.group][j.source] = outcome{entries: entries, err: err}
			}
		}()
	}

	jobs := make([]job, 0, jobCount)
	for gi, group := range groups {
		for si := range group.Sources {
			jobs = append(jobs, job{group: gi, source: si})
		}
	}
	for _, j := range jobs {
		if ctx.Err() != nil {
			break
		}
		jobCh <- j
	}
	close(jobCh)
	wg.Wait()

	var failed []string
	results := make([]domain.GroupResult, 0, len(groups))
	for gi, group := range groups {
		gr := domain.GroupResult{
			Name:    group.Name,
			Sources: make([]domain.SourceResult, 0, len(group.Sources)),
		}
		for si, src := range group.Sources {
			o := outcomes[gi][si]
			if o.err != nil {
				key := domain.SourceKey(group.Name, src.Name)
				failed = append(failed, key)
				a.log.WarnObj("source fetch failed", "source_fetch_error", map[string]any{
					"source_key": key,
					"url":        src.Locator,
					"error":      o.err.Error(),
				})
			}
			gr.Sources = append(gr.Sources, domain.SourceResult{
				Name:    src.Name,
				Locator: src.Locator,
				Entries: o.entries,
			})
		}
		results = append(results, gr)
	}
	return results, failed
}

func tally(groups []domain.GroupResult) (sources, entries int) {
	for _, g := range groups {
		sources += len(g.Sources)
		for _, s := range g.Sources {
			entries += len(s.Entries)
		}
	}
	return sources, entries
}
