// Package pipeline drives extraction across buckets of notice URLs: load the
// existing Bucket, skip what is already there, fetch and extract the rest,
// and checkpoint at a bounded cadence so interruption loses at most one
// batch. Processing is strictly sequential; buckets run in ascending key
// order and URLs in input order.
package pipeline

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/regharvest/fedresurs-cli/internal/backoff"
	"github.com/regharvest/fedresurs-cli/internal/checkpoint"
	"github.com/regharvest/fedresurs-cli/internal/extract"
	"github.com/regharvest/fedresurs-cli/internal/fetch"
	"github.com/regharvest/fedresurs-cli/internal/model"
)

// Config tunes a pipeline run.
type Config struct {
	// CheckpointEvery saves after the first new Record and then every N new
	// Records. Default 10.
	CheckpointEvery int

	// ForceRefresh bypasses the skip rule and supersedes each bucket
	// wholesale.
	ForceRefresh bool

	// RetryTransient re-fetches Records whose previous run ended in a
	// timeout. Navigation and unexpected failures stay processed.
	RetryTransient bool

	// Retry bounds the per-URL fetch attempts within this run.
	Retry backoff.Config
}

// Stats summarizes one run.
type Stats struct {
	New     int
	Skipped int
	Failed  int
}

// Pipeline wires the fetcher, extractor and checkpoint store together.
type Pipeline struct {
	fetcher fetch.Fetcher
	store   *checkpoint.Store
	limiter *rate.Limiter
	cfg     Config
}

// New creates a Pipeline. limiter may be nil to disable politeness pacing.
func New(fetcher fetch.Fetcher, store *checkpoint.Store, limiter *rate.Limiter, cfg Config) *Pipeline {
	if cfg.CheckpointEvery <= 0 {
		cfg.CheckpointEvery = 10
	}
	return &Pipeline{fetcher: fetcher, store: store, limiter: limiter, cfg: cfg}
}

// Run processes every bucket in ascending key order. It returns the
// accumulated stats and the context error if the run was interrupted; the
// current bucket is committed on every exit path first.
func (p *Pipeline) Run(ctx context.Context, buckets map[string][]string) (Stats, error) {
	ids := make([]string, 0, len(buckets))
	for id := range buckets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var total Stats
	for _, id := range ids {
		stats, err := p.runBucket(ctx, id, buckets[id])
		total.New += stats.New
		total.Skipped += stats.Skipped
		total.Failed += stats.Failed
		if err != nil {
			return total, err
		}
	}

	zap.L().Info("harvest complete",
		zap.Int("new", total.New),
		zap.Int("skipped", total.Skipped),
		zap.Int("failed", total.Failed),
	)
	return total, nil
}

func (p *Pipeline) runBucket(ctx context.Context, bucketID string, urls []string) (stats Stats, err error) {
	log := zap.L().With(zap.String("bucket", bucketID))

	var bucket model.Bucket
	if p.cfg.ForceRefresh {
		bucket = model.Bucket{}
		log.Info("force refresh, superseding bucket")
	} else {
		bucket = p.store.Load(bucketID)
		if len(bucket) > 0 {
			log.Info("loaded existing records", zap.Int("count", len(bucket)))
		}
	}

	// Commit on every exit path, interruption included, so no fetched
	// Record is ever lost.
	defer func() { p.commit(bucketID, bucket) }()

	log.Info("processing bucket", zap.Int("urls", len(urls)))

	for i, url := range urls {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		if p.skip(bucket, url) {
			stats.Skipped++
			log.Debug("already processed",
				zap.Int("index", i+1), zap.Int("total", len(urls)), zap.String("url", url))
			continue
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return stats, ctx.Err()
			}
		}

		rec := p.process(ctx, url)
		if rec == nil {
			// Fetch aborted by interruption, nothing to record.
			return stats, ctx.Err()
		}
		if rec.Failed() {
			stats.Failed++
			log.Warn("page failed, recorded as error",
				zap.String("url", url), zap.String("kind", string(rec.Error.Kind)))
		}

		bucket[url] = rec
		stats.New++

		if stats.New == 1 || stats.New%p.cfg.CheckpointEvery == 0 {
			p.commit(bucketID, bucket)
		}
	}

	log.Info("bucket complete",
		zap.Int("new", stats.New),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Int("records", len(bucket)),
	)
	return stats, nil
}

// skip applies the resumability contract: a URL already in the bucket is not
// reprocessed, except under force-refresh (bucket starts empty then) or when
// retrying transient failures.
func (p *Pipeline) skip(bucket model.Bucket, url string) bool {
	rec, ok := bucket[url]
	if !ok {
		return false
	}
	if p.cfg.RetryTransient && rec.Failed() && rec.Error.Kind == model.FailTimeout {
		return false
	}
	return true
}

// process fetches and extracts one URL. Fetch failures become error-tagged
// Records so the URL counts as processed; a nil return means the fetch was
// cut short by cancellation.
func (p *Pipeline) process(ctx context.Context, url string) *model.Record {
	page, err := backoff.Retry(ctx, p.cfg.Retry, fetch.IsTransient,
		func(ctx context.Context) (*fetch.Page, error) {
			return p.fetcher.Fetch(ctx, url)
		})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return model.ErrorRecord(url, fetch.KindOf(err))
	}
	return extract.Extract(url, page.HTML)
}

// commit saves and backs up the bucket. Persistence failures are warnings:
// the in-memory state stays authoritative and the next cadence tick retries.
func (p *Pipeline) commit(bucketID string, bucket model.Bucket) {
	if err := p.store.Save(bucketID, bucket); err != nil {
		zap.L().Warn("checkpoint save failed, continuing with in-memory state",
			zap.String("bucket", bucketID), zap.Error(err))
		return
	}
	if err := p.store.Backup(bucketID); err != nil {
		zap.L().Warn("checkpoint backup failed",
			zap.String("bucket", bucketID), zap.Error(err))
	}
}
