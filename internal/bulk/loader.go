// Package bulk consumes a lazy sequence of documents, batches them by
// count and serialized byte size, and submits batches to the backend
// client with bounded in-flight parallelism, retrying transient errors
// with capped exponential backoff.
package bulk

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"mimirsbrunn/internal/backend"
	"mimirsbrunn/internal/logger"
	"mimirsbrunn/internal/metrics"
	"mimirsbrunn/internal/model"
)

// Config tunes batching and retry behavior. Zero values are replaced by
// the defaults noted per field below.
type Config struct {
	BatchSize      int           // default 1000
	BatchBytes     int           // default 10 MiB
	Parallelism    int           // default 4
	MaxRetries     int           // default 5
	BaseBackoff    time.Duration // default 200ms
	MaxBackoff     time.Duration // default 10s
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 1000
	}
	if c.BatchBytes <= 0 {
		c.BatchBytes = 10 * 1024 * 1024
	}
	if c.Parallelism <= 0 {
		c.Parallelism = 4
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 200 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 10 * time.Second
	}
	return c
}

// ErrorCounts is a typed tally of per-item failures, kept by error class so
// operators can distinguish data-quality problems (permanent) from
// backend instability (transient, after the retry budget is exhausted).
type ErrorCounts struct {
	mu        sync.Mutex
	Transient int
	Permanent int
}

func (e *ErrorCounts) add(class backend.ErrClass) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if class == backend.ClassTransient {
		e.Transient++
	} else {
		e.Permanent++
	}
}

// Total returns Transient+Permanent.
func (e *ErrorCounts) Total() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Transient + e.Permanent
}

// Loader submits documents to one concrete index.
type Loader struct {
	Backend *backend.Client
	Index   string
	Config  Config
	Errors  ErrorCounts

	indexed int64
	mu      sync.Mutex
}

// New builds a Loader targeting index, an already-created concrete index
// (the caller owns its lifecycle via indexmgr.Pyramid).
func New(b *backend.Client, index string, cfg Config) *Loader {
	return &Loader{Backend: b, Index: index, Config: cfg.withDefaults()}
}

// Indexed returns the number of documents successfully indexed so far.
func (l *Loader) Indexed() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.indexed
}

func (l *Loader) recordIndexed(n int64) {
	l.mu.Lock()
	l.indexed += n
	l.mu.Unlock()
}

// Load drains docs, batching by count and byte size, and submits batches
// through a bounded worker pool. Load blocks until docs is exhausted or
// ctx is cancelled; on cancellation, in-flight batches are allowed to
// finish before Load returns.
func (l *Loader) Load(ctx context.Context, docs <-chan model.Document) error {
	sem := make(chan struct{}, l.Config.Parallelism)
	var wg sync.WaitGroup
	var firstErr error
	var errMu sync.Mutex

	setErr := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	batch := make([]backend.BulkItem, 0, l.Config.BatchSize)
	batchBytes := 0

	flush := func(items []backend.BulkItem) {
		if len(items) == 0 {
			return
		}
		// Backpressure: block here until a worker slot is free, suspending
		// the producer while the in-flight queue is full.
		sem <- struct{}{}
		wg.Add(1)
		go func(items []backend.BulkItem) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := l.submitWithRetry(ctx, items); err != nil {
				setErr(err)
			}
		}(items)
	}

docLoop:
	for {
		select {
		case <-ctx.Done():
			break docLoop
		case doc, ok := <-docs:
			if !ok {
				break docLoop
			}
			raw, err := json.Marshal(doc)
			if err != nil {
				l.Errors.add(backend.ClassPermanent)
				logger.L().Error("bulk_marshal_error", "id", doc.DocID(), "err", err)
				continue
			}
			item := backend.BulkItem{Index: l.Index, ID: doc.DocID(), Doc: json.RawMessage(raw)}
			if len(batch) >= l.Config.BatchSize || batchBytes+len(raw) > l.Config.BatchBytes {
				toFlush := batch
				batch = make([]backend.BulkItem, 0, l.Config.BatchSize)
				batchBytes = 0
				flush(toFlush)
			}
			batch = append(batch, item)
			batchBytes += len(raw)
		}
	}
	flush(batch)
	wg.Wait()
	return firstErr
}

func (l *Loader) submitWithRetry(ctx context.Context, items []backend.BulkItem) error {
	t0 := time.Now()
	defer func() {
		metrics.BulkBatchDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	}()

	backoff := l.Config.BaseBackoff
	for attempt := 0; ; attempt++ {
		res, err := l.Backend.Bulk(ctx, items)
		if err != nil {
			var be *backend.Error
			if errors.As(err, &be) && be.Class == backend.ClassTransient && attempt < l.Config.MaxRetries {
				metrics.BulkRetriesTotal.Inc()
				logger.L().Warn("bulk_retry", "attempt", attempt, "err", err)
				if !sleepWithJitter(ctx, backoff) {
					return ctx.Err()
				}
				backoff = nextBackoff(backoff, l.Config.MaxBackoff)
				continue
			}
			class := backend.ClassPermanent
			if be != nil {
				class = be.Class
			}
			for range items {
				l.Errors.add(class)
			}
			metrics.BulkDocsFailedTotal.WithLabelValues(string(class)).Add(float64(len(items)))
			return err
		}
		l.accountResult(items, res)
		return nil
	}
}

func (l *Loader) accountResult(items []backend.BulkItem, res *backend.BulkResult) {
	byID := make(map[string]backend.BulkItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	var ok int64
	for _, ir := range res.Items {
		if ir.Status >= 200 && ir.Status < 300 {
			ok++
			continue
		}
		l.Errors.add(backend.ClassPermanent)
		metrics.BulkDocsFailedTotal.WithLabelValues(string(backend.ClassPermanent)).Inc()
		logger.L().Warn("bulk_item_failed", "id", ir.ID, "status", ir.Status, "error", ir.Error)
	}
	l.recordIndexed(ok)
	metrics.BulkDocsIndexedTotal.WithLabelValues(l.Index).Add(float64(ok))
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		next = max
	}
	return next
}

// sleepWithJitter sleeps d with +/-20% jitter (between 0.8d and 1.2d),
// returning false if ctx is cancelled first.
func sleepWithJitter(ctx context.Context, d time.Duration) bool {
	jitter := time.Duration(float64(d) * (0.8 + 0.4*rand.Float64()))
	t := time.NewTimer(jitter)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
