// Package ingestrun drives one ingest CLI's pipeline: it demultiplexes a
// single document stream from an ingest adapter into one Index Manager
// pyramid and Bulk Loader per document kind (one concrete index per type
// per dataset), then publishes every pyramid that loaded cleanly and
// aborts every one that didn't.
package ingestrun

import (
	"context"
	"fmt"
	"sync"

	"mimirsbrunn/internal/backend"
	"mimirsbrunn/internal/bulk"
	"mimirsbrunn/internal/indexmgr"
	"mimirsbrunn/internal/logger"
	"mimirsbrunn/internal/model"
)

// Run holds everything one ingest invocation needs to fan a document
// stream out to per-kind pyramids and loaders.
type Run struct {
	Backend    *backend.Client
	Root       string
	Dataset    string
	Shards     int
	Replicas   int
	BulkConfig bulk.Config

	// ErrorThreshold is the maximum number of per-item errors (transient
	// or permanent, summed) a kind's loader may accumulate before that
	// kind is aborted instead of published. Zero means no item errors
	// are tolerated.
	ErrorThreshold int
}

// Report summarizes one Execute call.
type Report struct {
	Indexed map[model.Kind]int64
	Aborted []model.Kind
}

// SetupError marks a failure to create or initialize a kind's pyramid,
// typically because the backend is unreachable. It can occur on a kind's
// first document after other kinds have already received documents; every
// pyramid of the run is then aborted. Callers map this to a different exit
// code than an item-error-threshold failure.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string { return e.Err.Error() }
func (e *SetupError) Unwrap() error { return e.Err }

// ItemThresholdError marks a kind aborted because its loader's item
// error count exceeded the configured threshold.
type ItemThresholdError struct {
	Kind      model.Kind
	Errors    int
	Threshold int
}

func (e *ItemThresholdError) Error() string {
	return fmt.Sprintf("ingestrun: %s accumulated %d item errors, exceeding threshold %d", e.Kind, e.Errors, e.Threshold)
}

// Execute drains docs to completion, routing each document by kind to its
// own pyramid/loader pair, then runs the publish-or-abort lifecycle on
// each pyramid once its loader has drained.
func (r *Run) Execute(ctx context.Context, docs <-chan model.Document) (*Report, error) {
	var mu sync.Mutex
	pyramids := map[model.Kind]*indexmgr.Pyramid{}
	chans := map[model.Kind]chan model.Document{}
	loaders := map[model.Kind]*bulk.Loader{}
	loadErrs := map[model.Kind]error{}
	var wg sync.WaitGroup

	channelFor := func(k model.Kind) (chan model.Document, error) {
		mu.Lock()
		defer mu.Unlock()
		if ch, ok := chans[k]; ok {
			return ch, nil
		}
		p, err := indexmgr.NewPyramid(r.Backend, r.Root, string(k), r.Dataset)
		if err != nil {
			return nil, fmt.Errorf("ingestrun: new pyramid for %s: %w", k, err)
		}
		if err := p.Init(ctx, r.Shards, r.Replicas); err != nil {
			return nil, fmt.Errorf("ingestrun: init pyramid for %s: %w", k, err)
		}
		pyramids[k] = p
		ch := make(chan model.Document, 256)
		chans[k] = ch
		l := bulk.New(r.Backend, p.ConcreteIndex(), r.BulkConfig)
		loaders[k] = l
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Load(ctx, ch); err != nil {
				mu.Lock()
				loadErrs[k] = err
				mu.Unlock()
			}
		}()
		return ch, nil
	}

	var setupErr error
	for doc := range docs {
		ch, err := channelFor(doc.DocKind())
		if err != nil {
			setupErr = err
			break
		}
		ch <- doc
	}
	for _, ch := range chans {
		close(ch)
	}
	wg.Wait()

	if setupErr != nil {
		report := &Report{Indexed: map[model.Kind]int64{}}
		for k, p := range pyramids {
			_ = p.Abort(ctx)
			report.Aborted = append(report.Aborted, k)
		}
		return report, &SetupError{Err: setupErr}
	}

	report := &Report{Indexed: map[model.Kind]int64{}}
	var firstErr error
	for k, p := range pyramids {
		if err := loadErrs[k]; err != nil {
			logger.L().Error("ingest_kind_failed", "kind", k, "err", err)
			_ = p.Abort(ctx)
			report.Aborted = append(report.Aborted, k)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if errCount := loaders[k].Errors.Total(); errCount > r.ErrorThreshold {
			logger.L().Error("ingest_kind_error_threshold_exceeded", "kind", k, "errors", errCount, "threshold", r.ErrorThreshold)
			_ = p.Abort(ctx)
			report.Aborted = append(report.Aborted, k)
			if firstErr == nil {
				firstErr = &ItemThresholdError{Kind: k, Errors: errCount, Threshold: r.ErrorThreshold}
			}
			continue
		}
		if err := p.Ready(ctx); err != nil {
			_ = p.Abort(ctx)
			report.Aborted = append(report.Aborted, k)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := p.Publish(ctx); err != nil {
			report.Aborted = append(report.Aborted, k)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		p.Cleanup(ctx)
		report.Indexed[k] = loaders[k].Indexed()
	}
	return report, firstErr
}
