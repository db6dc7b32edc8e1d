// Package indexmgr owns the alias-pyramid lifecycle for one (type, dataset)
// ingest: a concrete index is built under a timestamped name, then
// promoted behind three alias layers (dataset, type, root) in a single
// atomic batch, so readers never observe a half-published state.
package indexmgr

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"mimirsbrunn/internal/backend"
	"mimirsbrunn/internal/logger"
	"mimirsbrunn/internal/metrics"
)

// State names one step of the publish state machine.
type State string

const (
	StateInit      State = "init"
	StateLoading   State = "loading"
	StateReady     State = "ready"
	StatePublish   State = "publish"
	StateCleanup   State = "cleanup"
	StateAborting  State = "aborting"
	StateDone      State = "done"
)

var datasetPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// ValidDataset reports whether dataset matches the naming grammar:
// [a-z0-9_-]+.
func ValidDataset(dataset string) bool {
	return datasetPattern.MatchString(dataset)
}

// ConcreteName builds root_{type}_{dataset}_{timestamp}, timestamp in UTC
// YYYYMMDDThhmmss.
func ConcreteName(root, kind, dataset string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%s", root, kind, dataset, at.UTC().Format("20060102T150405"))
}

// DatasetAlias is root_{type}_{dataset}.
func DatasetAlias(root, kind, dataset string) string {
	return fmt.Sprintf("%s_%s_%s", root, kind, dataset)
}

// TypeAlias is root_{type}.
func TypeAlias(root, kind string) string {
	return fmt.Sprintf("%s_%s", root, kind)
}

// Pyramid drives one ingest's index through Init -> Loading -> Ready ->
// Publish -> Cleanup, or Aborting on fatal failure. A Pyramid instance is
// not reused across ingests; build one per (type, dataset) run.
type Pyramid struct {
	Backend *backend.Client
	Root    string
	Kind    string
	Dataset string

	state   State
	concrete string
	oldSet   []string
}

// NewPyramid validates dataset against the naming grammar and returns a
// Pyramid in StateInit.
func NewPyramid(b *backend.Client, root, kind, dataset string) (*Pyramid, error) {
	if !ValidDataset(dataset) {
		return nil, fmt.Errorf("indexmgr: dataset %q does not match [a-z0-9_-]+", dataset)
	}
	return &Pyramid{Backend: b, Root: root, Kind: kind, Dataset: dataset, state: StateInit}, nil
}

// State returns the current lifecycle state.
func (p *Pyramid) State() State { return p.state }

// ConcreteIndex returns the concrete index name created by Init, or "" if
// Init has not run.
func (p *Pyramid) ConcreteIndex() string { return p.concrete }

// Init creates the new concrete index with the type-appropriate mapping and
// transitions to Loading.
func (p *Pyramid) Init(ctx context.Context, shards, replicas int) error {
	if p.state != StateInit {
		return fmt.Errorf("indexmgr: Init called from state %s", p.state)
	}
	p.concrete = ConcreteName(p.Root, p.Kind, p.Dataset, time.Now())
	if err := p.Backend.CreateIndex(ctx, p.concrete, p.Kind, shards, replicas); err != nil {
		return err
	}
	p.state = StateLoading
	logger.L().Info("indexmgr_init", "index", p.concrete, "kind", p.Kind, "dataset", p.Dataset)
	return nil
}

// EnterLoading is a no-op transition marker; the Bulk Loader writes
// directly to ConcreteIndex() while this Pyramid sits in StateLoading. No
// alias points at the new index yet.
func (p *Pyramid) EnterLoading() {
	p.state = StateLoading
}

// Abort deletes the new concrete index and leaves aliases untouched. Call
// on any fatal error during Loading.
func (p *Pyramid) Abort(ctx context.Context) error {
	p.state = StateAborting
	if p.concrete == "" {
		return nil
	}
	err := p.Backend.DeleteIndex(ctx, p.concrete)
	metrics.IndexPublishTotal.WithLabelValues(p.Dataset, "aborted").Inc()
	logger.L().Warn("indexmgr_abort", "index", p.concrete, "err", err)
	return err
}

// Ready refreshes the new index and snapshots the dataset alias's current
// targets as the old set to be retired on Publish.
func (p *Pyramid) Ready(ctx context.Context) error {
	if p.state != StateLoading {
		return fmt.Errorf("indexmgr: Ready called from state %s", p.state)
	}
	if err := p.Backend.Refresh(ctx, p.concrete); err != nil {
		return err
	}
	old, err := p.Backend.ListAliases(ctx, DatasetAlias(p.Root, p.Kind, p.Dataset))
	if err != nil {
		return err
	}
	p.oldSet = old
	p.state = StateReady
	return nil
}

// Publish rewires the dataset, type, and root aliases to the new index in
// a single atomic alias-update batch: adds are listed before removes so a
// reader never observes zero targets.
func (p *Pyramid) Publish(ctx context.Context) error {
	if p.state != StateReady {
		return fmt.Errorf("indexmgr: Publish called from state %s", p.state)
	}
	datasetAlias := DatasetAlias(p.Root, p.Kind, p.Dataset)
	typeAlias := TypeAlias(p.Root, p.Kind)

	var actions []backend.AliasAction
	actions = append(actions,
		backend.AliasAction{Add: &backend.AliasRef{Index: p.concrete, Alias: datasetAlias}},
		backend.AliasAction{Add: &backend.AliasRef{Index: p.concrete, Alias: typeAlias}},
		backend.AliasAction{Add: &backend.AliasRef{Index: p.concrete, Alias: p.Root}},
	)
	for _, old := range p.oldSet {
		if old == p.concrete {
			continue
		}
		actions = append(actions, backend.AliasAction{Remove: &backend.AliasRef{Index: old, Alias: datasetAlias}})
	}

	if err := p.Backend.UpdateAliases(ctx, actions); err != nil {
		metrics.IndexPublishTotal.WithLabelValues(p.Dataset, "failed").Inc()
		return err
	}
	p.state = StatePublish
	metrics.IndexPublishTotal.WithLabelValues(p.Dataset, "published").Inc()
	logger.L().Info("indexmgr_publish", "index", p.concrete, "dataset", p.Dataset, "retired", p.oldSet)
	return nil
}

// Cleanup deletes every index in the retired old set. Failures are logged
// but non-fatal: dangling indices remain reclaimable by Reap.
func (p *Pyramid) Cleanup(ctx context.Context) {
	if p.state != StatePublish {
		return
	}
	for _, old := range p.oldSet {
		if old == p.concrete {
			continue
		}
		if err := p.Backend.DeleteIndex(ctx, old); err != nil {
			logger.L().Warn("indexmgr_cleanup_failed", "index", old, "err", err)
		}
	}
	p.state = StateDone
}

// Reap lists concrete indices matching the naming grammar for root that are
// unreferenced by any alias and deletes them — an operator-triggered
// reclaim for indices a prior Cleanup failed to remove.
func Reap(ctx context.Context, b *backend.Client, root string, allIndices []string) (deleted []string, err error) {
	prefix := root + "_"
	grammar := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `[a-z]+_[a-z0-9_-]+_\d{8}T\d{6}$`)
	matches := func(name string) bool {
		return strings.HasPrefix(name, prefix) && grammar.MatchString(name)
	}
	referenced := map[string]bool{}
	for _, name := range allIndices {
		if !matches(name) {
			continue
		}
		aliases, lerr := b.AliasesOf(ctx, name)
		if lerr != nil || len(aliases) > 0 {
			// An index whose aliases cannot be read is not known to be
			// unreferenced, so it is kept.
			referenced[name] = true
		}
	}
	for _, name := range allIndices {
		if !matches(name) || referenced[name] {
			continue
		}
		if derr := b.DeleteIndex(ctx, name); derr != nil {
			logger.L().Warn("indexmgr_reap_failed", "index", name, "err", derr)
			continue
		}
		deleted = append(deleted, name)
		metrics.IndexReaperDeletedTotal.Inc()
	}
	logger.L().Info("indexmgr_reap", "root", root, "deleted", deleted)
	return deleted, nil
}
