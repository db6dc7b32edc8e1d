// Package geofinder implements an in-memory spatial index of
// administrative polygons answering, for a point, its ordered admin chain
// (finest level first). Candidates are bucketed by a one-degree latitude
// band — a bounding-box index in the spirit of an R-tree's envelope
// search, documented here as a deliberate simplification — then refined
// by exact point-in-polygon testing.
//
// The ray-casting test and the frozen-snapshot atomic.Value swap pattern
// follow the same shape as a nearest-point lookup over a live dataset
// that gets rebuilt wholesale and swapped in behind readers. The
// Geofinder never fails a lookup outright: a miss returns an empty chain
// rather than a guess, so callers can distinguish "no admin contains this
// point" from an error.
package geofinder

import (
	"math"
	"sort"
	"sync/atomic"

	"mimirsbrunn/internal/model"
)

type candidate struct {
	admin *model.Admin
	envs  []envelope
}

// snapshot is the frozen, read-only structure shared across ingest workers
// once Build has run: populated on a single thread, then frozen and
// shared read-only.
type snapshot struct {
	buckets map[int][]*candidate
}

const bandDegrees = 1.0

func bandsFor(e envelope) []int {
	lo := int(math.Floor(e.minLat / bandDegrees))
	hi := int(math.Floor(e.maxLat / bandDegrees))
	out := make([]int, 0, hi-lo+1)
	for b := lo; b <= hi; b++ {
		out = append(out, b)
	}
	return out
}

// Geofinder holds administrative polygons and answers point-in-polygon
// attachment queries. The zero value is a usable, empty Geofinder.
type Geofinder struct {
	snap atomic.Value // holds *snapshot

	// Misses is a monotonic, lock-free count of Attach calls that found
	// no enclosing admin — degraded results are logged by count, never
	// by failing.
	Misses uint64
}

// New returns an empty, query-ready Geofinder.
func New() *Geofinder {
	g := &Geofinder{}
	g.snap.Store(&snapshot{buckets: map[int][]*candidate{}})
	return g
}

// Build indexes admins into bounding-box buckets and freezes the result.
// Build is meant to run once, single-threaded, before any Attach call
// from worker goroutines.
func Build(admins []*model.Admin) *Geofinder {
	g := New()
	snap := &snapshot{buckets: map[int][]*candidate{}}
	for _, a := range admins {
		if len(a.Boundary) == 0 {
			continue
		}
		c := &candidate{admin: a}
		seen := map[int]bool{}
		for _, poly := range a.Boundary {
			e := computeEnvelope(poly)
			c.envs = append(c.envs, e)
			for _, b := range bandsFor(e) {
				if !seen[b] {
					seen[b] = true
					snap.buckets[b] = append(snap.buckets[b], c)
				}
			}
		}
	}
	g.snap.Store(snap)
	return g
}

func (g *Geofinder) current() *snapshot {
	v := g.snap.Load()
	if v == nil {
		return &snapshot{}
	}
	return v.(*snapshot)
}

// Attach returns the admin chain containing pt, ordered finest level
// (largest level number) first, ties broken by smaller envelope area.
// Attach never fails: an unattached point yields a nil slice.
func (g *Geofinder) Attach(pt model.Coord) []model.AdminRef {
	snap := g.current()
	band := int(math.Floor(pt.Lat / bandDegrees))
	cands := snap.buckets[band]
	if len(cands) == 0 {
		atomic.AddUint64(&g.Misses, 1)
		return nil
	}

	type hit struct {
		admin *model.Admin
		area  float64
	}
	var hits []hit
	seen := map[string]bool{}
	for _, c := range cands {
		if seen[c.admin.ID] {
			continue
		}
		hitPoly := false
		minArea := math.MaxFloat64
		for i, poly := range c.admin.Boundary {
			e := c.envs[i]
			if !e.contains(pt) {
				continue
			}
			if pointInPolygon(pt, poly) {
				hitPoly = true
				if a := e.area(); a < minArea {
					minArea = a
				}
			}
		}
		if hitPoly {
			seen[c.admin.ID] = true
			hits = append(hits, hit{admin: c.admin, area: minArea})
		}
	}
	if len(hits) == 0 {
		atomic.AddUint64(&g.Misses, 1)
		return nil
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].admin.Level != hits[j].admin.Level {
			return hits[i].admin.Level > hits[j].admin.Level // finest (largest level number) first
		}
		return hits[i].area < hits[j].area
	})
	refs := make([]model.AdminRef, 0, len(hits))
	for _, h := range hits {
		refs = append(refs, h.admin.Ref())
	}
	return refs
}
