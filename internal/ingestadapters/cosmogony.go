package ingestadapters

import (
	"context"

	"mimirsbrunn/internal/geofinder"
	"mimirsbrunn/internal/logger"
	"mimirsbrunn/internal/model"
)

// CosmogonyZone is one already-hierarchical admin record: ParentID (empty
// for a root) is authoritative, bypassing the Geofinder for its own
// placement.
type CosmogonyZone struct {
	ID       string
	Name     string
	Level    int
	ZoneType model.ZoneType
	Boundary []model.Polygon
	ParentID string
	ZipCodes []string
}

// Cosmogony emits one Admin per zone in input order, each carrying its
// ancestor chain finest level first, and builds the Geofinder from the
// full result so
// downstream adapters (streets, addresses, POIs) can still attach to it
// even though Cosmogony itself trusts the authored hierarchy.
func Cosmogony(ctx context.Context, zones []CosmogonyZone) (<-chan model.Document, *geofinder.Geofinder) {
	byID := make(map[string]*CosmogonyZone, len(zones))
	for i := range zones {
		byID[zones[i].ID] = &zones[i]
	}

	var admins []*model.Admin
	refsByID := map[string]model.AdminRef{}
	for _, z := range zones {
		a, err := model.NewAdmin(z.ID, z.Name, z.Level, z.ZoneType, representativePoint(z.Boundary), z.Boundary, 1.0)
		if err != nil {
			logger.L().Warn("cosmogony_zone_rejected", "id", z.ID, "err", err)
			continue
		}
		a.ZipCodes = z.ZipCodes
		admins = append(admins, a)
		refsByID[z.ID] = a.Ref()
	}
	gf := geofinder.Build(admins)

	out := make(chan model.Document)
	go func() {
		defer close(out)
		for _, a := range admins {
			chain := ancestorChain(byID, refsByID, a.ID)
			a.AdministrativeRegions = chain
			select {
			case <-ctx.Done():
				return
			case out <- a:
			}
		}
	}()
	return out, gf
}

// ancestorChain walks ParentID links to build the flattened, finest-first
// reference list a descendant document would carry. Refs are copied by
// value, not kept as live pointers into the zone graph.
func ancestorChain(byID map[string]*CosmogonyZone, refs map[string]model.AdminRef, id string) []model.AdminRef {
	var chain []model.AdminRef
	cur := byID[id]
	if cur == nil {
		return nil
	}
	parentID := cur.ParentID
	seen := map[string]bool{id: true}
	for parentID != "" && !seen[parentID] {
		ref, ok := refs[parentID]
		if !ok {
			break
		}
		chain = append(chain, ref)
		seen[parentID] = true
		parent := byID[parentID]
		if parent == nil {
			break
		}
		parentID = parent.ParentID
	}
	return chain
}
