// Package ingestadapters implements the four source-specific normalizers:
// OSM, Cosmogony, BANO/OpenAddresses, and NTFS. Each adapter is expressed
// as a lazy channel generator over a typed input record stream, so the
// Bulk Loader's backpressure applies the same way regardless of source.
package ingestadapters

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"mimirsbrunn/internal/geofinder"
	"mimirsbrunn/internal/logger"
	"mimirsbrunn/internal/model"
)

// OSMNode is a point element carrying optional POI tags.
type OSMNode struct {
	ID    int64
	Coord model.Coord
	Tags  map[string]string
}

// OSMWay is a sequence of nodes, tagged as a street, a POI, or neither.
type OSMWay struct {
	ID    int64
	Tags  map[string]string
	Nodes []OSMNode
}

// OSMRelation is an administrative boundary when its admin_level tag
// matches a configured level.
type OSMRelation struct {
	ID       int64
	Tags     map[string]string
	Boundary []model.Polygon
}

// OSMConfig selects which element kinds to import and which admin_level
// values count as administrative boundaries.
type OSMConfig struct {
	AdminLevels              []int
	ImportAdmin, ImportWay, ImportPoi bool
}

func zoneTypeForLevel(level int) model.ZoneType {
	switch {
	case level <= 2:
		return model.ZoneCountry
	case level <= 4:
		return model.ZoneRegion
	case level <= 6:
		return model.ZoneDepartment
	case level <= 8:
		return model.ZoneCity
	case level <= 9:
		return model.ZoneCityDistrict
	default:
		return model.ZoneSuburb
	}
}

// OSM classifies relations into Admin documents first (so the Geofinder
// built from them is ready before streets and POIs attach), then ways into
// Street/Poi documents, then nodes into Poi documents: admins always
// precede other kinds on the output channel.
func OSM(ctx context.Context, relations []OSMRelation, ways []OSMWay, nodes []OSMNode, gf *geofinder.Geofinder, cfg OSMConfig) <-chan model.Document {
	out := make(chan model.Document)
	go func() {
		defer close(out)
		var admins []*model.Admin
		if cfg.ImportAdmin {
			admins = emitAdmins(ctx, relations, cfg, out)
		}
		if gf == nil {
			gf = geofinder.Build(admins)
		}
		if cfg.ImportWay {
			emitStreetsAndWayPois(ctx, ways, gf, out)
		}
		if cfg.ImportPoi {
			emitNodePois(ctx, nodes, gf, out)
		}
	}()
	return out
}

func emitAdmins(ctx context.Context, relations []OSMRelation, cfg OSMConfig, out chan<- model.Document) []*model.Admin {
	levelSet := map[int]bool{}
	for _, l := range cfg.AdminLevels {
		levelSet[l] = true
	}
	var admins []*model.Admin
	for _, rel := range relations {
		level, err := strconv.Atoi(rel.Tags["admin_level"])
		if err != nil || (len(levelSet) > 0 && !levelSet[level]) {
			continue
		}
		name := rel.Tags["name"]
		if name == "" {
			continue
		}
		coord := representativePoint(rel.Boundary)
		a, err := model.NewAdmin(fmt.Sprintf("admin:osm:%d", rel.ID), name, level, zoneTypeForLevel(level), coord, rel.Boundary, 1.0)
		if err != nil {
			logger.L().Warn("osm_admin_rejected", "id", rel.ID, "err", err)
			continue
		}
		admins = append(admins, a)
		select {
		case <-ctx.Done():
			return admins
		case out <- a:
		}
	}
	return admins
}

func representativePoint(boundary []model.Polygon) model.Coord {
	if len(boundary) == 0 || len(boundary[0].Rings) == 0 || len(boundary[0].Rings[0]) == 0 {
		return model.Coord{}
	}
	ring := boundary[0].Rings[0]
	var sumLat, sumLon float64
	for _, p := range ring {
		sumLat += p.Lat
		sumLon += p.Lon
	}
	c, _ := model.NewCoord(sumLat/float64(len(ring)), sumLon/float64(len(ring)))
	return c
}

// wayGroup merges ways sharing a street name within the same finest admin
// into one street. Node positions are not compared: distant ways with the
// same name in the same finest admin become a single street.
type wayGroup struct {
	name   string
	adminID string
	nodes  []OSMNode
}

func emitStreetsAndWayPois(ctx context.Context, ways []OSMWay, gf *geofinder.Geofinder, out chan<- model.Document) {
	groups := map[string]*wayGroup{}
	var order []string

	for _, w := range ways {
		if poiType, ok := resolvePoiType(w.Tags); ok && len(w.Nodes) > 0 {
			centroid := centroidOf(w.Nodes)
			admins := gf.Attach(centroid)
			name := w.Tags["name"]
			if name == "" {
				name = poiType.Name
			}
			poi, err := model.NewPoi(fmt.Sprintf("poi:osm:way:%d", w.ID), name, poiType, centroid, admins, w.Tags, 1.0)
			if err != nil {
				logger.L().Warn("osm_way_poi_rejected", "id", w.ID, "err", err)
				continue
			}
			select {
			case <-ctx.Done():
				return
			case out <- poi:
			}
			continue
		}

		name := w.Tags["name"]
		if name == "" || len(w.Nodes) == 0 {
			continue
		}
		centroid := centroidOf(w.Nodes)
		admins := gf.Attach(centroid)
		finestAdmin := ""
		if len(admins) > 0 {
			finestAdmin = admins[0].ID
		}
		key := name + "|" + finestAdmin
		g, ok := groups[key]
		if !ok {
			g = &wayGroup{name: name, adminID: finestAdmin}
			groups[key] = g
			order = append(order, key)
		}
		g.nodes = append(g.nodes, w.Nodes...)
	}

	sort.Strings(order)
	for _, key := range order {
		g := groups[key]
		centroid := centroidOf(g.nodes)
		admins := gf.Attach(centroid)
		street, err := model.NewStreet(fmt.Sprintf("street:osm:%s", key), g.name, centroid, admins, 1.0)
		if err != nil {
			logger.L().Warn("osm_street_rejected", "key", key, "err", err)
			continue
		}
		select {
		case <-ctx.Done():
			return
		case out <- street:
		}
	}
}

func emitNodePois(ctx context.Context, nodes []OSMNode, gf *geofinder.Geofinder, out chan<- model.Document) {
	for _, n := range nodes {
		poiType, ok := resolvePoiType(n.Tags)
		if !ok {
			continue
		}
		name := n.Tags["name"]
		if name == "" {
			name = poiType.Name
		}
		admins := gf.Attach(n.Coord)
		poi, err := model.NewPoi(fmt.Sprintf("poi:osm:node:%d", n.ID), name, poiType, n.Coord, admins, n.Tags, 1.0)
		if err != nil {
			logger.L().Warn("osm_node_poi_rejected", "id", n.ID, "err", err)
			continue
		}
		select {
		case <-ctx.Done():
			return
		case out <- poi:
		}
	}
}

func centroidOf(nodes []OSMNode) model.Coord {
	if len(nodes) == 0 {
		return model.Coord{}
	}
	var sumLat, sumLon float64
	for _, n := range nodes {
		sumLat += n.Coord.Lat
		sumLon += n.Coord.Lon
	}
	c, _ := model.NewCoord(sumLat/float64(len(nodes)), sumLon/float64(len(nodes)))
	return c
}
