package ingestadapters

import (
	"encoding/json"
	"io"
	"os"

	"mimirsbrunn/internal/geofinder"
	"mimirsbrunn/internal/model"
)

// AdminSnapshotZone is one administrative region in a standalone snapshot
// file, used by adapters (BanoOA, NTFS) that attach regions via a
// Geofinder built from data produced by a prior OSM/Cosmogony run rather
// than from records of their own.
type AdminSnapshotZone struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Level    int             `json:"level"`
	ZoneType model.ZoneType  `json:"zone_type"`
	Coord    model.Coord     `json:"coord"`
	Boundary []model.Polygon `json:"boundary"`
	Weight   float64         `json:"weight"`
}

// LoadGeofinderSnapshot reads a JSON array of AdminSnapshotZone from path
// and builds a Geofinder from it. An empty path yields an empty Geofinder
// (every Attach call misses), which is a valid degraded mode rather than
// an error.
func LoadGeofinderSnapshot(path string) (*geofinder.Geofinder, error) {
	if path == "" {
		return geofinder.New(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return buildGeofinderFromReader(f)
}

func buildGeofinderFromReader(r io.Reader) (*geofinder.Geofinder, error) {
	var zones []AdminSnapshotZone
	if err := json.NewDecoder(r).Decode(&zones); err != nil {
		return nil, err
	}
	admins := make([]*model.Admin, 0, len(zones))
	for _, z := range zones {
		a, err := model.NewAdmin(z.ID, z.Name, z.Level, z.ZoneType, z.Coord, z.Boundary, z.Weight)
		if err != nil {
			continue
		}
		admins = append(admins, a)
	}
	return geofinder.Build(admins), nil
}
