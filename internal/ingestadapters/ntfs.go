package ingestadapters

import (
	"context"
	"fmt"

	"mimirsbrunn/internal/geofinder"
	"mimirsbrunn/internal/logger"
	"mimirsbrunn/internal/model"
)

// NTFSStopPoint is a child stop within a stop_area, contributing its
// commercial/physical modes and lines to the aggregated Stop document.
type NTFSStopPoint struct {
	ID              string
	CommercialModes []string
	PhysicalModes   []string
	Lines           []string
	Codes           map[string]string
}

// NTFSStopArea groups one or more stop points at stop_area granularity:
// child stop_points are aggregated into codes and lines rather than
// indexed individually.
type NTFSStopArea struct {
	ID         string
	Name       string
	Coord      model.Coord
	StopPoints []NTFSStopPoint
}

// NTFS emits one Stop document per stop_area, with children aggregated.
func NTFS(ctx context.Context, areas []NTFSStopArea, gf *geofinder.Geofinder) <-chan model.Document {
	out := make(chan model.Document)
	go func() {
		defer close(out)
		for _, area := range areas {
			admins := gf.Attach(area.Coord)
			stop, err := model.NewStop(fmt.Sprintf("stop_area:%s", area.ID), area.Name, area.Coord, admins, 1.0)
			if err != nil {
				logger.L().Warn("ntfs_stop_rejected", "id", area.ID, "err", err)
				continue
			}
			stop.Codes = map[string]string{}
			for _, sp := range area.StopPoints {
				stop.CommercialModes = appendUnique(stop.CommercialModes, sp.CommercialModes...)
				stop.PhysicalModes = appendUnique(stop.PhysicalModes, sp.PhysicalModes...)
				stop.Lines = appendUnique(stop.Lines, sp.Lines...)
				for k, v := range sp.Codes {
					stop.Codes[k] = v
				}
			}
			select {
			case <-ctx.Done():
				return
			case out <- stop:
			}
		}
	}()
	return out
}

func appendUnique(dst []string, src ...string) []string {
	seen := map[string]bool{}
	for _, v := range dst {
		seen[v] = true
	}
	for _, v := range src {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		dst = append(dst, v)
	}
	return dst
}
