package ingestadapters

import (
	"context"
	"fmt"

	"mimirsbrunn/internal/geofinder"
	"mimirsbrunn/internal/logger"
	"mimirsbrunn/internal/model"
)

// BanoRow is one input row from a BANO or OpenAddresses CSV extract.
type BanoRow struct {
	ID          string
	HouseNumber string
	StreetName  string
	City        string
	ZipCode     string
	Coord       model.Coord
}

// BanoOA emits one Addr per row; its embedded street is synthesized from
// (StreetName, City) rather than read from a prior Street document, and
// admins are attached via the Geofinder.
func BanoOA(ctx context.Context, rows []BanoRow, gf *geofinder.Geofinder) <-chan model.Document {
	out := make(chan model.Document)
	go func() {
		defer close(out)
		for _, row := range rows {
			admins := gf.Attach(row.Coord)
			admins = withFallbackCity(admins, row.City)
			street, err := model.NewStreet(fmt.Sprintf("street:bano:%s", row.ID), row.StreetName, row.Coord, admins, 1.0)
			if err != nil {
				logger.L().Warn("banooa_street_rejected", "id", row.ID, "err", err)
				continue
			}
			var zips []string
			if row.ZipCode != "" {
				zips = []string{row.ZipCode}
			}
			addr, err := model.NewAddr(fmt.Sprintf("addr:bano:%s", row.ID), row.HouseNumber, *street, row.Coord, zips, 1.0)
			if err != nil {
				logger.L().Warn("banooa_addr_rejected", "id", row.ID, "err", err)
				continue
			}
			select {
			case <-ctx.Done():
				return
			case out <- addr:
			}
		}
	}()
	return out
}

// withFallbackCity appends a synthetic city-level ref when the Geofinder's
// admin chain carries no city, so a row's raw city column still surfaces
// in the composed address label.
func withFallbackCity(admins []model.AdminRef, city string) []model.AdminRef {
	if city == "" {
		return admins
	}
	for _, a := range admins {
		if a.ZoneType == model.ZoneCity {
			return admins
		}
	}
	return append(admins, model.AdminRef{ID: "admin:bano:city:" + city, Name: city, ZoneType: model.ZoneCity})
}
