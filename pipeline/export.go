package pipeline

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"github.com/riyaghate/datacenter-detection/cluster"
)

// WriteGeoJSON writes clusters as a GeoJSON FeatureCollection: one polygon
// feature per cluster using the representative footprint, with center,
// confidence, and provenance in the feature properties.
func WriteGeoJSON(w io.Writer, clusters []*cluster.Cluster) error {
	fc := geojson.NewFeatureCollection()
	for _, c := range clusters {
		rep := c.Representative
		f := geojson.NewFeature(orb.Polygon{rep.Footprint})
		f.Properties["cluster_id"] = c.ID.String()
		f.Properties["label"] = rep.Label
		f.Properties["score"] = c.Score()
		f.Properties["tile_id"] = rep.TileID
		f.Properties["members"] = len(c.Members)
		f.Properties["center"] = []float64{rep.Center.Lng(), rep.Center.Lat()}
		f.Properties["google_maps"] = MapsLink(rep.Center.Lat(), rep.Center.Lng())
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "cannot marshal clusters")
	}
	_, err = w.Write(data)
	return err
}

// MapsLink formats a Google Maps URL for a coordinate, handy for spot
// checking detections against current imagery.
func MapsLink(lat, lon float64) string {
	return fmt.Sprintf("https://maps.google.com/maps?q=%.6f,%.6f", lat, lon)
}
