package detection

import (
	"image"

	geo "github.com/kellydunn/golang-geo"
	"github.com/paulmach/orb"

	"github.com/riyaghate/datacenter-detection/tile"
)

// GeoDetection is a detection lifted out of pixel space: a geographic
// center, the footprint polygon of the bounding box, and the provenance of
// the original detector output. The footprint is a closed ring in lon/lat
// order, running clockwise from the northwest corner.
type GeoDetection struct {
	Center    *geo.Point
	Footprint orb.Ring
	Score     float64
	Label     string
	TileID    string
	PixelBox  image.Rectangle
}

// Normalize converts a raw pixel-space detection on the given tile into a
// GeoDetection. The box center and all four corners go through the tile
// geocoder; score, label, tile ID, and pixel box are copied through
// unchanged.
func Normalize(t *tile.Tile, d Detection) (*GeoDetection, error) {
	if err := validate(d); err != nil {
		return nil, err
	}
	box := *d.BoundingBox()
	center, err := t.PixelToGeo(float64(box.Min.X+box.Max.X)/2, float64(box.Min.Y+box.Max.Y)/2)
	if err != nil {
		return nil, err
	}
	// clockwise from the northwest corner
	corners := [4][2]float64{
		{float64(box.Min.X), float64(box.Min.Y)},
		{float64(box.Max.X), float64(box.Min.Y)},
		{float64(box.Max.X), float64(box.Max.Y)},
		{float64(box.Min.X), float64(box.Max.Y)},
	}
	footprint := make(orb.Ring, 0, len(corners)+1)
	for _, corner := range corners {
		pt, err := t.PixelToGeo(corner[0], corner[1])
		if err != nil {
			return nil, err
		}
		footprint = append(footprint, orb.Point{pt.Lng(), pt.Lat()})
	}
	footprint = append(footprint, footprint[0])
	return &GeoDetection{
		Center:    center,
		Footprint: footprint,
		Score:     d.Score(),
		Label:     d.Label(),
		TileID:    t.ID,
		PixelBox:  box,
	}, nil
}
