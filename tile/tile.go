// Package tile models georeferenced satellite image tiles and converts
// pixel coordinates within a tile into geographic coordinates.
package tile

import (
	"fmt"
	"image"

	geo "github.com/kellydunn/golang-geo"
)

// InvalidTileError is returned when a tile's geographic bounds or pixel
// dimensions are degenerate.
type InvalidTileError struct {
	Reason string
}

func (e *InvalidTileError) Error() string {
	return "invalid tile: " + e.Reason
}

func newInvalidTileError(format string, args ...interface{}) error {
	return &InvalidTileError{Reason: fmt.Sprintf(format, args...)}
}

// OutOfBoundsError is returned when a pixel coordinate falls outside a
// tile's declared pixel extent. The geocoder never clamps; rejecting or
// clamping bad coordinates is the caller's decision.
type OutOfBoundsError struct {
	X, Y          float64
	Width, Height int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("pixel (%v, %v) is outside the %dx%d tile extent", e.X, e.Y, e.Width, e.Height)
}

// Bounds is the geographic extent of a tile in WGS 84 decimal degrees.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Validate returns an InvalidTileError if the extent is degenerate.
func (b Bounds) Validate() error {
	if b.MinLat >= b.MaxLat {
		return newInvalidTileError("latitude span [%v, %v] is degenerate", b.MinLat, b.MaxLat)
	}
	if b.MinLon >= b.MaxLon {
		return newInvalidTileError("longitude span [%v, %v] is degenerate", b.MinLon, b.MaxLon)
	}
	return nil
}

// Tile is a rectangular satellite image with a known geographic extent and
// pixel dimensions. Tiles are immutable once constructed.
type Tile struct {
	ID     string `json:"id"`
	Bounds Bounds `json:"bounds"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// NewTile validates the bounds and dimensions and returns the tile.
func NewTile(id string, b Bounds, width, height int) (*Tile, error) {
	t := &Tile{ID: id, Bounds: b, Width: width, Height: height}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate returns an InvalidTileError if the bounds or pixel dimensions
// are degenerate.
func (t *Tile) Validate() error {
	if err := t.Bounds.Validate(); err != nil {
		return err
	}
	if t.Width <= 0 || t.Height <= 0 {
		return newInvalidTileError("pixel dimensions %dx%d must be positive", t.Width, t.Height)
	}
	return nil
}

// PixelToGeo linearly interpolates a pixel coordinate into the tile's
// geographic extent. Image y grows downward while latitude grows upward,
// so y is inverted. Pure; returns an OutOfBoundsError for coordinates
// outside [0, width] x [0, height].
func (t *Tile) PixelToGeo(x, y float64) (*geo.Point, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if x < 0 || x > float64(t.Width) || y < 0 || y > float64(t.Height) {
		return nil, &OutOfBoundsError{X: x, Y: y, Width: t.Width, Height: t.Height}
	}
	lon := t.Bounds.MinLon + (x/float64(t.Width))*(t.Bounds.MaxLon-t.Bounds.MinLon)
	lat := t.Bounds.MaxLat - (y/float64(t.Height))*(t.Bounds.MaxLat-t.Bounds.MinLat)
	return geo.NewPoint(lat, lon), nil
}

// GroundResolution estimates the ground distance covered by one pixel, in
// meters, measured along the tile's horizontal midline.
func (t *Tile) GroundResolution() (float64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	midLat := (t.Bounds.MinLat + t.Bounds.MaxLat) / 2
	west := geo.NewPoint(midLat, t.Bounds.MinLon)
	east := geo.NewPoint(midLat, t.Bounds.MaxLon)
	return west.GreatCircleDistance(east) * 1000. / float64(t.Width), nil
}

// Sub derives the tile metadata for a patch of this tile. The rectangle is
// in this tile's pixel space; the derived bounds come from geocoding the
// patch corners.
func (t *Tile) Sub(id string, r image.Rectangle) (*Tile, error) {
	nw, err := t.PixelToGeo(float64(r.Min.X), float64(r.Min.Y))
	if err != nil {
		return nil, err
	}
	se, err := t.PixelToGeo(float64(r.Max.X), float64(r.Max.Y))
	if err != nil {
		return nil, err
	}
	b := Bounds{MinLat: se.Lat(), MinLon: nw.Lng(), MaxLat: nw.Lat(), MaxLon: se.Lng()}
	return NewTile(id, b, r.Dx(), r.Dy())
}
