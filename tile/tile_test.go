package tile_test

import (
	"fmt"
	"image"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/riyaghate/datacenter-detection/tile"
)

var novaBounds = tile.Bounds{MinLat: 10.0, MinLon: 20.0, MaxLat: 10.01, MaxLon: 20.01}

func TestBoundsValidate(t *testing.T) {
	testCases := []struct {
		bounds tile.Bounds
		ok     bool
	}{
		{novaBounds, true},
		{tile.Bounds{MinLat: 10.01, MinLon: 20.0, MaxLat: 10.0, MaxLon: 20.01}, false},
		{tile.Bounds{MinLat: 10.0, MinLon: 20.0, MaxLat: 10.0, MaxLon: 20.01}, false},
		{tile.Bounds{MinLat: 10.0, MinLon: 20.01, MaxLat: 10.01, MaxLon: 20.0}, false},
		{tile.Bounds{MinLat: 10.0, MinLon: 20.0, MaxLat: 10.01, MaxLon: 20.0}, false},
	}
	for i, tc := range testCases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			err := tc.bounds.Validate()
			if tc.ok {
				test.That(t, err, test.ShouldBeNil)
			} else {
				var invalidErr *tile.InvalidTileError
				test.That(t, errors.As(err, &invalidErr), test.ShouldBeTrue)
			}
		})
	}
}

func TestNewTile(t *testing.T) {
	_, err := tile.NewTile("nova", novaBounds, 0, 1000)
	var invalidErr *tile.InvalidTileError
	test.That(t, errors.As(err, &invalidErr), test.ShouldBeTrue)
	_, err = tile.NewTile("nova", novaBounds, 1000, -5)
	test.That(t, errors.As(err, &invalidErr), test.ShouldBeTrue)

	tl, err := tile.NewTile("nova", novaBounds, 1000, 1000)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tl.ID, test.ShouldEqual, "nova")
}

func TestPixelToGeoCorners(t *testing.T) {
	tl, err := tile.NewTile("nova", novaBounds, 1000, 1000)
	test.That(t, err, test.ShouldBeNil)

	nw, err := tl.PixelToGeo(0, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, nw.Lat(), test.ShouldAlmostEqual, 10.01)
	test.That(t, nw.Lng(), test.ShouldAlmostEqual, 20.0)

	ne, err := tl.PixelToGeo(1000, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ne.Lat(), test.ShouldAlmostEqual, 10.01)
	test.That(t, ne.Lng(), test.ShouldAlmostEqual, 20.01)

	se, err := tl.PixelToGeo(1000, 1000)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, se.Lat(), test.ShouldAlmostEqual, 10.0)
	test.That(t, se.Lng(), test.ShouldAlmostEqual, 20.01)

	sw, err := tl.PixelToGeo(0, 1000)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sw.Lat(), test.ShouldAlmostEqual, 10.0)
	test.That(t, sw.Lng(), test.ShouldAlmostEqual, 20.0)

	center, err := tl.PixelToGeo(500, 500)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, center.Lat(), test.ShouldAlmostEqual, 10.005)
	test.That(t, center.Lng(), test.ShouldAlmostEqual, 20.005)
}

func TestPixelToGeoMonotonic(t *testing.T) {
	tl, err := tile.NewTile("nova", novaBounds, 1000, 800)
	test.That(t, err, test.ShouldBeNil)

	prevLon := -180.
	for x := 0.; x <= 1000; x += 37 {
		pt, err := tl.PixelToGeo(x, 400)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pt.Lng(), test.ShouldBeGreaterThan, prevLon)
		prevLon = pt.Lng()
	}

	prevLat := 90.
	for y := 0.; y <= 800; y += 37 {
		pt, err := tl.PixelToGeo(500, y)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pt.Lat(), test.ShouldBeLessThan, prevLat)
		prevLat = pt.Lat()
	}
}

func TestPixelToGeoOutOfBounds(t *testing.T) {
	tl, err := tile.NewTile("nova", novaBounds, 1000, 1000)
	test.That(t, err, test.ShouldBeNil)

	for _, pt := range [][2]float64{{-1, 500}, {1001, 500}, {500, -0.5}, {500, 1000.5}} {
		_, err := tl.PixelToGeo(pt[0], pt[1])
		var oobErr *tile.OutOfBoundsError
		test.That(t, errors.As(err, &oobErr), test.ShouldBeTrue)
	}
}

func TestPixelToGeoDegenerateTile(t *testing.T) {
	bad := &tile.Tile{ID: "bad", Bounds: tile.Bounds{MinLat: 10, MinLon: 20, MaxLat: 10, MaxLon: 21}, Width: 100, Height: 100}
	_, err := bad.PixelToGeo(50, 50)
	var invalidErr *tile.InvalidTileError
	test.That(t, errors.As(err, &invalidErr), test.ShouldBeTrue)
}

func TestGroundResolution(t *testing.T) {
	// 0.01 degrees of longitude at the equator is roughly 1.11 km
	tl, err := tile.NewTile("eq", tile.Bounds{MinLat: -0.005, MinLon: 20.0, MaxLat: 0.005, MaxLon: 20.01}, 1000, 1000)
	test.That(t, err, test.ShouldBeNil)
	res, err := tl.GroundResolution()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res, test.ShouldBeBetween, 1.0, 1.2)
}

func TestSub(t *testing.T) {
	tl, err := tile.NewTile("nova", novaBounds, 1000, 1000)
	test.That(t, err, test.ShouldBeNil)

	sub, err := tl.Sub("nova-nw", image.Rect(0, 0, 500, 500))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sub.Width, test.ShouldEqual, 500)
	test.That(t, sub.Height, test.ShouldEqual, 500)
	test.That(t, sub.Bounds.MinLat, test.ShouldAlmostEqual, 10.005)
	test.That(t, sub.Bounds.MaxLat, test.ShouldAlmostEqual, 10.01)
	test.That(t, sub.Bounds.MinLon, test.ShouldAlmostEqual, 20.0)
	test.That(t, sub.Bounds.MaxLon, test.ShouldAlmostEqual, 20.005)

	_, err = tl.Sub("nova-oob", image.Rect(600, 600, 1200, 1200))
	var oobErr *tile.OutOfBoundsError
	test.That(t, errors.As(err, &oobErr), test.ShouldBeTrue)
}
