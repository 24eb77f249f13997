package tile_test

import (
	"image"
	"testing"

	"go.viam.com/test"

	"github.com/riyaghate/datacenter-detection/tile"
)

func TestGridErrors(t *testing.T) {
	_, err := tile.Grid(100, 100, 0, 0)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = tile.Grid(100, 100, 640, 100)
	test.That(t, err.Error(), test.ShouldContainSubstring, "does not fit")
	_, err = tile.Grid(1000, 1000, 640, 640)
	test.That(t, err.Error(), test.ShouldContainSubstring, "overlap")
	_, err = tile.Grid(1000, 1000, 640, -1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGridExact(t *testing.T) {
	// patches divide the image exactly, no edge patches needed
	rects, err := tile.Grid(100, 100, 50, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rects, test.ShouldHaveLength, 4)
	test.That(t, rects[0], test.ShouldResemble, image.Rect(0, 0, 50, 50))
	test.That(t, rects[3], test.ShouldResemble, image.Rect(50, 50, 100, 100))
}

func TestGridEdgePatches(t *testing.T) {
	rects, err := tile.Grid(100, 100, 64, 14)
	test.That(t, err, test.ShouldBeNil)
	// regular grid offset 0 plus a flush right column and bottom row
	test.That(t, rects, test.ShouldHaveLength, 4)
	for _, r := range rects {
		test.That(t, r.Dx(), test.ShouldEqual, 64)
		test.That(t, r.Dy(), test.ShouldEqual, 64)
		test.That(t, r.In(image.Rect(0, 0, 100, 100)), test.ShouldBeTrue)
	}
}

func TestGridCoverage(t *testing.T) {
	width, height := 4000, 3000
	rects, err := tile.Grid(width, height, 640, 100)
	test.That(t, err, test.ShouldBeNil)

	covered := make([]bool, width*height)
	for _, r := range rects {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				covered[y*width+x] = true
			}
		}
	}
	for i, c := range covered {
		if !c {
			t.Fatalf("pixel (%d, %d) not covered by any patch", i%width, i/width)
		}
	}
}

func TestGridOverlapSeams(t *testing.T) {
	rects, err := tile.Grid(1180, 640, 640, 100)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rects, test.ShouldHaveLength, 2)
	// adjacent patches share a 100px seam
	seam := rects[0].Intersect(rects[1])
	test.That(t, seam.Dx(), test.ShouldEqual, 100)
	test.That(t, seam.Dy(), test.ShouldEqual, 640)
}
