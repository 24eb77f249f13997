package main

import (
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"go.viam.com/test"
)

func TestParseBounds(t *testing.T) {
	b, err := parseBounds("10.0, 20.0, 10.01, 20.01")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.MinLat, test.ShouldEqual, 10.0)
	test.That(t, b.MaxLon, test.ShouldEqual, 20.01)

	b, err = parseBounds(`39°2'2.49"N, 77°32'29.37"W, 39°2'10"N, 77°32'20"W`)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.MinLat, test.ShouldAlmostEqual, 39.034025, 1e-6)
	test.That(t, b.MinLon, test.ShouldAlmostEqual, -77.541492, 1e-6)

	_, err = parseBounds("10,20,10.01")
	test.That(t, err, test.ShouldNotBeNil)
	_, err = parseBounds("10,20,not-a-number,21")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestMainErrors(t *testing.T) {
	test.That(t, realMain([]string{}), test.ShouldNotBeNil)
	test.That(t, realMain([]string{"-img", "x.png", "-bounds", "bogus"}), test.ShouldNotBeNil)
	test.That(t, realMain([]string{"-manifest", "/nonexistent/manifest.json"}), test.ShouldNotBeNil)
	test.That(t, realMain([]string{"-img", "/nonexistent/tile.png", "-bounds", "10,20,10.01,20.01"}), test.ShouldNotBeNil)
}

func TestMainSingleTile(t *testing.T) {
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(80, 80, 120, 120), image.NewUniform(color.Black), image.Point{}, draw.Src)
	imgPath := filepath.Join(dir, "tile.png")
	test.That(t, imaging.Save(img, imgPath), test.ShouldBeNil)

	outPath := filepath.Join(dir, "out.geojson")
	overlayPath := filepath.Join(dir, "overlay.png")
	err := realMain([]string{
		"-img", imgPath,
		"-bounds", "10,20,10.001,20.001",
		"-out", outPath,
		"-overlay", overlayPath,
	})
	test.That(t, err, test.ShouldBeNil)

	s, err := os.Stat(outPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Size(), test.ShouldBeGreaterThan, 0)
	_, err = os.Stat(overlayPath)
	test.That(t, err, test.ShouldBeNil)
}

func TestMainGridOverlay(t *testing.T) {
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(80, 80, 120, 120), image.NewUniform(color.Black), image.Point{}, draw.Src)
	imgPath := filepath.Join(dir, "tile.png")
	test.That(t, imaging.Save(img, imgPath), test.ShouldBeNil)

	overlayPath := filepath.Join(dir, "overlay.png")
	err := realMain([]string{
		"-img", imgPath,
		"-bounds", "10,20,10.001,20.001",
		"-overlay", overlayPath,
		"-grid",
	})
	test.That(t, err, test.ShouldBeNil)

	// a 200px tile runs as one full-frame patch, so the grid traces the
	// image border
	overlay, err := imaging.Open(overlayPath)
	test.That(t, err, test.ShouldBeNil)
	_, _, b, _ := overlay.At(0, 100).RGBA()
	test.That(t, b>>8, test.ShouldBeGreaterThan, uint32(200))
}
