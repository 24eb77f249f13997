package pipeline_test

import (
	"bytes"
	"context"
	"image"
	"testing"

	geojson "github.com/paulmach/orb/geojson"
	"go.viam.com/test"

	"github.com/riyaghate/datacenter-detection/pipeline"
	"github.com/riyaghate/datacenter-detection/tile"
)

func TestWriteGeoJSON(t *testing.T) {
	bounds := tile.Bounds{MinLat: 10.0, MinLon: 20.0, MaxLat: 10.01, MaxLon: 20.01}
	tl, err := tile.NewTile("nova", bounds, 500, 500)
	test.That(t, err, test.ShouldBeNil)

	img := whiteImage(500, 500, image.Rect(200, 200, 260, 260))
	p := testPipeline(t, pipeline.DefaultConfig())
	clusters, err := p.ProcessTile(context.Background(), tl, img)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, clusters, test.ShouldHaveLength, 1)

	var buf bytes.Buffer
	test.That(t, pipeline.WriteGeoJSON(&buf, clusters), test.ShouldBeNil)

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fc.Features, test.ShouldHaveLength, 1)

	f := fc.Features[0]
	test.That(t, f.Geometry.GeoJSONType(), test.ShouldEqual, "Polygon")
	test.That(t, f.Properties["tile_id"], test.ShouldEqual, "nova")
	test.That(t, f.Properties.MustInt("members"), test.ShouldEqual, 1)
	test.That(t, f.Properties.MustFloat64("score"), test.ShouldEqual, 1.0)
	test.That(t, f.Properties.MustString("google_maps"),
		test.ShouldContainSubstring, "maps.google.com")
}

func TestWriteGeoJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	test.That(t, pipeline.WriteGeoJSON(&buf, nil), test.ShouldBeNil)

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fc.Features, test.ShouldHaveLength, 0)
}

func TestMapsLink(t *testing.T) {
	link := pipeline.MapsLink(39.034025, -77.541492)
	test.That(t, link, test.ShouldEqual,
		"https://maps.google.com/maps?q=39.034025,-77.541492")
}
