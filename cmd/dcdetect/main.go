// Package main is a command that scans geotagged satellite tiles for data
// center structures and reports their coordinates.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/riyaghate/datacenter-detection/cluster"
	"github.com/riyaghate/datacenter-detection/detection"
	"github.com/riyaghate/datacenter-detection/pipeline"
	"github.com/riyaghate/datacenter-detection/tile"
)

var logger = golog.NewDevelopmentLogger("dcdetect")

func main() {
	if err := realMain(os.Args[1:]); err != nil {
		logger.Fatal(err)
	}
}

func realMain(args []string) error {
	flags := flag.NewFlagSet("dcdetect", flag.ContinueOnError)
	imgPath := flags.String("img", "", "tile image to scan")
	boundsStr := flags.String("bounds", "", "tile bounds as minLat,minLon,maxLat,maxLon (decimal or DMS)")
	tileID := flags.String("tile", "tile", "tile identifier")
	manifest := flags.String("manifest", "", "batch manifest, scans every tile listed instead of -img")
	configPath := flags.String("config", "", "pipeline config file")
	geojsonOut := flags.String("out", "", "write detected structures as GeoJSON")
	overlayOut := flags.String("overlay", "", "write the tile image with detection boxes drawn on it")
	grid := flags.Bool("grid", false, "also draw the patch grid on the overlay image")
	threshold := flags.Float64("thresh", 0.5, "luminance threshold for the built-in detector")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg := pipeline.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = pipeline.ReadConfig(*configPath); err != nil {
			return err
		}
	}

	det := detection.NewLuminanceDetector(*threshold, "data_center")
	ctx := context.Background()

	if *manifest != "" {
		p, err := pipeline.New(det, cfg, logger)
		if err != nil {
			return err
		}
		return runBatch(ctx, p, *manifest, *geojsonOut)
	}
	if *imgPath == "" {
		return errors.New("need -img or -manifest")
	}
	// without an explicit config the merge distance tracks the tile's
	// ground resolution
	tuned := *configPath != ""
	return runTile(ctx, det, cfg, tuned, *grid, *imgPath, *tileID, *boundsStr, *geojsonOut, *overlayOut)
}

func runTile(
	ctx context.Context,
	det detection.Detector,
	cfg pipeline.Config,
	tuned, grid bool,
	imgPath, tileID, boundsStr, geojsonOut, overlayOut string,
) error {
	bounds, err := parseBounds(boundsStr)
	if err != nil {
		return err
	}
	img, err := imaging.Open(imgPath)
	if err != nil {
		return errors.Wrapf(err, "cannot open tile image %q", imgPath)
	}
	t, err := tile.NewTile(tileID, bounds, img.Bounds().Dx(), img.Bounds().Dy())
	if err != nil {
		return err
	}
	if !tuned {
		res, err := t.GroundResolution()
		if err != nil {
			return err
		}
		cfg.Cluster.DistanceM = cluster.DistanceForResolution(res)
		logger.Debugf("tile %q: %.2f m/px ground resolution, merge distance %.1f m",
			t.ID, res, cfg.Cluster.DistanceM)
	}
	p, err := pipeline.New(det, cfg, logger)
	if err != nil {
		return err
	}

	clusters, err := p.ProcessTile(ctx, t, img)
	if err != nil {
		return err
	}
	reportClusters(clusters)

	if overlayOut != "" {
		dets := make([]detection.Detection, 0, len(clusters))
		for _, c := range clusters {
			rep := c.Representative
			dets = append(dets, detection.NewDetection(rep.PixelBox, rep.Score, rep.Label))
		}
		out := detection.Overlay(img, dets)
		if grid {
			patches, err := p.Patches(t)
			if err != nil {
				return err
			}
			out = detection.OverlayGrid(out, patches)
		}
		if err := imaging.Save(out, overlayOut); err != nil {
			return errors.Wrapf(err, "cannot write overlay %q", overlayOut)
		}
		logger.Infow("wrote overlay", "path", overlayOut)
	}
	return writeGeoJSON(clusters, geojsonOut)
}

func runBatch(ctx context.Context, p *pipeline.Pipeline, manifestPath, geojsonOut string) error {
	entries, err := pipeline.ReadManifest(manifestPath)
	if err != nil {
		return err
	}
	summary, err := p.ProcessBatch(ctx, entries)
	if err != nil {
		return err
	}
	reportClusters(summary.Clusters)
	if err := pipeline.WriteSummary(os.Stdout, summary); err != nil {
		return err
	}
	return writeGeoJSON(summary.Clusters, geojsonOut)
}

func reportClusters(clusters []*cluster.Cluster) {
	for i, c := range clusters {
		rep := c.Representative
		logger.Infow(fmt.Sprintf("structure %d", i+1),
			"lat", rep.Center.Lat(),
			"lon", rep.Center.Lng(),
			"score", c.Score(),
			"members", len(c.Members),
			"maps", pipeline.MapsLink(rep.Center.Lat(), rep.Center.Lng()),
		)
	}
	logger.Infof("found %d structures", len(clusters))
}

func writeGeoJSON(clusters []*cluster.Cluster, path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %q", path)
	}
	defer f.Close()
	if err := pipeline.WriteGeoJSON(f, clusters); err != nil {
		return err
	}
	logger.Infow("wrote geojson", "path", path, "structures", len(clusters))
	return nil
}

// parseBounds reads "minLat,minLon,maxLat,maxLon". Each value may be decimal
// degrees or DMS like `39°2'2.49"N`.
func parseBounds(s string) (tile.Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return tile.Bounds{}, errors.Errorf("bounds %q must have four comma separated values", s)
	}
	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := tile.ParseDMS(strings.TrimSpace(part))
		if err != nil {
			return tile.Bounds{}, errors.Wrapf(err, "bounds value %d", i+1)
		}
		vals[i] = v
	}
	return tile.Bounds{MinLat: vals[0], MinLon: vals[1], MaxLat: vals[2], MaxLon: vals[3]}, nil
}
