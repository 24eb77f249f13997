package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/riyaghate/datacenter-detection/cluster"
	"github.com/riyaghate/datacenter-detection/detection"
	"github.com/riyaghate/datacenter-detection/tile"
)

// BatchEntry pairs one tile image file with its geographic metadata. Pixel
// dimensions come from the image itself when it is opened.
type BatchEntry struct {
	ImagePath string      `json:"image"`
	TileID    string      `json:"tile_id"`
	Bounds    tile.Bounds `json:"bounds"`
}

// ReadManifest loads a batch manifest, a JSON array of BatchEntry.
func ReadManifest(path string) ([]BatchEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read manifest %q", path)
	}
	var entries []BatchEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(err, "cannot parse manifest %q", path)
	}
	return entries, nil
}

// TileResult reports one tile of a batch run.
type TileResult struct {
	TileID     string `json:"tile_id"`
	ImagePath  string `json:"image"`
	Detections int    `json:"detections"`
}

// Summary reports a whole batch run. Clusters span all tiles; the per-tile
// detection counts are pre-deduplication.
type Summary struct {
	TilesProcessed int                `json:"tiles_processed"`
	RawDetections  int                `json:"raw_detections"`
	Structures     int                `json:"structures"`
	PerTile        []TileResult       `json:"tiles"`
	Clusters       []*cluster.Cluster `json:"-"`
}

// WriteSummary writes the run summary as indented JSON.
func WriteSummary(w io.Writer, s *Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// ProcessBatch scans every tile in the manifest and deduplicates across all
// of them in one pass, so structures on tile boundaries seen by two tiles
// collapse into one cluster. All detections are materialized before
// deduplication begins.
func (p *Pipeline) ProcessBatch(ctx context.Context, entries []BatchEntry) (*Summary, error) {
	summary := &Summary{}
	var all []*detection.GeoDetection
	for _, entry := range entries {
		img, err := imaging.Open(entry.ImagePath)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot open tile image %q", entry.ImagePath)
		}
		t, err := tile.NewTile(entry.TileID, entry.Bounds, img.Bounds().Dx(), img.Bounds().Dy())
		if err != nil {
			return nil, err
		}
		geodets, err := p.DetectTile(ctx, t, img)
		if err != nil {
			return nil, err
		}
		all = append(all, geodets...)
		summary.TilesProcessed++
		summary.RawDetections += len(geodets)
		summary.PerTile = append(summary.PerTile, TileResult{
			TileID:     entry.TileID,
			ImagePath:  entry.ImagePath,
			Detections: len(geodets),
		})
	}
	clusters, err := cluster.Dedupe(all, p.cfg.Cluster)
	if err != nil {
		return nil, err
	}
	summary.Structures = len(clusters)
	summary.Clusters = clusters
	p.logger.Infof("batch: %d tiles, %d raw detections, %d structures",
		summary.TilesProcessed, summary.RawDetections, summary.Structures)
	return summary, nil
}
