// Package pipeline sequences the detection workflow over georeferenced
// satellite imagery: divide a tile into overlapping patches, run the
// detector on each patch, lift the boxes into geographic coordinates, and
// merge duplicate detections caused by patch and tile overlap.
package pipeline

import (
	"context"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/riyaghate/datacenter-detection/cluster"
	"github.com/riyaghate/datacenter-detection/detection"
	"github.com/riyaghate/datacenter-detection/tile"
	"github.com/riyaghate/datacenter-detection/utils"
)

// Pipeline runs a detector over georeferenced imagery. The detector handle
// is passed in explicitly; the pipeline holds no global model state.
type Pipeline struct {
	det    detection.Detector
	cfg    Config
	logger golog.Logger
}

// New builds a pipeline around the given detector.
func New(det detection.Detector, cfg Config, logger golog.Logger) (*Pipeline, error) {
	if det == nil {
		return nil, errors.New("pipeline must have a detector")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{det: det, cfg: cfg, logger: logger}, nil
}

type patchResult struct {
	rect image.Rectangle
	dets []detection.Detection
	err  error
}

// DetectTile runs the detector over every patch of one tile and returns
// the geo-referenced detections, not yet deduplicated. Callers scanning
// several tiles must collect the detections from all of them before
// handing the combined slice to cluster.Dedupe; per-tile deduplication
// would miss duplicates that straddle tile boundaries.
func (p *Pipeline) DetectTile(ctx context.Context, t *tile.Tile, img image.Image) ([]*detection.GeoDetection, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Dx() != t.Width || b.Dy() != t.Height {
		return nil, errors.Errorf("image is %dx%d but tile %q declares %dx%d",
			b.Dx(), b.Dy(), t.ID, t.Width, t.Height)
	}

	rects, err := p.Patches(t)
	if err != nil {
		return nil, err
	}
	p.logger.Debugf("tile %q: %d patches of %dx%d", t.ID, len(rects), p.cfg.PatchSize, p.cfg.PatchSize)

	jobs := make(chan image.Rectangle)
	results := make(chan patchResult)
	var wg sync.WaitGroup
	for w := 0; w < utils.MinInt(p.cfg.Workers, len(rects)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range jobs {
				patch := imaging.Crop(img, r)
				dets, err := p.det(ctx, patch)
				results <- patchResult{rect: r, dets: dets, err: err}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, r := range rects {
			select {
			case jobs <- r:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	keep := detection.NewScoreFilter(p.cfg.MinScore)
	var mosaic []detection.Detection
	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = errors.Wrapf(res.err, "detector failed on patch %v of tile %q", res.rect, t.ID)
			}
			continue
		}
		for _, d := range keep(res.dets) {
			mosaic = append(mosaic, detection.Offset(d, res.rect.Min))
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.logger.Infof("tile %q: %d raw detections at or above score %.2f", t.ID, len(mosaic), p.cfg.MinScore)

	geodets := make([]*detection.GeoDetection, 0, len(mosaic))
	for _, d := range mosaic {
		gd, err := detection.Normalize(t, d)
		if err != nil {
			return nil, err
		}
		geodets = append(geodets, gd)
	}
	return geodets, nil
}

// ProcessTile is the single-tile convenience: DetectTile followed by
// cross-patch deduplication.
func (p *Pipeline) ProcessTile(ctx context.Context, t *tile.Tile, img image.Image) ([]*cluster.Cluster, error) {
	geodets, err := p.DetectTile(ctx, t, img)
	if err != nil {
		return nil, err
	}
	clusters, err := cluster.Dedupe(geodets, p.cfg.Cluster)
	if err != nil {
		return nil, err
	}
	p.logger.Infof("tile %q: %d structures after merging duplicates", t.ID, len(clusters))
	return clusters, nil
}

// Patches returns the patch grid the detector will scan for a tile. Tiles
// smaller than the patch size run as a single full-frame patch.
func (p *Pipeline) Patches(t *tile.Tile) ([]image.Rectangle, error) {
	if t.Width < p.cfg.PatchSize || t.Height < p.cfg.PatchSize {
		return []image.Rectangle{image.Rect(0, 0, t.Width, t.Height)}, nil
	}
	return tile.Grid(t.Width, t.Height, p.cfg.PatchSize, p.cfg.PatchOverlap)
}
