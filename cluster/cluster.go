// Package cluster merges geographic detections that reference the same
// physical structure but were detected independently in overlapping or
// adjacent tiles.
package cluster

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/riyaghate/datacenter-detection/detection"
)

const (
	// DefaultOverlapThreshold is the footprint IoU at or above which two
	// detections count as the same structure.
	DefaultOverlapThreshold = 0.3
	// DefaultDistancePx is the merge radius expressed in pixels of source
	// imagery; DistanceForResolution scales it to meters.
	DefaultDistancePx = 50.
	// DefaultDistanceM is the center distance in meters at or below which
	// two detections count as the same structure, assuming NAIP imagery at
	// 0.6 m ground resolution.
	DefaultDistanceM = DefaultDistancePx * 0.6
)

// DistanceForResolution returns the merge distance in meters for imagery at
// the given ground resolution in meters per pixel, e.g. a value from
// tile.GroundResolution.
func DistanceForResolution(metersPerPixel float64) float64 {
	return DefaultDistancePx * metersPerPixel
}

// Config holds the merge thresholds. A detection merges into a cluster when
// either criterion matches; both boundaries are inclusive.
type Config struct {
	OverlapThreshold float64 `json:"overlap_threshold"`
	DistanceM        float64 `json:"distance_m"`
}

// DefaultConfig returns the default merge thresholds.
func DefaultConfig() Config {
	return Config{OverlapThreshold: DefaultOverlapThreshold, DistanceM: DefaultDistanceM}
}

// Validate ensures the thresholds are usable.
func (c Config) Validate() error {
	if c.OverlapThreshold < 0 || c.OverlapThreshold > 1 {
		return errors.Errorf("overlap_threshold %v must be in [0, 1]", c.OverlapThreshold)
	}
	if c.DistanceM < 0 {
		return errors.Errorf("distance_m %v cannot be negative", c.DistanceM)
	}
	return nil
}

// Cluster is a group of detections judged to reference one physical
// structure, plus the representative detection for the group. The
// representative is the highest-confidence member; insertion order breaks
// ties. Nothing in a cluster is mutated after Dedupe returns.
type Cluster struct {
	ID             uuid.UUID
	Representative *detection.GeoDetection
	Members        []*detection.GeoDetection
}

// Score returns the confidence of the cluster, the maximum over its
// members.
func (c *Cluster) Score() float64 {
	return c.Representative.Score
}

// Dedupe merges detections of the same structure across tiles. The input
// must be fully materialized before the call: a late high-confidence
// detection can change which cluster absorbs an earlier one, so feeding
// per-tile partial batches would make the clustering order-dependent.
//
// Detections are assigned greedily in descending confidence order. A
// detection joins the best-matching existing cluster when its footprint IoU
// with the cluster representative reaches OverlapThreshold or its center is
// within DistanceM meters of the representative's; otherwise it seeds a new
// singleton cluster. A cluster with a single member is the common case, not
// an error.
//
// Output is ordered by descending representative confidence, then ascending
// tile ID, then cluster creation order, so repeated runs over any
// permutation of the same input produce identical results.
func Dedupe(dets []*detection.GeoDetection, cfg Config) ([]*Cluster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, d := range dets {
		if err := validateGeo(d); err != nil {
			return nil, err
		}
	}

	ordered := append([]*detection.GeoDetection{}, dets...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return detLess(ordered[i], ordered[j])
	})

	var clusters []*Cluster
	for _, d := range ordered {
		best := -1
		bestIoU := 0.
		bestDist := math.Inf(1)
		for i, c := range clusters {
			overlap := IoU(d.Footprint, c.Representative.Footprint)
			dist := d.Center.GreatCircleDistance(c.Representative.Center) * 1000.
			if overlap < cfg.OverlapThreshold && dist > cfg.DistanceM {
				continue
			}
			// best match has the highest overlap, then the smallest
			// distance; a full tie goes to the earliest-created cluster
			if best == -1 || overlap > bestIoU || (overlap == bestIoU && dist < bestDist) {
				best, bestIoU, bestDist = i, overlap, dist
			}
		}
		if best == -1 {
			clusters = append(clusters, &Cluster{
				ID:             uuid.New(),
				Representative: d,
				Members:        []*detection.GeoDetection{d},
			})
			continue
		}
		c := clusters[best]
		c.Members = append(c.Members, d)
		if d.Score > c.Representative.Score {
			c.Representative = d
		}
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		a, b := clusters[i].Representative, clusters[j].Representative
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.TileID < b.TileID
	})
	return clusters, nil
}

// detLess is a total order over detections: descending confidence, then
// ascending tile ID, then pixel box position. Content-based tie-breaks keep
// the greedy assignment invariant under input permutation.
func detLess(a, b *detection.GeoDetection) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.TileID != b.TileID {
		return a.TileID < b.TileID
	}
	if a.PixelBox.Min.Y != b.PixelBox.Min.Y {
		return a.PixelBox.Min.Y < b.PixelBox.Min.Y
	}
	if a.PixelBox.Min.X != b.PixelBox.Min.X {
		return a.PixelBox.Min.X < b.PixelBox.Min.X
	}
	if a.PixelBox.Max.Y != b.PixelBox.Max.Y {
		return a.PixelBox.Max.Y < b.PixelBox.Max.Y
	}
	return a.PixelBox.Max.X < b.PixelBox.Max.X
}

// validateGeo rejects malformed geometry before clustering begins; a bad
// detection fails the whole batch.
func validateGeo(d *detection.GeoDetection) error {
	if d == nil || d.Center == nil {
		return detection.NewInvalidDetectionError("missing geographic center")
	}
	if d.Score < 0 || d.Score > 1 {
		return detection.NewInvalidDetectionError("confidence %v is outside [0, 1]", d.Score)
	}
	if !simpleQuad(d.Footprint) {
		return detection.NewInvalidDetectionError(
			"footprint of detection at (%v, %v) is not a simple quadrilateral", d.Center.Lat(), d.Center.Lng())
	}
	return nil
}
