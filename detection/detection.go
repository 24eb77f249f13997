// Package detection defines the output shape of an object detector over
// satellite imagery and the plumbing that lifts raw pixel-space boxes into
// geographic detections.
package detection

import (
	"context"
	"fmt"
	"image"
)

// Detection returns a bounding box around a detected structure, a
// confidence score of the detection, and its class label.
type Detection interface {
	BoundingBox() *image.Rectangle
	Score() float64
	Label() string
}

// Detector returns the detections found in an image frame. Implementations
// wrap the external model; the rest of the pipeline treats the detector as
// an opaque collaborator passed in explicitly, never held in package state.
type Detector func(ctx context.Context, img image.Image) ([]Detection, error)

// InvalidDetectionError is returned for malformed detector output: a
// degenerate box, an out-of-range confidence, or a self-intersecting
// footprint. It always indicates a caller bug, never a transient condition.
type InvalidDetectionError struct {
	Reason string
}

func (e *InvalidDetectionError) Error() string {
	return "invalid detection: " + e.Reason
}

// NewInvalidDetectionError creates an InvalidDetectionError with a
// formatted reason.
func NewInvalidDetectionError(format string, args ...interface{}) error {
	return &InvalidDetectionError{Reason: fmt.Sprintf(format, args...)}
}

// NewDetection creates a 2D detection from a bounding box, a confidence
// score, and a class label.
func NewDetection(boundingBox image.Rectangle, score float64, label string) Detection {
	return &detection2D{boundingBox: &boundingBox, score: score, label: label}
}

type detection2D struct {
	boundingBox *image.Rectangle
	score       float64
	label       string
}

// BoundingBox returns the bounding box of the detection in pixel space.
func (d *detection2D) BoundingBox() *image.Rectangle {
	return d.boundingBox
}

// Score returns the confidence score of the detection.
func (d *detection2D) Score() float64 {
	return d.score
}

// Label returns the class label of the detection.
func (d *detection2D) Label() string {
	return d.label
}

// Offset translates a detection from patch-local pixel coordinates into the
// coordinate space of the full mosaic, given the patch's top-left corner.
func Offset(d Detection, by image.Point) Detection {
	return NewDetection(d.BoundingBox().Add(by), d.Score(), d.Label())
}

func validate(d Detection) error {
	box := d.BoundingBox()
	if box == nil {
		return NewInvalidDetectionError("no bounding box")
	}
	if box.Min.X >= box.Max.X || box.Min.Y >= box.Max.Y {
		return NewInvalidDetectionError("bounding box %v is degenerate", *box)
	}
	if s := d.Score(); s < 0 || s > 1 {
		return NewInvalidDetectionError("confidence %v is outside [0, 1]", s)
	}
	return nil
}
