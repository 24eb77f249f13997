package detection

import (
	"context"
	"image"
	"image/color"
)

// luminanceDetector converts an image to gray and finds the connected
// components with values below a certain luminance threshold. threshold is
// between 0.0 and 256.0, with 256.0 being white and 0.0 being black.
type luminanceDetector struct {
	threshold float64
	label     string
}

// NewLuminanceDetector creates a detector useful for exercising the
// pipeline locally without a trained model. It finds pixels below the set
// threshold and returns a bounding box around each connected component.
func NewLuminanceDetector(threshold float64, label string) Detector {
	ld := luminanceDetector{threshold, label}
	return ld.Inference
}

// Inference takes in an image frame and returns the detection bounding
// boxes found in the image.
func (ld *luminanceDetector) Inference(ctx context.Context, img image.Image) ([]Detection, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	seen := make([]bool, width*height)
	queue := []image.Point{}
	detections := []Detection{}
	for i := 0; i < width; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := 0; j < height; j++ {
			pt := image.Point{i, j}
			indx := pt.Y*width + pt.X
			if seen[indx] {
				continue
			}
			if !ld.pass(img.At(bounds.Min.X+pt.X, bounds.Min.Y+pt.Y)) {
				seen[indx] = true
				continue
			}
			queue = append(queue, pt)
			x0, y0, x1, y1 := pt.X, pt.Y, pt.X, pt.Y // the bounding box of the component
			for len(queue) != 0 {
				newPt := queue[0]
				newIndx := newPt.Y*width + newPt.X
				seen[newIndx] = true
				queue = queue[1:]
				if newPt.X < x0 {
					x0 = newPt.X
				}
				if newPt.X > x1 {
					x1 = newPt.X
				}
				if newPt.Y < y0 {
					y0 = newPt.Y
				}
				if newPt.Y > y1 {
					y1 = newPt.Y
				}
				neighbors := ld.getNeighbors(newPt, img, seen)
				queue = append(queue, neighbors...)
			}
			// x1/y1 are the last pixels of the component; the box convention
			// is exclusive-max, so a single pixel still yields a 1x1 box
			detections = append(detections, NewDetection(image.Rect(x0, y0, x1+1, y1+1), 1.0, ld.label))
		}
	}
	return detections, nil
}

func (ld *luminanceDetector) pass(c color.Color) bool {
	return luminance(c) < ld.threshold
}

func (ld *luminanceDetector) getNeighbors(pt image.Point, img image.Image, seen []bool) []image.Point {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	neighbors := make([]image.Point, 0, 4)
	fourPoints := []image.Point{{pt.X, pt.Y - 1}, {pt.X, pt.Y + 1}, {pt.X - 1, pt.Y}, {pt.X + 1, pt.Y}}
	for _, p := range fourPoints {
		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		indx := p.Y*width + p.X
		if seen[indx] {
			continue
		}
		if ld.pass(img.At(bounds.Min.X+p.X, bounds.Min.Y+p.Y)) {
			neighbors = append(neighbors, p)
		}
		seen[indx] = true
	}
	return neighbors
}

// luminance of the RGB color, a value between 0 and 255.
func luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
}
