package tile

import (
	"image"

	"github.com/pkg/errors"
)

// Grid computes the pixel rectangles of overlapping patches covering an
// image of the given dimensions. Patches advance by patch-overlap; when the
// regular grid stops short of an edge, an extra row or column flush with
// that edge keeps every pixel covered. Structures straddling a patch seam
// appear in more than one patch and are merged downstream.
func Grid(width, height, patch, overlap int) ([]image.Rectangle, error) {
	if patch <= 0 {
		return nil, errors.Errorf("patch size %d must be positive", patch)
	}
	if width < patch || height < patch {
		return nil, errors.Errorf("patch size %d does not fit a %dx%d image", patch, width, height)
	}
	if overlap < 0 || overlap >= patch {
		return nil, errors.Errorf("overlap %d must be in [0, patch size %d)", overlap, patch)
	}
	step := patch - overlap
	offsets := func(extent int) []int {
		var offs []int
		for o := 0; o+patch <= extent; o += step {
			offs = append(offs, o)
		}
		if last := offs[len(offs)-1]; last+patch < extent {
			offs = append(offs, extent-patch)
		}
		return offs
	}
	xs := offsets(width)
	ys := offsets(height)
	rects := make([]image.Rectangle, 0, len(xs)*len(ys))
	for _, y := range ys {
		for _, x := range xs {
			rects = append(rects, image.Rect(x, y, x+patch, y+patch))
		}
	}
	return rects, nil
}
