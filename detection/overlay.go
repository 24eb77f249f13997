package detection

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

var overlayFont *truetype.Font

// init sets up the font we want to use for captions.
func init() {
	var err error
	overlayFont, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

var (
	boxColor  = color.NRGBA{0, 255, 0, 255}
	gridColor = color.NRGBA{0, 0, 255, 255}
)

// Overlay returns a copy of the image with the detection bounding boxes and
// confidence captions drawn over it.
func Overlay(img image.Image, dets []Detection) image.Image {
	dc := gg.NewContextForImage(img)
	for _, d := range dets {
		box := *d.BoundingBox()
		drawRectangleEmpty(dc, box, boxColor, 3)
		caption := fmt.Sprintf("%s: %.2f", d.Label(), d.Score())
		drawString(dc, caption, image.Point{box.Min.X, box.Min.Y - 18}, boxColor, 16)
	}
	return dc.Image()
}

// OverlayGrid draws the patch rectangles over the image to show how it was
// divided for detection, overlaps included.
func OverlayGrid(img image.Image, patches []image.Rectangle) image.Image {
	dc := gg.NewContextForImage(img)
	for _, r := range patches {
		drawRectangleEmpty(dc, r, gridColor, 2)
	}
	return dc.Image()
}

// drawString writes a string to the given context at a particular point.
func drawString(dc *gg.Context, text string, p image.Point, c color.Color, size float64) {
	dc.SetFontFace(truetype.NewFace(overlayFont, &truetype.Options{Size: size}))
	dc.SetColor(c)
	dc.DrawStringWrapped(text, float64(p.X), float64(p.Y), 0, 0, float64(dc.Width()), 1, 0)
}

// drawRectangleEmpty draws the given rectangle into the context. The
// positions of the rectangle are used to place it within the context.
func drawRectangleEmpty(dc *gg.Context, r image.Rectangle, c color.Color, width float64) {
	dc.SetColor(c)

	dc.DrawLine(float64(r.Min.X), float64(r.Min.Y), float64(r.Max.X), float64(r.Min.Y))
	dc.SetLineWidth(width)
	dc.Stroke()

	dc.DrawLine(float64(r.Min.X), float64(r.Min.Y), float64(r.Min.X), float64(r.Max.Y))
	dc.SetLineWidth(width)
	dc.Stroke()

	dc.DrawLine(float64(r.Max.X), float64(r.Min.Y), float64(r.Max.X), float64(r.Max.Y))
	dc.SetLineWidth(width)
	dc.Stroke()

	dc.DrawLine(float64(r.Min.X), float64(r.Max.Y), float64(r.Max.X), float64(r.Max.Y))
	dc.SetLineWidth(width)
	dc.Stroke()
}
