/*
Package chartimg draws a report's 2D series as a bar chart PNG, for email
digests and image downloads where the browser's charts are not available.
*/
package chartimg

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"erp-dashboard/src/pkg/report"
)

type Options struct {
	Width   int
	Height  int
	Padding int
	Glow    float64 // blur sigma of the glow layer, 0 disables it
}

func DefaultOptions() Options {
	return Options{Width: 640, Height: 320, Padding: 24, Glow: 6}
}

var (
	background = color.NRGBA{R: 15, G: 23, B: 42, A: 255}   // slate-900
	axis       = color.NRGBA{R: 71, G: 85, B: 105, A: 255}   // slate-600
	positive   = color.NRGBA{R: 34, G: 211, B: 238, A: 255}  // cyan-400
	negative   = color.NRGBA{R: 244, G: 114, B: 182, A: 255} // pink-400
)

/*
Render draws one bar per point. Bars grow up from the zero line for positive
values and down for negative ones; the tallest bar fills the plot area. An
empty series yields just the background and the zero line.
*/
func Render(points []report.ChartPoint, opts Options) *image.NRGBA {
	canvas := imaging.New(opts.Width, opts.Height, background)

	plotWidth := opts.Width - 2*opts.Padding
	plotHeight := opts.Height - 2*opts.Padding
	if plotWidth <= 0 || plotHeight <= 0 {
		return canvas
	}

	maxUp, maxDown := 0.0, 0.0
	for _, point := range points {
		maxUp = math.Max(maxUp, point.Value)
		maxDown = math.Max(maxDown, -point.Value)
	}
	span := maxUp + maxDown
	zeroY := opts.Padding + plotHeight
	if span > 0 {
		zeroY = opts.Padding + int(math.Round(float64(plotHeight)*maxUp/span))
	}

	bars := imaging.New(opts.Width, opts.Height, color.NRGBA{})
	if len(points) > 0 && span > 0 {
		slot := float64(plotWidth) / float64(len(points))
		barWidth := max(1, int(slot*0.6))
		for i, point := range points {
			barHeight := int(math.Round(float64(plotHeight) * math.Abs(point.Value) / span))
			if barHeight == 0 {
				continue
			}
			x := opts.Padding + int(slot*float64(i)+(slot-float64(barWidth))/2)
			fill, y := positive, zeroY-barHeight
			if point.Value < 0 {
				fill, y = negative, zeroY
			}
			bars = imaging.Paste(bars, imaging.New(barWidth, barHeight, fill), image.Pt(x, y))
		}
	}

	if opts.Glow > 0 {
		canvas = imaging.Overlay(canvas, imaging.Blur(bars, opts.Glow), image.Pt(0, 0), 0.6)
	}
	canvas = imaging.Overlay(canvas, bars, image.Pt(0, 0), 1.0)
	canvas = imaging.Paste(canvas, imaging.New(plotWidth, 1, axis), image.Pt(opts.Padding, zeroY))
	return canvas
}

// WritePNG renders points and encodes the chart as PNG into w.
func WritePNG(w io.Writer, points []report.ChartPoint, opts Options) (e *xerr.Error) {
	img := Render(points, opts)
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return xerr.NewError(err, "encode chart PNG", len(points))
	}
	tl.Log(tl.Verbose1, palette.GreenDim, "Rendered chart PNG with %s bars", len(points))
	return nil
}
