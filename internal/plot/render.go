// Package plot renders logged track-and-balance measurements into chart
// images: a per-blade track deviation chart and a 1/rev polar chart.
package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"golang.org/x/image/font"

	"github.com/rotorlab/cadu-sim/internal/measure"
)

const (
	defaultWidth    = 900
	defaultHeight   = 600
	defaultFontSize = 14.0
	dpi             = 96.0

	topBorder    = 50
	leftBorder   = 70
	bottomBorder = 50
	rightBorder  = 40
)

// Config holds the chart rendering options.
type Config struct {
	Width    int
	Height   int
	FontPath string  // TTF file for labels; empty renders charts without text
	FontSize float64
}

// Renderer draws measurement charts. A renderer without a font draws the
// same geometry and skips the labels.
type Renderer struct {
	config  Config
	context *freetype.Context
}

func NewRenderer(config Config) (*Renderer, error) {
	if config.Width == 0 {
		config.Width = defaultWidth
	}
	if config.Height == 0 {
		config.Height = defaultHeight
	}
	if config.FontSize == 0 {
		config.FontSize = defaultFontSize
	}

	r := &Renderer{config: config}

	if config.FontPath != "" {
		fontBytes, err := os.ReadFile(config.FontPath)
		if err != nil {
			return nil, fmt.Errorf("reading font file: %w", err)
		}
		parsedFont, err := freetype.ParseFont(fontBytes)
		if err != nil {
			return nil, fmt.Errorf("parsing font: %w", err)
		}

		ctx := freetype.NewContext()
		ctx.SetDPI(dpi)
		ctx.SetFont(parsedFont)
		ctx.SetFontSize(config.FontSize)
		ctx.SetHinting(font.HintingFull)
		ctx.SetSrc(image.Black)
		r.context = ctx
	}

	return r, nil
}

// TrackChart draws per-blade track deviations as vertical bars around a zero
// axis, with the tolerance band marked as guidelines.
func (r *Renderer) TrackChart(rec *measure.Record, tolMM float64) (*image.RGBA, error) {
	if len(rec.Track) == 0 {
		return nil, fmt.Errorf("record %d has no track points", rec.ID)
	}

	img := r.blank()
	area := r.plotArea()

	// symmetric vertical scale covering data and tolerance band
	maxAbs := tolMM
	for _, tp := range rec.Track {
		if a := math.Abs(tp.DeviationMM); a > maxAbs {
			maxAbs = a
		}
	}
	maxAbs *= 1.2

	yFor := func(mm float64) int {
		frac := (maxAbs - mm) / (2 * maxAbs)
		return area.Min.Y + int(frac*float64(area.Dy()))
	}

	zero := yFor(0)
	r.hline(img, area.Min.X, area.Max.X, zero, color.RGBA{A: 0xff})
	band := color.RGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0xff}
	r.hline(img, area.Min.X, area.Max.X, yFor(tolMM), band)
	r.hline(img, area.Min.X, area.Max.X, yFor(-tolMM), band)

	slot := area.Dx() / len(rec.Track)
	barWidth := slot / 2

	for i, tp := range rec.Track {
		x := area.Min.X + i*slot + (slot-barWidth)/2
		y := yFor(tp.DeviationMM)

		top, bottom := y, zero
		if top > bottom {
			top, bottom = bottom, top
		}
		r.fillRect(img, image.Rect(x, top, x+barWidth, bottom), colorForBlade(tp.Blade, i, len(rec.Track)))

		r.label(img, x, area.Max.Y+20, tp.Blade)
		r.label(img, x, top-6, humanize.Ftoa(tp.DeviationMM))
	}

	r.label(img, area.Min.X, topBorder-20,
		fmt.Sprintf("TRACK mm  %s %s/%s  REC %d", rec.TailNumber, rec.FlightPlan, rec.TestState, rec.ID))
	r.label(img, area.Min.X-60, yFor(tolMM)+4, "+"+humanize.Ftoa(tolMM))
	r.label(img, area.Min.X-60, yFor(-tolMM)+4, "-"+humanize.Ftoa(tolMM))

	return img, nil
}

// PolarChart draws the vibration readings of one record as vectors on a
// polar grid: angle is phase (0 deg at twelve o'clock, clockwise), radius is
// amplitude relative to the strongest reading.
func (r *Renderer) PolarChart(rec *measure.Record) (*image.RGBA, error) {
	if len(rec.Vibration) == 0 {
		return nil, fmt.Errorf("record %d has no vibration readings", rec.ID)
	}

	img := r.blank()
	area := r.plotArea()

	cx := area.Min.X + area.Dx()/2
	cy := area.Min.Y + area.Dy()/2
	radius := area.Dy() / 2
	if area.Dx()/2 < radius {
		radius = area.Dx() / 2
	}

	grid := color.RGBA{R: 0xc8, G: 0xc8, B: 0xc8, A: 0xff}
	for _, frac := range []float64{0.33, 0.66, 1.0} {
		r.circle(img, cx, cy, int(float64(radius)*frac), grid)
	}
	r.hline(img, cx-radius, cx+radius, cy, grid)
	r.vline(img, cx, cy-radius, cy+radius, grid)

	maxAmp := 0.0
	for _, v := range rec.Vibration {
		if v.AmplitudeIPS > maxAmp {
			maxAmp = v.AmplitudeIPS
		}
	}
	if maxAmp == 0 {
		maxAmp = 1
	}

	for i, v := range rec.Vibration {
		// phase 0 at twelve o'clock, increasing clockwise
		theta := (v.PhaseDeg - 90) * math.Pi / 180
		rr := float64(radius) * (v.AmplitudeIPS / maxAmp)
		x := cx + int(rr*math.Cos(theta))
		y := cy + int(rr*math.Sin(theta))

		c := colorForLocation(i, len(rec.Vibration))
		r.line(img, cx, cy, x, y, c)
		r.fillRect(img, image.Rect(x-3, y-3, x+3, y+3), c)
		r.label(img, x+6, y-6,
			fmt.Sprintf("%s %s@%s", v.Location, humanize.Ftoa(v.AmplitudeIPS), humanize.Ftoa(v.PhaseDeg)))
	}

	r.label(img, area.Min.X, topBorder-20,
		fmt.Sprintf("1/REV ips  %s %s/%s  REC %d", rec.TailNumber, rec.FlightPlan, rec.TestState, rec.ID))

	return img, nil
}

func (r *Renderer) blank() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.config.Width, r.config.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

func (r *Renderer) plotArea() image.Rectangle {
	return image.Rect(leftBorder, topBorder, r.config.Width-rightBorder, r.config.Height-bottomBorder)
}

func (r *Renderer) label(img *image.RGBA, x, y int, text string) {
	if r.context == nil {
		return
	}
	r.context.SetClip(img.Bounds())
	r.context.SetDst(img)
	_, _ = r.context.DrawString(text, freetype.Pt(x, y))
}

func (r *Renderer) fillRect(img *image.RGBA, rect image.Rectangle, c color.Color) {
	draw.Draw(img, rect.Intersect(img.Bounds()), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func (r *Renderer) hline(img *image.RGBA, x0, x1, y int, c color.Color) {
	for x := x0; x <= x1; x++ {
		img.Set(x, y, c)
	}
}

func (r *Renderer) vline(img *image.RGBA, x, y0, y1 int, c color.Color) {
	for y := y0; y <= y1; y++ {
		img.Set(x, y, c)
	}
}

func (r *Renderer) line(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	steps := int(math.Max(math.Abs(float64(x1-x0)), math.Abs(float64(y1-y0))))
	if steps == 0 {
		img.Set(x0, y0, c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x0 + int(t*float64(x1-x0))
		y := y0 + int(t*float64(y1-y0))
		img.Set(x, y, c)
	}
}

func (r *Renderer) circle(img *image.RGBA, cx, cy, radius int, c color.Color) {
	steps := 8 * radius
	if steps < 64 {
		steps = 64
	}
	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		img.Set(cx+int(float64(radius)*math.Cos(theta)), cy+int(float64(radius)*math.Sin(theta)), c)
	}
}
