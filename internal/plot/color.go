package plot

import (
	"image/color"
	"math"
)

// bladeColors maps the Bell blade color labels to their paint colors.
// Unknown labels fall back to an HSV ramp so charts stay readable with any
// catalog.
var bladeColors = map[string]color.RGBA{
	"BLU": {R: 0x2b, G: 0x6c, B: 0xff, A: 0xff},
	"ORG": {R: 0xff, G: 0x8c, B: 0x1a, A: 0xff},
	"RED": {R: 0xe0, G: 0x2a, B: 0x2a, A: 0xff},
	"GRN": {R: 0x1f, G: 0xa0, B: 0x3c, A: 0xff},
}

func colorForBlade(label string, index, total int) color.RGBA {
	if c, ok := bladeColors[label]; ok {
		return c
	}
	if total <= 0 {
		total = 1
	}
	return hsv(float64(index)/float64(total)*360, 0.75, 0.85)
}

func colorForLocation(index, total int) color.RGBA {
	if total <= 0 {
		total = 1
	}
	return hsv(float64(index)/float64(total)*360, 0.9, 0.7)
}

// hsv converts HSV color space to RGBA. H: [0-360], S: [0-1], V: [0-1].
func hsv(h, s, v float64) color.RGBA {
	if s <= 0 {
		g := uint8(v * 255)
		return color.RGBA{R: g, G: g, B: g, A: 0xff}
	}

	h = math.Mod(h, 360) / 60
	i := math.Floor(h)
	f := h - i

	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 0xff}
}
