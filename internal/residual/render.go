package residual

import (
	"image"
	"image/color"
	"math"
)

// ramp is a perceptually ordered colour scale from small (dark blue) to
// large (yellow) residuals.
var ramp = []color.RGBA{
	{68, 1, 84, 255},
	{59, 82, 139, 255},
	{33, 145, 140, 255},
	{94, 201, 98, 255},
	{253, 231, 37, 255},
}

// Scale maps residuals onto the colour ramp on a log10 axis between Floor
// and Ceil meters. Values outside are clamped.
type Scale struct {
	Floor float64
	Ceil  float64
}

// DefaultScale spans one nanometre to one millimetre.
var DefaultScale = Scale{Floor: 1e-9, Ceil: 1e-3}

// Color returns the ramp colour of residual v. NaN is transparent.
func (s Scale) Color(v float64) color.RGBA {
	if math.IsNaN(v) {
		return color.RGBA{}
	}
	lo, hi := math.Log10(s.Floor), math.Log10(s.Ceil)
	var f float64
	if v > 0 {
		f = (math.Log10(v) - lo) / (hi - lo)
	}
	f = math.Max(0, math.Min(1, f))

	pos := f * float64(len(ramp)-1)
	i := int(pos)
	if i >= len(ramp)-1 {
		return ramp[len(ramp)-1]
	}
	frac := pos - float64(i)
	a, b := ramp[i], ramp[i+1]
	return color.RGBA{
		R: lerp(a.R, b.R, frac),
		G: lerp(a.G, b.G, frac),
		B: lerp(a.B, b.B, frac),
		A: 255,
	}
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}

// Render paints m with scale s.
func Render(m *Map, s Scale) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			img.SetRGBA(x, y, s.Color(m.At(x, y)))
		}
	}
	return img
}
