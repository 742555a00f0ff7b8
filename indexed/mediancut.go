package indexed

import (
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
)

// MedianCut fills the palette using a median cut over the distinct opaque
// colors of the source. Black and white stay reserved as entries 0 and 1 and
// every color is mapped to its nearest palette entry.
type MedianCut struct{}

// Quantize implements the Quantizer interface.
func (MedianCut) Quantize(src *Source, colors int) (*Image, bool, error) {
	c, err := newColorMap(src, colors)
	if err != nil {
		return nil, false, err
	}

	candidates := c.unassigned()
	free := c.colors - len(c.palette)

	if len(candidates) <= free {
		// Everything fits, no need to approximate
		for _, k := range candidates {
			r, g, b := k.rgb()
			c.index[k] = c.add(color.RGBA{r, g, b, 0xff})
		}
	} else {
		if free > 0 {
			c.medianCut(candidates, free)
		}
		c.assignNearest()
	}

	return c.image(src), c.lossy(), nil
}

func (c *colorMap) medianCut(candidates []key, free int) {
	// One pixel per distinct color
	m := image.NewNRGBA(image.Rect(0, 0, len(candidates), 1))
	for i, k := range candidates {
		r, g, b := k.rgb()
		m.SetNRGBA(i, 0, color.NRGBA{r, g, b, 0xff})
	}

	q := quantize.MedianCutQuantizer{}
	for _, p := range q.Quantize(make(color.Palette, 0, free), m) {
		if c.full() {
			break
		}
		rgba := color.RGBAModel.Convert(p).(color.RGBA)
		rgba.A = 0xff
		c.add(rgba)
	}
}
