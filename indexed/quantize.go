package indexed

import (
	"image/color"
	"sort"
)

// Quantizer reduces a Source to an Image with a palette of at most colors
// entries. The returned bool reports whether at least one opaque source color
// ended up further than LossyThreshold from its palette entry; it never
// causes an error.
type Quantizer interface {
	Quantize(src *Source, colors int) (*Image, bool, error)
}

// A key identifies a distinct source color. The low 24 bits hold the RGB
// value and bit 24 is set for opaque colors. Every transparent pixel shares
// the zero key.
type key uint32

const (
	opaqueBit   key = 1 << 24
	transparent key = 0
)

func rgbKey(r, g, b uint8) key {
	return opaqueBit | key(r)<<16 | key(g)<<8 | key(b)
}

func (k key) rgb() (uint8, uint8, uint8) {
	return uint8(k >> 16), uint8(k >> 8), uint8(k)
}

func (k key) opaque() bool {
	return k&opaqueBit != 0
}

func (s *Source) keyAt(row []byte, x int) key {
	if s.HasAlpha {
		p := row[x*4 : x*4+4]
		if p[3] < TransparencyThreshold {
			return transparent
		}
		return rgbKey(p[0], p[1], p[2])
	}
	p := row[x*3 : x*3+3]
	return rgbKey(p[0], p[1], p[2])
}

// Distinct returns the number of distinct colors in s, all transparent
// pixels counting as one. It returns 0 if the rows don't match the
// dimensions.
func (s *Source) Distinct() int {
	if s.validate() != nil {
		return 0
	}
	seen := make(map[key]struct{})
	for _, row := range s.Rows {
		for x := 0; x < s.Width; x++ {
			seen[s.keyAt(row, x)] = struct{}{}
		}
	}
	return len(seen)
}

// Squared euclidean distance in RGB space
func distance(k key, c color.RGBA) int {
	r, g, b := k.rgb()
	dr := int(r) - int(c.R)
	dg := int(g) - int(c.G)
	db := int(b) - int(c.B)
	return dr*dr + dg*dg + db*db
}

const unassigned = -1

// colorMap tracks the palette index assigned to each distinct color of a
// Source while the palette is being built.
type colorMap struct {
	colors  int
	keys    []key
	index   map[key]int
	palette Palette
}

func newColorMap(src *Source, colors int) (*colorMap, error) {
	if _, err := BitsFor(colors); err != nil {
		return nil, err
	}
	if err := src.validate(); err != nil {
		return nil, err
	}

	c := &colorMap{
		colors:  colors,
		index:   make(map[key]int),
		palette: make(Palette, 2, colors),
	}

	c.palette[black] = color.RGBA{0x00, 0x00, 0x00, 0xff}
	c.palette[white] = color.RGBA{0xff, 0xff, 0xff, 0xff}

	for _, row := range src.Rows {
		for x := 0; x < src.Width; x++ {
			k := src.keyAt(row, x)
			if _, ok := c.index[k]; ok {
				continue
			}
			switch k {
			case transparent, rgbKey(0x00, 0x00, 0x00):
				c.index[k] = black
			case rgbKey(0xff, 0xff, 0xff):
				c.index[k] = white
			default:
				c.index[k] = unassigned
			}
			c.keys = append(c.keys, k)
		}
	}

	// Iteration order decides ties so keep it independent of map ordering
	sort.Slice(c.keys, func(i, j int) bool { return c.keys[i] < c.keys[j] })

	return c, nil
}

func (c *colorMap) unassigned() []key {
	var keys []key
	for _, k := range c.keys {
		if c.index[k] == unassigned {
			keys = append(keys, k)
		}
	}
	return keys
}

func (c *colorMap) full() bool {
	return len(c.palette) >= c.colors
}

func (c *colorMap) add(rgba color.RGBA) int {
	c.palette = append(c.palette, rgba)
	return len(c.palette) - 1
}

// Map any remaining colors to the closest palette entry, lowest index wins
func (c *colorMap) assignNearest() {
	for _, k := range c.keys {
		if c.index[k] != unassigned {
			continue
		}
		best, bestDist := 0, -1
		for i, p := range c.palette {
			if d := distance(k, p); bestDist < 0 || d < bestDist {
				best, bestDist = i, d
			}
		}
		c.index[k] = best
	}
}

// Move every palette entry other than black and white to the mean of the
// distinct colors mapped to it. How many pixels use each color is ignored.
func (c *colorMap) refine() {
	type sum struct {
		r, g, b, n int
	}
	sums := make([]sum, len(c.palette))
	for _, k := range c.keys {
		i := c.index[k]
		if i <= white {
			continue
		}
		r, g, b := k.rgb()
		sums[i].r += int(r)
		sums[i].g += int(g)
		sums[i].b += int(b)
		sums[i].n++
	}
	for i := white + 1; i < len(c.palette); i++ {
		s := sums[i]
		if s.n == 0 {
			continue
		}
		// Round half up
		c.palette[i] = color.RGBA{
			uint8((2*s.r + s.n) / (2 * s.n)),
			uint8((2*s.g + s.n) / (2 * s.n)),
			uint8((2*s.b + s.n) / (2 * s.n)),
			0xff,
		}
	}
}

func (c *colorMap) lossy() bool {
	for _, k := range c.keys {
		if !k.opaque() {
			continue
		}
		if distance(k, c.palette[c.index[k]]) > LossyThreshold {
			return true
		}
	}
	return false
}

func (c *colorMap) image(src *Source) *Image {
	bits, _ := BitsFor(c.colors)
	m := &Image{
		Width:    src.Width,
		Height:   src.Height,
		Colors:   c.colors,
		Bits:     bits,
		Palette:  c.palette,
		Distinct: len(c.keys),
		Pix:      make([]uint8, src.Width*src.Height),
		Mask:     make([]bool, src.Width*src.Height),
	}
	for y, row := range src.Rows {
		for x := 0; x < src.Width; x++ {
			k := src.keyAt(row, x)
			m.Pix[y*src.Width+x] = uint8(c.index[k])
			m.Mask[y*src.Width+x] = !k.opaque()
		}
	}
	return m
}

// FarthestPoint builds the palette by repeatedly adding the source color
// whose distance to the closest existing palette entry is the largest, ties
// broken by the largest total distance to all entries. Colors that don't fit
// are mapped to their nearest entry and each chosen entry is then moved to the
// mean of the distinct colors mapped to it.
type FarthestPoint struct{}

// Quantize implements the Quantizer interface.
func (FarthestPoint) Quantize(src *Source, colors int) (*Image, bool, error) {
	c, err := newColorMap(src, colors)
	if err != nil {
		return nil, false, err
	}

	c.selectFarthest()
	c.assignNearest()
	c.refine()

	return c.image(src), c.lossy(), nil
}

func (c *colorMap) selectFarthest() {
	candidates := c.unassigned()
	if len(candidates) == 0 {
		return
	}

	// Running minimum and total distance of each candidate to the palette
	minDist := make([]int, len(candidates))
	sumDist := make([]int, len(candidates))
	for i, k := range candidates {
		minDist[i] = -1
		for _, p := range c.palette {
			updateDistance(minDist, sumDist, i, distance(k, p))
		}
	}

	for !c.full() {
		best := -1
		for i, k := range candidates {
			if c.index[k] != unassigned {
				continue
			}
			if best < 0 || minDist[i] > minDist[best] || (minDist[i] == minDist[best] && sumDist[i] > sumDist[best]) {
				best = i
			}
		}
		if best < 0 {
			break
		}

		k := candidates[best]
		r, g, b := k.rgb()
		p := color.RGBA{r, g, b, 0xff}
		c.index[k] = c.add(p)

		for i, k := range candidates {
			if c.index[k] == unassigned {
				updateDistance(minDist, sumDist, i, distance(k, p))
			}
		}
	}
}

func updateDistance(minDist, sumDist []int, i, d int) {
	if minDist[i] < 0 || d < minDist[i] {
		minDist[i] = d
	}
	sumDist[i] += d
}
