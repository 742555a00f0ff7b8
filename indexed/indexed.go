/*
Package indexed reduces true color images to a small fixed palette and packs
the result into the bit planes used by legacy Windows icon records.

A Source is quantized into an Image holding one palette index and one
transparency flag per pixel. The palette always has capacity for 2, 16 or 256
colors and its first two entries are reserved for black and white as some
icon consumers treat the transparency mask as a color index rather than a
bitmask. Every transparent pixel is mapped to entry 0.

An Image is then packed into a Packed value: the XOR plane holds the palette
indices packed 1, 4 or 8 bits per pixel and the AND plane holds one
transparency bit per pixel. Both planes have their rows padded to a multiple
of four bytes and are stored bottom row first.
*/
package indexed

import (
	"errors"
	"image/color"
)

const (
	// TransparencyThreshold is the alpha value below which a pixel is
	// considered transparent
	TransparencyThreshold = 196

	// LossyThreshold is the largest squared RGB distance allowed between
	// a source color and the palette entry it was assigned to before the
	// reduction is reported as lossy
	LossyThreshold = 196

	black = 0
	white = 1
)

var (
	// ErrColors is returned when the requested palette size is not one of
	// 2, 16 or 256
	ErrColors = errors.New("indexed: number of colors must be 2, 16 or 256")

	errRows = errors.New("indexed: row data does not match image dimensions")
)

// Source is a decoded true color image. Each row holds Width pixels of
// either 3 (R, G, B) or 4 (R, G, B, A) bytes depending on HasAlpha. Rows are
// ordered top to bottom.
type Source struct {
	Width    int
	Height   int
	HasAlpha bool
	Rows     [][]byte
}

func (s *Source) bytesPerPixel() int {
	if s.HasAlpha {
		return 4
	}
	return 3
}

func (s *Source) validate() error {
	if len(s.Rows) != s.Height {
		return errRows
	}
	bpp := s.bytesPerPixel()
	for _, row := range s.Rows {
		if len(row) != s.Width*bpp {
			return errRows
		}
	}
	return nil
}

// Palette is an ordered list of opaque colors. Only the entries actually
// chosen by the quantizer are present, the encoder zero-fills the remainder
// up to the requested capacity.
type Palette []color.RGBA

// Image is the result of quantizing a Source.
type Image struct {
	Width  int
	Height int

	// Colors is the requested palette capacity, one of 2, 16 or 256
	Colors int
	// Bits is the number of bits per palette index, one of 1, 4 or 8
	Bits int

	Palette Palette
	// Distinct is the number of distinct source colors, all transparent
	// pixels counting as one
	Distinct int

	// Pix holds one palette index per pixel, rows top to bottom
	Pix []uint8
	// Mask holds one transparency flag per pixel, rows top to bottom
	Mask []bool
}

// ColorIndexAt returns the palette index of the pixel at x, y.
func (m *Image) ColorIndexAt(x, y int) uint8 {
	return m.Pix[y*m.Width+x]
}

// TransparentAt reports whether the pixel at x, y is transparent.
func (m *Image) TransparentAt(x, y int) bool {
	return m.Mask[y*m.Width+x]
}

// BitsFor returns the number of bits needed to store an index into a palette
// of the given size, or ErrColors if the size is unsupported.
func BitsFor(colors int) (int, error) {
	switch colors {
	case 2:
		return 1, nil
	case 16:
		return 4, nil
	case 256:
		return 8, nil
	}
	return 0, ErrColors
}
