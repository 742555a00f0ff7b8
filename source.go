package png2ico

import (
	"bufio"
	"bytes"
	"errors"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"

	"github.com/bodgit/png2ico/indexed"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

const maxDimension = 255

const (
	pngHeader = "\x89PNG\r\n\x1a\n"

	// Offset of the color type within the IHDR chunk, after the signature,
	// chunk length, chunk type, width, height and bit depth
	pngColorType = len(pngHeader) + 4 + 4 + 4 + 4 + 1

	pngColorMask = 2
)

var (
	// ErrWidth is returned for images whose width is not a multiple of 8 or
	// is greater than 255 pixels
	ErrWidth = errors.New("png2ico: width must be a multiple of 8 and less than 256")

	// ErrHeight is returned for images taller than 255 pixels
	ErrHeight = errors.New("png2ico: height must be less than 256")

	// ErrGrayscale is returned for images without any color channels
	ErrGrayscale = errors.New("png2ico: grayscale image not supported")

	// ErrEmpty is returned for images with no pixels
	ErrEmpty = errors.New("png2ico: image is empty")
)

// NewSource checks m can be stored in an icon and returns its pixels as an
// indexed.Source. Palette based images are expanded to true color.
func NewSource(m image.Image) (*indexed.Source, error) {
	b := m.Bounds()
	switch {
	case b.Empty():
		return nil, ErrEmpty
	case b.Dx()&7 != 0 || b.Dx() > maxDimension:
		return nil, ErrWidth
	case b.Dy() > maxDimension:
		return nil, ErrHeight
	}

	switch m.(type) {
	case *image.Gray, *image.Gray16, *image.Alpha, *image.Alpha16:
		return nil, ErrGrayscale
	}

	// An opaque image has no transparent pixels so behaves exactly as if
	// there was no alpha channel
	hasAlpha := true
	if o, ok := m.(interface{ Opaque() bool }); ok && o.Opaque() {
		hasAlpha = false
	}

	bpp := 3
	if hasAlpha {
		bpp = 4
	}

	src := &indexed.Source{
		Width:    b.Dx(),
		Height:   b.Dy(),
		HasAlpha: hasAlpha,
		Rows:     make([][]byte, b.Dy()),
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := make([]byte, 0, src.Width*bpp)
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
			row = append(row, c.R, c.G, c.B)
			if hasAlpha {
				row = append(row, c.A)
			}
		}
		src.Rows[y-b.Min.Y] = row
	}

	return src, nil
}

// grayPNG reports whether r holds a PNG without color channels. Gray+alpha
// PNGs decode to a color image so have to be caught from the IHDR.
func grayPNG(r *bufio.Reader) bool {
	b, err := r.Peek(pngColorType + 1)
	if err != nil || !bytes.HasPrefix(b, []byte(pngHeader)) {
		return false
	}
	return b[pngColorType]&pngColorMask == 0
}

func loadSource(file string) (*indexed.Source, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	if grayPNG(r) {
		return nil, ErrGrayscale
	}

	m, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}

	return NewSource(m)
}
