package png2ico

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"

	"github.com/bodgit/png2ico/ico"
	"github.com/bodgit/png2ico/indexed"
)

// Quantize reduces m to an indexed image using the configured palette size
// and strategy. The returned bool is set if the reduction is noticeably lossy.
func (c *Converter) Quantize(m image.Image) (*indexed.Image, bool, error) {
	src, err := NewSource(m)
	if err != nil {
		return nil, false, err
	}
	return c.quantizer.Quantize(src, c.colors)
}

// Reductions above this many distinct colors multiplied by palette entries
// take a noticeable amount of time
const slowReduction = 262144

// Input is a source image file and the palette size to reduce it to. A zero
// Colors uses the palette size of the Converter.
type Input struct {
	File   string
	Colors int
}

// Files returns an Input for each file using the default palette size.
func Files(files ...string) []Input {
	inputs := make([]Input, len(files))
	for i, file := range files {
		inputs[i] = Input{File: file}
	}
	return inputs
}

func (c *Converter) quantizeFile(input Input) (*indexed.Image, error) {
	colors := c.colors
	if input.Colors != 0 {
		if _, err := indexed.BitsFor(input.Colors); err != nil {
			return nil, err
		}
		colors = input.Colors
	}

	file := input.File
	src, err := loadSource(file)
	if err != nil {
		return nil, err
	}
	c.debugf("Decoded \"%s\", %dx%d\n", file, src.Width, src.Height)

	if c.verbose {
		if n := src.Distinct(); n*colors > slowReduction {
			c.debugf("Reducing %d colors in \"%s\" to %d, please be patient\n", n, file, colors)
		}
	}

	m, lossy, err := c.quantizer.Quantize(src, colors)
	if err != nil {
		return nil, err
	}
	c.debugf("Reduced %d colors in \"%s\" to %d palette entries\n", m.Distinct, file, len(m.Palette))

	if lossy {
		c.logger.Printf("Warning! Color reduction of \"%s\" may not be optimal, if the result is not satisfactory reduce the number of colors before converting\n", file)
	}

	return m, nil
}

// Images decodes and quantizes each input in turn. Any failure stops
// processing and the returned error names the offending file.
func (c *Converter) Images(inputs ...Input) ([]*indexed.Image, error) {
	switch {
	case len(inputs) == 0:
		return nil, ico.ErrNoImages
	case len(inputs) > ico.MaxImages:
		return nil, ico.ErrTooManyImages
	}

	images := make([]*indexed.Image, 0, len(inputs))
	for _, input := range inputs {
		m, err := c.quantizeFile(input)
		if err != nil {
			// Errors from opening the file already carry the path
			var pe *fs.PathError
			if errors.As(err, &pe) {
				return nil, err
			}
			return nil, fmt.Errorf("%s: %w", input.File, err)
		}
		images = append(images, m)
	}

	return images, nil
}

// Write converts the inputs and writes the resulting icon to w.
func (c *Converter) Write(w io.Writer, inputs ...Input) error {
	images, err := c.Images(inputs...)
	if err != nil {
		return err
	}
	return ico.Encode(w, images...)
}

// Convert converts the inputs and writes the resulting icon to the file
// output. Nothing is created unless every input converts successfully and a
// partially written file is removed.
func (c *Converter) Convert(output string, inputs ...Input) error {
	images, err := c.Images(inputs...)
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}

	if err := ico.Encode(f, images...); err != nil {
		f.Close()
		os.Remove(output)
		return fmt.Errorf("%s: %w", output, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(output)
		return err
	}

	c.debugf("Wrote %d images to \"%s\"\n", len(images), output)

	return nil
}
