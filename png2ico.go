/*
Package png2ico is a library for converting true color images into a single
Windows icon file containing one palette based image per source image.
*/
package png2ico

import (
	"io"
	"log"

	"github.com/bodgit/png2ico/indexed"
)

// DefaultColors is the palette size used unless overridden with Colors.
const DefaultColors = 256

// Converter reduces source images to indexed images and writes them as an
// icon file.
type Converter struct {
	logger    *log.Logger
	colors    int
	quantizer indexed.Quantizer
	verbose   bool
}

// Option configures a Converter.
type Option func(*Converter) error

// Colors sets the palette size for every image, it must be one of 2, 16 or
// 256.
func Colors(n int) Option {
	return func(c *Converter) error {
		if _, err := indexed.BitsFor(n); err != nil {
			return err
		}
		c.colors = n
		return nil
	}
}

// Strategy sets the algorithm used to choose the palette.
func Strategy(q indexed.Quantizer) Option {
	return func(c *Converter) error {
		c.quantizer = q
		return nil
	}
}

// Verbose enables logging of progress information in addition to warnings.
func Verbose() Option {
	return func(c *Converter) error {
		c.verbose = true
		return nil
	}
}

// New returns a Converter that logs to logger. A nil logger discards
// everything.
func New(logger *log.Logger, options ...Option) (*Converter, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	c := &Converter{
		logger:    logger,
		colors:    DefaultColors,
		quantizer: indexed.FarthestPoint{},
	}

	for _, o := range options {
		if err := o(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Converter) debugf(format string, v ...interface{}) {
	if c.verbose {
		c.logger.Printf(format, v...)
	}
}
