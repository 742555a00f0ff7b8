package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"io"
)

var (
	errFormat      = errors.New("ico: not an icon file")
	errNotEnough   = errors.New("ico: not enough image data")
	errUnsupported = errors.New("ico: unsupported bitmap format")
	errBadIndex    = errors.New("ico: invalid palette index")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func dimension(b uint8) int {
	if b == 0 {
		return 256
	}
	return int(b)
}

type decoder struct {
	r io.Reader

	dir     iconDir
	entries []iconDirEntry
	images  []image.Image
}

func (d *decoder) readDirectory() error {
	if err := binary.Read(d.r, binary.LittleEndian, &d.dir); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errNotEnough
		}
		return err
	}
	if d.dir.Reserved != 0 || d.dir.Type != iconType || d.dir.Count == 0 {
		return errFormat
	}

	d.entries = make([]iconDirEntry, d.dir.Count)
	if err := binary.Read(d.r, binary.LittleEndian, d.entries); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errNotEnough
		}
		return err
	}

	return nil
}

func (d *decoder) decodeImage(b []byte) (image.Image, error) {
	r := bytes.NewReader(b)

	var header bitmapInfoHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, errNotEnough
	}
	if header.Size != infoHeaderSize || header.Compression != 0 || header.Width < 1 || header.Height < 2 {
		return nil, errUnsupported
	}

	bits := int(header.BitCount)
	switch bits {
	case 1, 4, 8:
	default:
		return nil, errUnsupported
	}

	width, height := int(header.Width), int(header.Height>>1)

	colors := int(header.ClrUsed)
	if colors == 0 || colors > 1<<uint(bits) {
		colors = 1 << uint(bits)
	}

	xorLen, andLen := (width*bits+7)>>3, (width+7)>>3
	xorLen, andLen = (xorLen+3)&^3, (andLen+3)&^3

	if colors*paletteEntry+(xorLen+andLen)*height > r.Len() {
		return nil, errNotEnough
	}

	tmp := make([]byte, colors*paletteEntry)
	if err := readFull(r, tmp); err != nil {
		return nil, errNotEnough
	}
	palette := make(color.Palette, colors)
	for i := range palette {
		p := tmp[i*paletteEntry:]
		palette[i] = color.NRGBA{p[2], p[1], p[0], 0xff}
	}

	xor := make([]byte, xorLen*height)
	if err := readFull(r, xor); err != nil {
		return nil, errNotEnough
	}
	and := make([]byte, andLen*height)
	if err := readFull(r, and); err != nil {
		return nil, errNotEnough
	}

	perByte := 8 / bits
	mask := byte(1)<<uint(bits) - 1

	m := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		// Rows are stored bottom up
		xorRow := xor[(height-1-y)*xorLen:]
		andRow := and[(height-1-y)*andLen:]
		for x := 0; x < width; x++ {
			if andRow[x>>3]&(0x80>>uint(x&7)) != 0 {
				m.SetNRGBA(x, y, color.NRGBA{})
				continue
			}
			shift := uint(bits * (perByte - 1 - x%perByte))
			i := int(xorRow[x/perByte] >> shift & mask)
			if i >= len(palette) {
				return nil, errBadIndex
			}
			m.Set(x, y, palette[i])
		}
	}

	return m, nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = r

	if err := d.readDirectory(); err != nil {
		return err
	}

	if configOnly {
		return nil
	}

	// Offsets are from the start of the file
	rest, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	start := dirHeaderSize + dirEntrySize*len(d.entries)
	b := make([]byte, start+len(rest))
	copy(b[start:], rest)

	for _, e := range d.entries {
		offset, size := int(e.ImageOffset), int(e.BytesInRes)
		if offset < start || offset+size > len(b) {
			return errNotEnough
		}
		m, err := d.decodeImage(b[offset : offset+size])
		if err != nil {
			return err
		}
		d.images = append(d.images, m)
	}

	return nil
}

// Decode reads an icon file from r and returns the first image as an
// image.Image. Transparent pixels have an alpha of zero.
func Decode(r io.Reader) (image.Image, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.images[0], nil
}

// DecodeAll reads an icon file from r and returns every image, in directory
// order.
func DecodeAll(r io.Reader) ([]image.Image, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.images, nil
}

// DecodeConfig returns the color model and dimensions of the first image in
// an icon file without decoding the entire file.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      dimension(d.entries[0].Width),
		Height:     dimension(d.entries[0].Height),
	}, nil
}

func init() {
	image.RegisterFormat("ico", "\x00\x00\x01\x00", Decode, DecodeConfig)
}
