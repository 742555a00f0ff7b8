package ico

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/bodgit/png2ico/indexed"
)

var (
	errBadPalette = errors.New("ico: palette does not match number of colors")
	errBadPixels  = errors.New("ico: pixel data does not match image dimensions")
)

type encoder struct {
	w      io.Writer
	images []*indexed.Image
	packed []*indexed.Packed
}

// ResourceSize returns the number of bytes used by the resource data of m,
// which is the BITMAPINFOHEADER, the full palette and both bit planes.
func ResourceSize(m *indexed.Image) int {
	return infoHeaderSize + m.Colors*paletteEntry + m.PlaneSize()
}

func checkImage(m *indexed.Image) error {
	if m.Width < 1 || m.Width > maxDimension || m.Width&7 != 0 || m.Height < 1 || m.Height > maxDimension {
		return ErrDimensions
	}
	bits, err := indexed.BitsFor(m.Colors)
	if err != nil {
		return err
	}
	if bits != m.Bits || len(m.Palette) > m.Colors {
		return errBadPalette
	}
	if len(m.Pix) != m.Width*m.Height || len(m.Mask) != len(m.Pix) {
		return errBadPixels
	}
	return nil
}

func (e *encoder) writeDirectory() error {
	dir := iconDir{
		Type:  iconType,
		Count: uint16(len(e.images)),
	}
	if err := binary.Write(e.w, binary.LittleEndian, &dir); err != nil {
		return err
	}

	offset := dirHeaderSize + dirEntrySize*len(e.images)
	for _, m := range e.images {
		size := ResourceSize(m)
		entry := iconDirEntry{
			Width:       uint8(m.Width),
			Height:      uint8(m.Height),
			ColorCount:  uint8(m.Colors & 0xff),
			BytesInRes:  uint32(size),
			ImageOffset: uint32(offset),
		}
		if err := binary.Write(e.w, binary.LittleEndian, &entry); err != nil {
			return err
		}
		offset += size
	}

	return nil
}

func (e *encoder) writeImage(m *indexed.Image, p *indexed.Packed) error {
	header := bitmapInfoHeader{
		Size:      infoHeaderSize,
		Width:     int32(m.Width),
		Height:    int32(m.Height << 1), // Both planes are counted
		Planes:    1,
		BitCount:  uint16(m.Bits),
		SizeImage: uint32(m.PlaneSize()),
		ClrUsed:   0, // Some consumers break if this is set to the real number of colors
	}
	if err := binary.Write(e.w, binary.LittleEndian, &header); err != nil {
		return err
	}

	// Unused entries are left as zero
	palette := make([]byte, m.Colors*paletteEntry)
	for i, c := range m.Palette {
		palette[i*paletteEntry+0] = c.B
		palette[i*paletteEntry+1] = c.G
		palette[i*paletteEntry+2] = c.R
	}
	if _, err := e.w.Write(palette); err != nil {
		return err
	}

	for _, row := range p.XOR {
		if _, err := e.w.Write(row); err != nil {
			return err
		}
	}

	for _, row := range p.AND {
		if _, err := e.w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func (e *encoder) encode() error {
	if err := e.writeDirectory(); err != nil {
		return err
	}

	for i, m := range e.images {
		if err := e.writeImage(m, e.packed[i]); err != nil {
			return err
		}
	}

	return nil
}

// Encode writes the images to w as a single icon file, in the order given.
// Every image is validated and packed before anything is written.
func Encode(w io.Writer, images ...*indexed.Image) error {
	switch {
	case len(images) == 0:
		return ErrNoImages
	case len(images) > MaxImages:
		return ErrTooManyImages
	}

	bw := bufio.NewWriter(w)
	e := encoder{
		w:      bw,
		images: images,
		packed: make([]*indexed.Packed, len(images)),
	}

	for i, m := range images {
		if err := checkImage(m); err != nil {
			return err
		}
		e.packed[i] = indexed.Pack(m)
	}

	if err := e.encode(); err != nil {
		return err
	}

	return bw.Flush()
}
