/*
Package ico implements a Windows icon encoder and decoder for palette based
images.

The file starts with a 6 byte directory header followed by a 16 byte directory
entry for each image. Each entry records the dimensions of the image, the size
of its resource data and the offset of that data from the start of the file.

The resource data for each image is a 40 byte BITMAPINFOHEADER, a palette of
2, 16 or 256 colors stored as blue, green, red and a zero byte, then the XOR
plane holding the palette indices and finally the AND plane holding a one bit
per pixel transparency mask. Both planes are stored bottom row first with each
row padded to a multiple of four bytes. The height in the BITMAPINFOHEADER
counts both planes so is twice the real height of the image.

All values are little endian.
*/
package ico

import "errors"

// MaxImages is the most images a single icon file can hold.
const MaxImages = 1<<16 - 1

const (
	iconType       = 1
	maxDimension   = 255
	dirHeaderSize  = 6
	dirEntrySize   = 16
	infoHeaderSize = 40
	paletteEntry   = 4
)

var (
	// ErrTooManyImages is returned when there are more images than can be
	// counted by the directory header
	ErrTooManyImages = errors.New("ico: too many images")

	// ErrNoImages is returned when there is nothing to encode
	ErrNoImages = errors.New("ico: no images")

	// ErrDimensions is returned when an image is too big to be described by
	// a directory entry or its width is not a multiple of 8
	ErrDimensions = errors.New("ico: image width must be a multiple of 8 and less than 256, height must be less than 256")
)

type iconDir struct {
	Reserved uint16
	Type     uint16
	Count    uint16
}

type iconDirEntry struct {
	Width       uint8
	Height      uint8
	ColorCount  uint8
	Reserved    uint8
	Planes      uint16
	BitCount    uint16
	BytesInRes  uint32
	ImageOffset uint32
}

type bitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}
