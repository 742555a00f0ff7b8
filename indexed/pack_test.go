package indexed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowLen(t *testing.T) {
	tables := []struct {
		width int
		bits  int
		xor   int
		and   int
	}{
		{8, 1, 4, 4},
		{8, 4, 4, 4},
		{8, 8, 8, 4},
		{16, 1, 4, 4},
		{16, 4, 8, 4},
		{16, 8, 16, 4},
		{24, 8, 24, 4},
		{40, 1, 8, 8},
		{248, 8, 248, 32},
		{3, 4, 4, 4},
	}

	for _, table := range tables {
		assert.Equal(t, table.xor, XORRowLen(table.width, table.bits))
		assert.Equal(t, table.and, ANDRowLen(table.width))
		assert.Zero(t, XORRowLen(table.width, table.bits)%4)
		assert.Zero(t, ANDRowLen(table.width)%4)
	}
}

func newTestImage(width, height, colors int, pix []uint8, mask []bool) *Image {
	bits, _ := BitsFor(colors)
	if mask == nil {
		mask = make([]bool, width*height)
	}
	return &Image{
		Width:   width,
		Height:  height,
		Colors:  colors,
		Bits:    bits,
		Palette: Palette{opaqueBlack, opaqueWhite},
		Pix:     pix,
		Mask:    mask,
	}
}

func TestPackOneBit(t *testing.T) {
	m := newTestImage(8, 2, 2, []uint8{
		1, 0, 1, 0, 1, 0, 1, 0,
		0, 0, 0, 0, 1, 1, 1, 1,
	}, nil)

	p := Pack(m)

	// Bottom row first
	assert.Equal(t, [][]byte{
		{0x0f, 0x00, 0x00, 0x00},
		{0xaa, 0x00, 0x00, 0x00},
	}, p.XOR)
	assert.Equal(t, [][]byte{
		{0x00, 0x00, 0x00, 0x00},
		{0x00, 0x00, 0x00, 0x00},
	}, p.AND)
	assert.Equal(t, 16, m.PlaneSize())
}

func TestPackFourBit(t *testing.T) {
	m := newTestImage(8, 1, 16, []uint8{0, 1, 2, 3, 4, 5, 6, 15}, nil)

	p := Pack(m)

	assert.Equal(t, [][]byte{{0x01, 0x23, 0x45, 0x6f}}, p.XOR)
}

func TestPackEightBit(t *testing.T) {
	m := newTestImage(8, 1, 256, []uint8{0, 1, 2, 3, 0x80, 0xfe, 0xff, 7}, nil)

	p := Pack(m)

	assert.Equal(t, [][]byte{{0x00, 0x01, 0x02, 0x03, 0x80, 0xfe, 0xff, 0x07}}, p.XOR)
}

func TestPackPartialByte(t *testing.T) {
	m := newTestImage(3, 1, 16, []uint8{1, 2, 3}, []bool{true, false, true})

	p := Pack(m)

	assert.Equal(t, [][]byte{{0x12, 0x30, 0x00, 0x00}}, p.XOR)
	assert.Equal(t, [][]byte{{0xa0, 0x00, 0x00, 0x00}}, p.AND)
}

func TestPackMask(t *testing.T) {
	mask := make([]bool, 16*2)
	mask[0] = true
	mask[9] = true
	for x := 16; x < 32; x++ {
		mask[x] = true
	}

	m := newTestImage(16, 2, 256, make([]uint8, 16*2), mask)

	p := Pack(m)

	assert.Equal(t, [][]byte{
		{0xff, 0xff, 0x00, 0x00},
		{0x80, 0x40, 0x00, 0x00},
	}, p.AND)
	for _, row := range p.XOR {
		assert.Len(t, row, 16)
	}
}
