package indexed

// Packed holds the two bit planes of an icon image. Rows are stored bottom
// row first.
type Packed struct {
	// XOR holds the palette indices, Bits per pixel
	XOR [][]byte
	// AND holds the transparency mask, one bit per pixel
	AND [][]byte
}

func padRow(n int) int {
	return (n + 3) &^ 3
}

// XORRowLen returns the padded length in bytes of one row of palette indices.
func XORRowLen(width, bits int) int {
	return padRow((width*bits + 7) >> 3)
}

// ANDRowLen returns the padded length in bytes of one row of the transparency
// mask.
func ANDRowLen(width int) int {
	return padRow((width + 7) >> 3)
}

// PlaneSize returns the combined size in bytes of both packed planes.
func (m *Image) PlaneSize() int {
	return (XORRowLen(m.Width, m.Bits) + ANDRowLen(m.Width)) * m.Height
}

// Pack packs the palette indices and transparency mask of m.
func Pack(m *Image) *Packed {
	p := &Packed{
		XOR: make([][]byte, m.Height),
		AND: make([][]byte, m.Height),
	}

	perByte := 8 / m.Bits
	mask := uint8(1)<<uint(m.Bits) - 1

	for y := 0; y < m.Height; y++ {
		xor := make([]byte, XORRowLen(m.Width, m.Bits))
		and := make([]byte, ANDRowLen(m.Width))

		for x := 0; x < m.Width; x++ {
			// Most significant bits hold the leftmost pixel
			shift := uint(m.Bits * (perByte - 1 - x%perByte))
			xor[x/perByte] |= m.ColorIndexAt(x, y) & mask << shift

			if m.TransparentAt(x, y) {
				and[x>>3] |= 0x80 >> uint(x&7)
			}
		}

		p.XOR[m.Height-1-y] = xor
		p.AND[m.Height-1-y] = and
	}

	return p
}
