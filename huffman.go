package mozjpeg

// nbits returns the "category" of value: the number of bits needed to
// represent abs(value) (0 has category 0). Matches mozjpeg's jpeg_nbits /
// the teacher's bitCount lookup, computed here with a shift loop.
func nbits(value int32) uint8 {
	v := value
	if v < 0 {
		v = -v
	}
	n := uint8(0)
	for v != 0 {
		v >>= 1
		n++
	}
	return n
}

// signedValueBits returns the nbits-wide two's-complement-minus-one magnitude
// encoding JPEG uses for signed coefficient/diff values (spec.md §4.7): for
// diff >= 0, the bits of diff; for diff < 0, the bits of diff-1 masked to
// nbits width (so the sign bit set to 0 still reads back as negative after
// decode's symmetric rule).
func signedValueBits(v int32, n uint8) uint32 {
	if n == 0 {
		return 0
	}
	if v < 0 {
		v = v - 1
	}
	return uint32(v) & ((1 << n) - 1)
}

// builtin baseline Huffman tables per JPEG Annex K.3, pinned from the
// teacher's theHuffmanSpec in writer.go.
var (
	builtinDCLumaBits = [16]byte{0, 1, 5, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0}
	builtinDCLumaVal  = []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

	builtinDCChromaBits = [16]byte{0, 3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0}
	builtinDCChromaVal  = []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

	builtinACLumaBits = [16]byte{0, 2, 1, 3, 3, 2, 4, 3, 5, 5, 4, 4, 0, 0, 1, 125}
	builtinACLumaVal  = []byte{
		0x01, 0x02, 0x03, 0x00, 0x04, 0x11, 0x05, 0x12,
		0x21, 0x31, 0x41, 0x06, 0x13, 0x51, 0x61, 0x07,
		0x22, 0x71, 0x14, 0x32, 0x81, 0x91, 0xa1, 0x08,
		0x23, 0x42, 0xb1, 0xc1, 0x15, 0x52, 0xd1, 0xf0,
		0x24, 0x33, 0x62, 0x72, 0x82, 0x09, 0x0a, 0x16,
		0x17, 0x18, 0x19, 0x1a, 0x25, 0x26, 0x27, 0x28,
		0x29, 0x2a, 0x34, 0x35, 0x36, 0x37, 0x38, 0x39,
		0x3a, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48, 0x49,
		0x4a, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58, 0x59,
		0x5a, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68, 0x69,
		0x6a, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78, 0x79,
		0x7a, 0x83, 0x84, 0x85, 0x86, 0x87, 0x88, 0x89,
		0x8a, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97, 0x98,
		0x99, 0x9a, 0xa2, 0xa3, 0xa4, 0xa5, 0xa6, 0xa7,
		0xa8, 0xa9, 0xaa, 0xb2, 0xb3, 0xb4, 0xb5, 0xb6,
		0xb7, 0xb8, 0xb9, 0xba, 0xc2, 0xc3, 0xc4, 0xc5,
		0xc6, 0xc7, 0xc8, 0xc9, 0xca, 0xd2, 0xd3, 0xd4,
		0xd5, 0xd6, 0xd7, 0xd8, 0xd9, 0xda, 0xe1, 0xe2,
		0xe3, 0xe4, 0xe5, 0xe6, 0xe7, 0xe8, 0xe9, 0xea,
		0xf1, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6, 0xf7, 0xf8,
		0xf9, 0xfa,
	}

	builtinACChromaBits = [16]byte{0, 2, 1, 2, 4, 4, 3, 4, 7, 5, 4, 4, 0, 1, 2, 119}
	builtinACChromaVal  = []byte{
		0x00, 0x01, 0x02, 0x03, 0x11, 0x04, 0x05, 0x21,
		0x31, 0x06, 0x12, 0x41, 0x51, 0x07, 0x61, 0x71,
		0x13, 0x22, 0x32, 0x81, 0x08, 0x14, 0x42, 0x91,
		0xa1, 0xb1, 0xc1, 0x09, 0x23, 0x33, 0x52, 0xf0,
		0x15, 0x62, 0x72, 0xd1, 0x0a, 0x16, 0x24, 0x34,
		0xe1, 0x25, 0xf1, 0x17, 0x18, 0x19, 0x1a, 0x26,
		0x27, 0x28, 0x29, 0x2a, 0x35, 0x36, 0x37, 0x38,
		0x39, 0x3a, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48,
		0x49, 0x4a, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58,
		0x59, 0x5a, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68,
		0x69, 0x6a, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78,
		0x79, 0x7a, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87,
		0x88, 0x89, 0x8a, 0x92, 0x93, 0x94, 0x95, 0x96,
		0x97, 0x98, 0x99, 0x9a, 0xa2, 0xa3, 0xa4, 0xa5,
		0xa6, 0xa7, 0xa8, 0xa9, 0xaa, 0xb2, 0xb3, 0xb4,
		0xb5, 0xb6, 0xb7, 0xb8, 0xb9, 0xba, 0xc2, 0xc3,
		0xc4, 0xc5, 0xc6, 0xc7, 0xc8, 0xc9, 0xca, 0xd2,
		0xd3, 0xd4, 0xd5, 0xd6, 0xd7, 0xd8, 0xd9, 0xda,
		0xe2, 0xe3, 0xe4, 0xe5, 0xe6, 0xe7, 0xe8, 0xe9,
		0xea, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6, 0xf7, 0xf8,
		0xf9, 0xfa,
	}
)

func builtinDCLumaTable() HuffTable   { return HuffTable{Bits: builtinDCLumaBits, HuffVal: builtinDCLumaVal} }
func builtinDCChromaTable() HuffTable { return HuffTable{Bits: builtinDCChromaBits, HuffVal: builtinDCChromaVal} }
func builtinACLumaTable() HuffTable   { return HuffTable{Bits: builtinACLumaBits, HuffVal: builtinACLumaVal} }
func builtinACChromaTable() HuffTable { return HuffTable{Bits: builtinACChromaBits, HuffVal: builtinACChromaVal} }

// deriveTable materializes a HuffTable into a 256-entry (code, length) LUT
// (spec.md §4.6's DerivedTable::from). Codes are assigned in canonical
// order: starting code 0, incrementing after each symbol, left-shifting
// after each length increase.
func deriveTable(h *HuffTable) (*DerivedTable, error) {
	d := &DerivedTable{}
	code := uint32(0)
	k := 0
	for length := 1; length <= 16; length++ {
		count := h.Bits[length-1]
		for i := byte(0); i < count; i++ {
			if k >= len(h.HuffVal) {
				return nil, newErr(KindInvalidHuffmanTable, "huffval shorter than bits declares")
			}
			sym := h.HuffVal[k]
			d.entries[sym] = derivedEntry{code: code, length: uint8(length)}
			code++
			k++
		}
		code <<= 1
	}
	if code >= 1<<17 {
		return nil, newErr(KindHuffmanCodeLengthOverflow, "canonical code overflowed 16 bits")
	}
	return d, nil
}

// histogram counts symbol frequencies for one (DC/AC x luma/chroma) table.
// Index 256 is reserved as the Annex K.3 sentinel.
type histogram [257]uint32

func (h *histogram) add(symbol byte) {
	h[symbol]++
}

// buildOptimalHuffTable derives a canonical Huffman table from a symbol
// histogram following JPEG Annex K.3 (the classic libjpeg jpeg_gen_optimal_table
// procedure): repeatedly merge the two least-frequent active nodes, tracking
// each merge in a codesize/others sibling-chain so every symbol's final code
// length is the number of merges applied above it, then cap any length over
// 16 bits by the standard redistribution procedure and assign canonical
// codes in (length, symbol) order.
func buildOptimalHuffTable(freq *histogram) (*HuffTable, error) {
	var f [257]int64
	anyNonzero := false
	for i := 0; i < 256; i++ {
		f[i] = int64(freq[i])
		if f[i] > 0 {
			anyNonzero = true
		}
	}
	if !anyNonzero {
		return nil, newErr(KindInvalidHuffmanTable, "histogram is empty")
	}
	// Sentinel: guarantees at least two active nodes exist and reserves one
	// code point so no real symbol's code is all 1-bits (Annex K.3).
	f[256] = 1

	var codesize [257]int
	var others [257]int
	for i := range others {
		others[i] = -1
	}

	for {
		// c1 = index of smallest nonzero frequency.
		c1 := -1
		var v1 int64 = 1 << 62
		for i := 0; i <= 256; i++ {
			if f[i] > 0 && f[i] <= v1 {
				v1, c1 = f[i], i
			}
		}
		// c2 = index of next-smallest nonzero frequency, excluding c1.
		c2 := -1
		var v2 int64 = 1 << 62
		for i := 0; i <= 256; i++ {
			if i != c1 && f[i] > 0 && f[i] <= v2 {
				v2, c2 = f[i], i
			}
		}
		if c2 < 0 {
			break
		}

		f[c1] += f[c2]
		f[c2] = 0

		codesize[c1]++
		for others[c1] >= 0 {
			c1 = others[c1]
			codesize[c1]++
		}
		others[c1] = c2

		codesize[c2]++
		for others[c2] >= 0 {
			c2 = others[c2]
			codesize[c2]++
		}
	}

	var bitsCount [33]int
	for i := 0; i <= 256; i++ {
		if codesize[i] > 0 {
			bitsCount[codesize[i]]++
		}
	}

	// Limit code length to 16 bits.
	for i := 32; i > 16; i-- {
		for bitsCount[i] > 0 {
			j := i - 2
			for bitsCount[j] == 0 {
				j--
			}
			bitsCount[i] -= 2
			bitsCount[i-1]++
			bitsCount[j+1] += 2
			bitsCount[j]--
		}
	}
	// Remove the sentinel's slot from the longest nonempty length bucket.
	i := 16
	for bitsCount[i] == 0 {
		i--
	}
	bitsCount[i]--

	var table HuffTable
	for i := 1; i <= 16; i++ {
		table.Bits[i-1] = byte(bitsCount[i])
	}

	// Order symbols by their pre-limiting code size; lengths over 16 were
	// folded into the Bits counts above, so those symbols take the last codes.
	for length := 1; length <= 32; length++ {
		for sym := 0; sym <= 255; sym++ {
			if codesize[sym] == length {
				table.HuffVal = append(table.HuffVal, byte(sym))
			}
		}
	}
	if len(table.HuffVal) > 256 {
		return nil, newErr(KindHuffmanCodeLengthOverflow, "too many symbols for canonical table")
	}
	return &table, nil
}
