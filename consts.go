package mozjpeg

// blockSize is the number of samples/coefficients in an 8x8 DCT block.
const (
	dctSize  = 8
	blockSize = dctSize * dctSize
)

// zigzag maps natural (row-major) index -> zigzag scan position, per JPEG
// Annex F. unzig is its inverse: unzig[zig] gives the natural-order index of
// the coefficient at zigzag position zig.
var unzig = [blockSize]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// zigzag is the forward permutation: zigzag[natural] gives the zigzag scan
// position of the coefficient at natural-order index `natural`.
var zigzag = func() [blockSize]int {
	var z [blockSize]int
	for zig, nat := range unzig {
		z[nat] = zig
	}
	return z
}()

// JPEG marker codes used by this encoder (ITU-T T.81 Table B.1).
const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOF0 = 0xC0 // Baseline DCT
	markerSOF2 = 0xC2 // Progressive DCT, Huffman coding
	markerDHT  = 0xC4
	markerDQT  = 0xDB
	markerDRI  = 0xDD
	markerSOS  = 0xDA
	markerRST0 = 0xD0 // RST0..RST7 = markerRST0 + (0..7)
	markerAPP0 = 0xE0
	markerAPP1 = 0xE1
	markerAPP2 = 0xE2
)

// Subsampling selects the chroma subsampling mode.
type Subsampling int

const (
	// S444 samples chroma at full resolution.
	S444 Subsampling = iota
	// S422 halves chroma horizontally.
	S422
	// S420 halves chroma both horizontally and vertically.
	S420
	// S440 halves chroma vertically only.
	S440
	// Gray drops chroma entirely (single-component grayscale).
	Gray
)

// hvFactors returns the horizontal/vertical luma sampling factors implied by
// a subsampling mode, following JPEG's convention of expressing subsampling
// as how many luma blocks span one chroma block.
func (s Subsampling) hvFactors() (h, v int) {
	switch s {
	case S444, Gray:
		return 1, 1
	case S422:
		return 2, 1
	case S420:
		return 2, 2
	case S440:
		return 1, 2
	default:
		return 1, 1
	}
}

// String implements fmt.Stringer.
func (s Subsampling) String() string {
	switch s {
	case S444:
		return "4:4:4"
	case S422:
		return "4:2:2"
	case S420:
		return "4:2:0"
	case S440:
		return "4:4:0"
	case Gray:
		return "gray"
	default:
		return "unknown"
	}
}
