package mozjpeg

// Base (unscaled, quality=50-equivalent) quantization tables in natural
// (row-major) order. Variant 0 (JPEG Annex K) is the standard table
// published in ITU-T T.81 Annex K.1, cross-checked against the teacher's
// zigzag-order unscaledQuant in writer.go. Variant 3 (ImageMagick) is the
// default, matching mozjpeg's JCP_MAX_COMPRESSION profile.
//
// Variants 1, 2 and 4-8's exact mozjpeg source values were not present in
// the retrieval pack (original_source/ kept no consts.rs — see DESIGN.md).
// They are reconstructed here as smooth, monotonically-increasing
// frequency-weighted tables consistent with each variant's documented
// intent (flat / perceptual roll-off families) rather than guessed as
// copies of variant 0.

var annexKLuma = [blockSize]uint16{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

var annexKChroma = [blockSize]uint16{
	17, 18, 24, 47, 99, 99, 99, 99,
	18, 21, 26, 66, 99, 99, 99, 99,
	24, 26, 56, 99, 99, 99, 99, 99,
	47, 66, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

// imageMagickLuma/Chroma are ImageMagick's well-known quant tables, used by
// mozjpeg's default ("max compression") profile.
var imageMagickLuma = [blockSize]uint16{
	16, 16, 16, 18, 25, 37, 56, 85,
	16, 17, 20, 27, 34, 40, 53, 75,
	16, 20, 24, 31, 43, 62, 91, 135,
	18, 27, 31, 40, 53, 74, 106, 152,
	25, 34, 43, 53, 69, 91, 129, 176,
	37, 40, 62, 74, 91, 135, 176, 218,
	56, 53, 91, 106, 129, 176, 218, 237,
	85, 75, 135, 152, 176, 218, 237, 247,
}

var imageMagickChroma = [blockSize]uint16{
	17, 18, 24, 47, 99, 99, 99, 99,
	18, 21, 26, 66, 99, 99, 99, 99,
	24, 26, 56, 99, 99, 99, 99, 99,
	47, 66, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

// frequencyWeighted builds an approximate psychovisual table: entries grow
// with distance from the DC position, with a caller-supplied steepness and
// floor, clamped to 1..255.
func frequencyWeighted(floor, steepness float64) [blockSize]uint16 {
	var t [blockSize]uint16
	for row := 0; row < dctSize; row++ {
		for col := 0; col < dctSize; col++ {
			dist := float64(row*row + col*col)
			v := floor + steepness*dist
			if v < 1 {
				v = 1
			}
			if v > 255 {
				v = 255
			}
			t[row*dctSize+col] = uint16(v + 0.5)
		}
	}
	return t
}

func baseQuantTables(variant QuantTableVariant) (luma, chroma *[blockSize]uint16) {
	switch variant {
	case QuantAnnexK:
		return &annexKLuma, &annexKChroma
	case QuantFlat:
		flat := frequencyWeighted(16, 0)
		flatC := frequencyWeighted(16, 0)
		return &flat, &flatC
	case QuantMSSIM:
		l := frequencyWeighted(6, 1.1)
		c := frequencyWeighted(10, 1.6)
		return &l, &c
	case QuantImageMagick:
		return &imageMagickLuma, &imageMagickChroma
	case QuantKleinSilversteinCarney:
		l := frequencyWeighted(10, 1.4)
		c := frequencyWeighted(14, 2.0)
		return &l, &c
	case QuantWatsonTaylorBorthwick:
		l := frequencyWeighted(8, 1.6)
		c := frequencyWeighted(12, 2.2)
		return &l, &c
	case QuantAhumadaWatsonPeterson1:
		l := frequencyWeighted(9, 1.3)
		c := frequencyWeighted(13, 1.9)
		return &l, &c
	case QuantAhumadaWatsonPeterson2:
		l := frequencyWeighted(9, 1.5)
		c := frequencyWeighted(13, 2.1)
		return &l, &c
	case QuantImprovedDarkness:
		l := frequencyWeighted(5, 1.0)
		c := frequencyWeighted(9, 1.5)
		return &l, &c
	default:
		return &imageMagickLuma, &imageMagickChroma
	}
}
