package mozjpeg

// BT.601 full-range fixed-point color conversion, 16 fractional bits.
// Coefficients and rounding bias follow spec.md §4.1 exactly so that output
// is deterministic and platform-independent.
const (
	ccBias   = 1 << 15
	ccCenter = 128<<16 + ccBias

	ccYR = 19595
	ccYG = 38470
	ccYB = 7471

	ccCbR = -11059
	ccCbG = -21709
	ccCbB = 32768

	ccCrR = 32768
	ccCrG = -27439
	ccCrB = -5329
)

func clamp8(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// rgbToYCbCr converts one RGB pixel to Y, Cb, Cr using BT.601 full-range
// fixed-point arithmetic with round-to-nearest via a pre-added bias.
func rgbToYCbCr(r, g, b uint8) (y, cb, cr uint8) {
	ri, gi, bi := int32(r), int32(g), int32(b)
	y32 := (ccYR*ri + ccYG*gi + ccYB*bi + ccBias) >> 16
	cb32 := (ccCbR*ri + ccCbG*gi + ccCbB*bi + ccCenter) >> 16
	cr32 := (ccCrR*ri + ccCrG*gi + ccCrB*bi + ccCenter) >> 16
	return clamp8(y32), clamp8(cb32), clamp8(cr32)
}

// convertRGBToYCbCr converts packed 8-bit RGB pixel data (row-major,
// 3 bytes/pixel) into full-resolution Y/Cb/Cr planes, then subsamples
// chroma per the requested mode. For Gray, only the Y plane is populated
// (via the standard luma weights) and Cb/Cr are left empty.
func convertRGBToYCbCr(rgb []byte, width, height int, subsampling Subsampling) (y, cb, cr componentPlane) {
	y = newComponentPlane(width, height)

	if subsampling == Gray {
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				off := (row*width + col) * 3
				yy, _, _ := rgbToYCbCr(rgb[off], rgb[off+1], rgb[off+2])
				y.set(col, row, yy)
			}
		}
		return y, componentPlane{}, componentPlane{}
	}

	fullCb := newComponentPlane(width, height)
	fullCr := newComponentPlane(width, height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			off := (row*width + col) * 3
			yy, cbv, crv := rgbToYCbCr(rgb[off], rgb[off+1], rgb[off+2])
			y.set(col, row, yy)
			fullCb.set(col, row, cbv)
			fullCr.set(col, row, crv)
		}
	}

	hFactor, vFactor := subsampling.hvFactors()
	cb = subsamplePlane(&fullCb, hFactor, vFactor)
	cr = subsamplePlane(&fullCr, hFactor, vFactor)
	return y, cb, cr
}

// convertGrayToY converts packed 8-bit grayscale samples into a Y plane
// directly (no color math: gray already is luma).
func convertGrayToY(gray []byte, width, height int) componentPlane {
	p := newComponentPlane(width, height)
	copy(p.pix, gray[:width*height])
	return p
}

// convertGrayFromRGB reduces packed RGB input straight to a Y plane,
// discarding the chroma rgbToYCbCr would otherwise compute, for callers
// that requested Gray subsampling on RGB input.
func convertGrayFromRGB(rgb []byte, width, height int) componentPlane {
	p := newComponentPlane(width, height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			off := (row*width + col) * 3
			yy, _, _ := rgbToYCbCr(rgb[off], rgb[off+1], rgb[off+2])
			p.set(col, row, yy)
		}
	}
	return p
}

// subsamplePlane box-averages a full-resolution chroma plane down by
// (hFactor, vFactor), rounding to nearest and edge-replicating at odd
// boundaries so that a partial group at the last row/column still averages
// correctly.
func subsamplePlane(full *componentPlane, hFactor, vFactor int) componentPlane {
	if hFactor == 1 && vFactor == 1 {
		out := newComponentPlane(full.width, full.height)
		copy(out.pix, full.pix)
		return out
	}
	outW := (full.width + hFactor - 1) / hFactor
	outH := (full.height + vFactor - 1) / vFactor
	out := newComponentPlane(outW, outH)
	count := int32(hFactor * vFactor)
	half := count / 2
	for row := 0; row < outH; row++ {
		for col := 0; col < outW; col++ {
			var sum int32
			for dy := 0; dy < vFactor; dy++ {
				for dx := 0; dx < hFactor; dx++ {
					sum += int32(full.at(col*hFactor+dx, row*vFactor+dy))
				}
			}
			out.set(col, row, uint8((sum+half)/count))
		}
	}
	return out
}
