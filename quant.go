package mozjpeg

// Quality -> scale factor, matching mozjpeg's jpeg_quality_scaling exactly
// (spec.md §4.3, pinned from mozjpeg/src/quant.rs's quality_to_scale_factor).
func qualityToScaleFactor(quality int) int {
	if quality < 1 {
		quality = 1
	} else if quality > 100 {
		quality = 100
	}
	if quality < 50 {
		return 5000 / quality
	}
	return 200 - 2*quality
}

// scaleQuantEntry applies the scale factor to one base table entry, per
// spec.md §4.3: entry' = clamp(((base*scale + 50)/100), 1, forceBaseline ? 255 : 32767).
func scaleQuantEntry(base uint16, scale int, forceBaseline bool) uint16 {
	v := (int(base)*scale + 50) / 100
	if v < 1 {
		v = 1
	}
	max := 32767
	if forceBaseline {
		max = 255
	}
	if v > max {
		v = max
	}
	return uint16(v)
}

// buildQuantTable scales a base table for the given quality.
func buildQuantTable(base *[blockSize]uint16, quality int, forceBaseline bool) QuantTable {
	scale := qualityToScaleFactor(quality)
	var t QuantTable
	for i, b := range base {
		t[i] = scaleQuantEntry(b, scale, forceBaseline)
	}
	return t
}

// buildQuantTables constructs the (luma, chroma) scaled tables for a given
// quality, variant, and force_baseline setting.
func buildQuantTables(quality int, variant QuantTableVariant, forceBaseline bool) (luma, chroma QuantTable) {
	lumaBase, chromaBase := baseQuantTables(variant)
	return buildQuantTable(lumaBase, quality, forceBaseline), buildQuantTable(chromaBase, quality, forceBaseline)
}

// quantizeCoef rounds coef/q to the nearest integer, rounding half away from
// zero (spec.md §4.3).
func quantizeCoef(coef int32, q uint16) int32 {
	qi := int32(q)
	if coef >= 0 {
		return (coef + qi/2) / qi
	}
	return -((-coef + qi/2) / qi)
}

// dequantizeCoef reconstructs a dequantized coefficient.
func dequantizeCoef(qcoef int32, q uint16) int32 {
	return qcoef * int32(q)
}

// quantizeBlock divides each of 64 DCT coefficients (scaled x8, natural
// order) by its quantizer. The x8 DCT scale is first removed with a rounded
// shift (spec.md §4.3: c' = (c+4)>>3), then the result is divided by the
// quant table, itself in natural order.
func quantizeBlock(coeffs *block, table *QuantTable) block {
	var out block
	for i := 0; i < blockSize; i++ {
		c := descaleSigned(coeffs[i], 3)
		out[i] = quantizeCoef(c, table[i])
	}
	return out
}

// descaleSigned removes the DCT's x8 scale with a rounded arithmetic right
// shift that preserves symmetry for negative values (spec.md §4.3).
func descaleSigned(c int32, n uint) int32 {
	bias := int32(1) << (n - 1)
	if c >= 0 {
		return (c + bias) >> n
	}
	return -((-c + bias) >> n)
}
