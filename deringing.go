package mozjpeg

// preprocessDeringing applies mozjpeg's overshoot deringing to a
// level-shifted 8x8 block before FDCT (spec.md §4.4). For every sample that
// is saturated (255, i.e. +127 after level shift) and has a 4-neighbor at or
// below 245 (+117 shifted) — an edge against a darker region — the sample
// is transiently pushed above its level-shifted maximum by
// min(dcQuant, 255), so that quantization rounding pulls the reconstructed
// value back toward 255 instead of ringing below it.
func preprocessDeringing(samples *block, dcQuant uint16) {
	const (
		satShifted      = 127  // 255 - 128
		edgeThreshShifted = 117 // 245 - 128
	)
	overshoot := int32(dcQuant)
	if overshoot > 255 {
		overshoot = 255
	}

	var out block
	copy(out[:], samples[:])

	for row := 0; row < dctSize; row++ {
		for col := 0; col < dctSize; col++ {
			idx := row*dctSize + col
			if samples[idx] != satShifted {
				continue
			}
			if hasDarkerNeighbor(samples, row, col, edgeThreshShifted) {
				out[idx] = samples[idx] + overshoot
			}
		}
	}

	copy(samples[:], out[:])
}

func hasDarkerNeighbor(samples *block, row, col int, threshold int32) bool {
	type delta struct{ dr, dc int }
	for _, d := range [4]delta{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		nr, nc := row+d.dr, col+d.dc
		if nr < 0 || nr >= dctSize || nc < 0 || nc >= dctSize {
			continue
		}
		if samples[nr*dctSize+nc] <= threshold {
			return true
		}
	}
	return false
}
