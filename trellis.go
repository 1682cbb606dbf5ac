package mozjpeg

// trellisACTableFor returns the fixed Huffman code-length oracle the
// trellis DP costs candidate symbols against. The real two-pass optimized
// table
// isn't known yet at transform time (it's derived from the histogram this
// very coding produces), so the DP uses the built-in baseline tables'
// code lengths as a stand-in rate estimate, matching spec.md §4.5's "R is
// the Huffman code length that would be spent" closely enough to make
// zero-run decisions without circularity.
var trellisACLumaTable, trellisACChromaTable *DerivedTable

func init() {
	luma := builtinACLumaTable()
	chroma := builtinACChromaTable()
	t, err := deriveTable(&luma)
	if err != nil {
		panic("mozjpeg: builtin AC luma table failed to derive: " + err.Error())
	}
	trellisACLumaTable = t
	t, err = deriveTable(&chroma)
	if err != nil {
		panic("mozjpeg: builtin AC chroma table failed to derive: " + err.Error())
	}
	trellisACChromaTable = t
}

func trellisACTableFor(componentIndex int) *DerivedTable {
	if componentIndex == 0 {
		return trellisACLumaTable
	}
	return trellisACChromaTable
}

// runSizeCodeLength returns the bit cost of coding one AC symbol: the
// canonical Huffman code length for (run, size) plus the size magnitude
// bits, expanding runs over 15 zeros into the required number of ZRL (16
// zeroes) codes first.
func runSizeCodeLength(table *DerivedTable, run int, size uint8) int {
	bits := 0
	for run > 15 {
		_, zrlLen := table.code(0xF0)
		bits += int(zrlLen)
		run -= 16
	}
	sym := byte(run<<4) | size
	_, length := table.code(sym)
	return bits + int(length) + int(size)
}

// eobCodeLength returns the bit cost of the EOB0 symbol that terminates a
// block whose remaining coefficients are all zero.
func eobCodeLength(table *DerivedTable) int {
	_, length := table.code(0x00)
	return int(length)
}

const posInf = 1e308

// trellisQuantizeBlock re-quantizes one block's AC coefficients with a
// per-block Viterbi rate-distortion search (spec.md §4.5).
//
// At each AC position (zigzag order, 1..63) the DP considers two states:
// the normally-rounded magnitude and that magnitude minus one step toward
// zero — exactly the {current magnitude, current magnitude - 1} states
// spec.md §4.5 names. A position whose normal rounding is already zero has
// no decision to make. A position whose normal magnitude is exactly 1 has a
// real third option implicit in its "minus one" state: that state is zero,
// so choosing it extends the run of zeros feeding the next coded
// coefficient (or the block's terminating EOB) instead of spending a run/
// size symbol here. A position whose normal magnitude is 2 or more must
// still emit a symbol — lowering it to magnitude-1 never reaches zero — so
// it is never treated as run-extending; both of its candidate values are
// scored purely on their own distortion/rate tradeoff.
//
// The DP tracks, for every position that can end a run of zeros (either
// because it emits a nonzero symbol there, or because it's the implicit
// start, position 0), the minimum cost of an optimal coding of everything
// up to and including that position. A forward pass fills this in event by
// event; a final pass picks the best position to stop at and emit EOB, and
// a traceback recovers which positions were coded nonzero and at what
// magnitude.
//
// mozjpeg's own trellis lambda schedule lives in C source not present in
// the retrieval pack (see DESIGN.md). Here distortion is the squared error
// in unquantized coefficient units, rate is in bits, and lambdaScale is one
// value per call (trellisLambda derives it from quality alone); it does not
// vary with the quantizer step or the zigzag position.
func trellisQuantizeBlock(coeffsZZ *[blockSize]int32, quantZZ *[blockSize]uint16, lambdaScale float64) [blockSize]int32 {
	return trellisQuantizeBlockForComponent(coeffsZZ, quantZZ, lambdaScale, 0)
}

// trellisQuantizeBlockForComponent is trellisQuantizeBlock parameterized by
// which component's AC Huffman statistics the rate term should be costed
// against (luma vs chroma use different builtin tables).
func trellisQuantizeBlockForComponent(coeffsZZ *[blockSize]int32, quantZZ *[blockSize]uint16, lambdaScale float64, componentIndex int) [blockSize]int32 {
	var out [blockSize]int32
	out[0] = quantizeCoef(coeffsZZ[0], quantZZ[0])

	acTable := trellisACTableFor(componentIndex)
	const n = blockSize - 1 // AC positions, 1-indexed 1..n

	// distortion0[i] is the squared reconstruction error of position i
	// (1-based zigzag index) reading back as zero; zeroRunCost[i] is its
	// prefix sum, valid to use across any stretch of positions that are
	// all either truly zero or a "minus one reaches zero" choice.
	var distortion0 [n + 1]float64
	var zeroRunCost [n + 1]float64
	// mandatory[i]: true when position i's normal magnitude is >= 2, so it
	// can never be folded into a zero run — it must always be coded.
	var mandatory [n + 1]bool
	// candidates[i] holds the 1 or 2 quantized values the DP may choose at
	// position i (empty when the normal rounding is already zero); each
	// entry pairs a value with its own reconstruction distortion.
	type candidate struct {
		value      int32
		distortion float64
	}
	var candidates [n + 1][]candidate

	for i := 1; i <= n; i++ {
		q := float64(quantZZ[i])
		raw := float64(coeffsZZ[i])
		distortion0[i] = raw * raw
		zeroRunCost[i] = zeroRunCost[i-1] + distortion0[i]

		normal := quantizeCoef(coeffsZZ[i], quantZZ[i])
		if normal == 0 {
			continue
		}
		step := int32(1)
		if normal < 0 {
			step = -1
		}
		lo := normal - step
		dist := func(v int32) float64 {
			d := raw - float64(v)*q
			return d * d
		}
		if lo == 0 {
			candidates[i] = []candidate{{value: normal, distortion: dist(normal)}}
		} else {
			mandatory[i] = true
			candidates[i] = []candidate{
				{value: normal, distortion: dist(normal)},
				{value: lo, distortion: dist(lo)},
			}
		}
	}

	// best[j] is the minimal accumulated cost (distortion + lambda*rate) of
	// an optimal coding of positions 1..j in which j is either the implicit
	// start (j=0) or a position coded nonzero. Below, minJ is the earliest
	// j a run reaching position i may start from — it cannot cross a
	// mandatory position, since that position can never be folded into a
	// run and is always itself a best[] entry.
	best := make([]float64, n+1)
	from := make([]int, n+1)
	value := make([]int32, n+1)
	for j := range best {
		best[j] = posInf
	}
	best[0] = 0

	lastMandatory := 0
	for i := 1; i <= n; i++ {
		minJ := lastMandatory
		for _, cand := range candidates[i] {
			size := nbits(cand.value)
			chosenFrom, chosenCost := -1, posInf
			for j := minJ; j < i; j++ {
				if best[j] == posInf {
					continue
				}
				run := i - 1 - j
				rate := float64(runSizeCodeLength(acTable, run, size))
				cost := best[j] + (zeroRunCost[i-1] - zeroRunCost[j]) + lambdaScale*rate + cand.distortion
				if cost < chosenCost {
					chosenCost, chosenFrom = cost, j
				}
			}
			if chosenFrom >= 0 && chosenCost < best[i] {
				best[i], from[i], value[i] = chosenCost, chosenFrom, cand.value
			}
		}
		if mandatory[i] {
			lastMandatory = i
		}
	}

	// Pick where the block's last coded coefficient is (0 meaning no AC
	// coefficient survives), honoring the same mandatory-position floor,
	// then add the trailing run's distortion and, when a zero tail remains,
	// the terminal EOB's rate.
	eobRate := lambdaScale * float64(eobCodeLength(acTable))
	bestStop, bestTotal := -1, posInf
	for j := lastMandatory; j <= n; j++ {
		if best[j] == posInf {
			continue
		}
		total := best[j] + (zeroRunCost[n] - zeroRunCost[j])
		if j < n {
			total += eobRate
		}
		if total < bestTotal {
			bestTotal, bestStop = total, j
		}
	}

	for j := bestStop; j > 0; j = from[j] {
		out[j] = value[j]
	}
	return out
}

// trellisLambda derives a lambda scale from quality, consistent with
// mozjpeg's trellis being more aggressive (more willing to round toward
// zero) at higher quantizer step sizes.
func trellisLambda(quality int) float64 {
	scale := qualityToScaleFactor(quality)
	return 0.0008 * float64(scale) / 100.0
}
