package mozjpeg

import (
	"context"
	"time"
)

// TrellisOptions controls rate-distortion re-quantization (spec.md §4.5) of
// the AC coefficients. The DC coefficient is always quantized by plain
// rounding; DCEnabled does not change the output.
type TrellisOptions struct {
	Enabled   bool
	DCEnabled bool
}

// CustomMarker is a caller-supplied application marker segment, passed
// through verbatim after the standard JFIF/ICC/EXIF markers.
type CustomMarker struct {
	Code    byte
	Payload []byte
}

// Options configures one Encode call (spec.md §6).
type Options struct {
	Quality            int
	Subsampling        Subsampling
	Progressive        bool
	OptimizeHuffman    bool
	OptimizeScans      bool
	Trellis            TrellisOptions
	OvershootDeringing bool
	Smoothing          int
	RestartInterval    int
	QuantTableVariant  QuantTableVariant
	ForceBaseline      bool
	ExifData           []byte
	ICCProfile         []byte
	CustomMarkers      []CustomMarker

	MaxWidth          int
	MaxHeight         int
	MaxPixels         int
	MaxICCProfileSize int
	Deadline          time.Time
}

// DefaultOptions mirrors spec.md §6's documented defaults.
func DefaultOptions() *Options {
	return &Options{
		Quality:            75,
		Subsampling:        S420,
		Progressive:        true,
		OptimizeHuffman:    true,
		OptimizeScans:      false,
		OvershootDeringing: true,
		QuantTableVariant:  DefaultQuantTableVariant,
		MaxWidth:           1 << 16,
		MaxHeight:          1 << 16,
		MaxPixels:          1 << 28,
		MaxICCProfileSize:  16 << 20,
	}
}

func (o *Options) validate(width, height int) error {
	if width <= 0 || height <= 0 {
		return newErr(KindInvalidDimensions, "width and height must be positive, got %dx%d", width, height)
	}
	if o.MaxWidth > 0 && width > o.MaxWidth {
		return newErr(KindDimensionLimitExceeded, "width %d exceeds MaxWidth %d", width, o.MaxWidth)
	}
	if o.MaxHeight > 0 && height > o.MaxHeight {
		return newErr(KindDimensionLimitExceeded, "height %d exceeds MaxHeight %d", height, o.MaxHeight)
	}
	if o.MaxPixels > 0 && width*height > o.MaxPixels {
		return newErr(KindPixelCountExceeded, "%d pixels exceeds MaxPixels %d", width*height, o.MaxPixels)
	}
	if o.Quality < 1 || o.Quality > 100 {
		return newErr(KindInvalidQuality, "quality %d out of range [1,100]", o.Quality)
	}
	if o.QuantTableVariant < 0 || o.QuantTableVariant >= numQuantTableVariants {
		return newErr(KindInvalidQuantTableIndex, "quant table variant %d out of range", o.QuantTableVariant)
	}
	if o.RestartInterval < 0 || o.RestartInterval > 0xFFFF {
		return newErr(KindInvalidScanSpec, "restart interval %d out of range", o.RestartInterval)
	}
	if o.MaxICCProfileSize > 0 && len(o.ICCProfile) > o.MaxICCProfileSize {
		return newErr(KindIccProfileTooLarge, "icc profile %d bytes exceeds MaxICCProfileSize %d", len(o.ICCProfile), o.MaxICCProfileSize)
	}
	return nil
}

func (o *Options) checkDeadline() error {
	if !o.Deadline.IsZero() && time.Now().After(o.Deadline) {
		return newErr(KindTimedOut, "encode deadline exceeded")
	}
	return nil
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// encodeComponent is one color component's block grid plus the quantized,
// zigzag-ordered coefficients for every block (spec.md §4's QuantizedBlock).
type encodeComponent struct {
	id                     byte
	index                  int // 0-based position in the image's component list
	plane                  *componentPlane
	hSamp, vSamp           int
	quantClass             byte // 0 = luma table, 1 = chroma table
	blocksWide, blocksHigh int
	blocks                 [][blockSize]int32
}

func newEncodeComponent(id byte, index int, plane *componentPlane, hSamp, vSamp, mcuWide, mcuHigh int, quantClass byte) *encodeComponent {
	bw, bh := mcuWide*hSamp, mcuHigh*vSamp
	return &encodeComponent{
		id: id, index: index, plane: plane, hSamp: hSamp, vSamp: vSamp,
		quantClass: quantClass, blocksWide: bw, blocksHigh: bh,
		blocks: make([][blockSize]int32, bw*bh),
	}
}

func (c *encodeComponent) blockAt(bx, by int) *[blockSize]int32 {
	return &c.blocks[by*c.blocksWide+bx]
}

// sampleBlock reads one 8x8 sample block from a plane, replicating edge
// pixels for positions beyond the plane's actual extent (componentPlane.at
// already does the clamping).
func sampleBlock(p *componentPlane, bx, by int, out *[blockSize]uint8) {
	for row := 0; row < dctSize; row++ {
		for col := 0; col < dctSize; col++ {
			out[row*dctSize+col] = p.at(bx*dctSize+col, by*dctSize+row)
		}
	}
}

func toZigzagU16(t *QuantTable) [blockSize]uint16 {
	var z [blockSize]uint16
	for k := 0; k < blockSize; k++ {
		z[k] = t[unzig[k]]
	}
	return z
}

// transformComponent computes the quantized, zigzag-ordered coefficients
// for every block of one component (spec.md §3: the whole coefficient
// matrix is materialized once, up front, and progressive scans replay it).
func transformComponent(ctx context.Context, c *encodeComponent, quant *QuantTable, opts *Options) error {
	quantZZ := toZigzagU16(quant)
	lambda := trellisLambda(opts.Quality)
	for by := 0; by < c.blocksHigh; by++ {
		if by%8 == 0 {
			if err := ctx.Err(); err != nil {
				return wrapErr(KindCancelled, err, "cancelled during transform")
			}
			if err := opts.checkDeadline(); err != nil {
				return err
			}
		}
		for bx := 0; bx < c.blocksWide; bx++ {
			var raw [blockSize]uint8
			sampleBlock(c.plane, bx, by, &raw)
			var shifted block
			levelShift(&raw, &shifted)
			if opts.OvershootDeringing {
				preprocessDeringing(&shifted, quant[0])
			}
			var coeffs block
			forwardDCT8x8(&shifted, &coeffs)

			var rawZZ [blockSize]int32
			for k := 0; k < blockSize; k++ {
				rawZZ[k] = descaleSigned(coeffs[unzig[k]], 3)
			}

			var qZZ [blockSize]int32
			if opts.Trellis.Enabled {
				qZZ = trellisQuantizeBlockForComponent(&rawZZ, &quantZZ, lambda, c.index)
				if !opts.Trellis.DCEnabled {
					qZZ[0] = quantizeCoef(rawZZ[0], quantZZ[0])
				}
			} else {
				for k := 0; k < blockSize; k++ {
					qZZ[k] = quantizeCoef(rawZZ[k], quantZZ[k])
				}
			}
			*c.blockAt(bx, by) = qZZ
		}
	}
	return nil
}

// histogramSet is the four per-class symbol tables optimize_huffman derives
// from (DC-luma, DC-chroma, AC-luma, AC-chroma).
type histogramSet struct {
	dc [2]histogram
	ac [2]histogram
}

// huffmanSet is the four derived tables actually used for entropy coding.
type huffmanSet struct {
	dc        [2]*DerivedTable
	ac        [2]*DerivedTable
	dcRaw     [2]HuffTable
	acRaw     [2]HuffTable
}

func builtinHuffmanSet() (*huffmanSet, error) {
	dcLuma, dcChroma := builtinDCLumaTable(), builtinDCChromaTable()
	acLuma, acChroma := builtinACLumaTable(), builtinACChromaTable()
	hs := &huffmanSet{dcRaw: [2]HuffTable{dcLuma, dcChroma}, acRaw: [2]HuffTable{acLuma, acChroma}}
	for i := range hs.dcRaw {
		d, err := deriveTable(&hs.dcRaw[i])
		if err != nil {
			return nil, err
		}
		hs.dc[i] = d
		a, err := deriveTable(&hs.acRaw[i])
		if err != nil {
			return nil, err
		}
		hs.ac[i] = a
	}
	return hs, nil
}

func optimizedHuffmanSet(hist *histogramSet) (*huffmanSet, error) {
	hs := &huffmanSet{}
	for i := 0; i < 2; i++ {
		// A grayscale image codes no chroma symbols; its class-1 tables are
		// neither built nor written.
		if i == 1 && hist.dc[1] == (histogram{}) && hist.ac[1] == (histogram{}) {
			continue
		}
		dcTable, err := buildOptimalHuffTable(&hist.dc[i])
		if err != nil {
			return nil, err
		}
		acTable, err := buildOptimalHuffTable(&hist.ac[i])
		if err != nil {
			return nil, err
		}
		hs.dcRaw[i], hs.acRaw[i] = *dcTable, *acTable
		dd, err := deriveTable(&hs.dcRaw[i])
		if err != nil {
			return nil, err
		}
		ad, err := deriveTable(&hs.acRaw[i])
		if err != nil {
			return nil, err
		}
		hs.dc[i], hs.ac[i] = dd, ad
	}
	return hs, nil
}

// scanBlocks yields the blocks of scan in JPEG MCU order: interleaved
// across components for a multi-component scan, or simple raster order for
// a single-component (non-interleaved) scan, per the JPEG standard's scan
// component-interleaving rule.
func scanBlocks(scan ScanInfo, comps []*encodeComponent, yield func(comp *encodeComponent, bx, by int) error) error {
	if scan.ComponentCount > 1 {
		var scanComps []*encodeComponent
		for i := 0; i < scan.ComponentCount; i++ {
			scanComps = append(scanComps, comps[scan.ComponentIndex[i]])
		}
		maxH, maxV := 0, 0
		for _, c := range scanComps {
			if c.hSamp > maxH {
				maxH = c.hSamp
			}
			if c.vSamp > maxV {
				maxV = c.vSamp
			}
		}
		mcuWide := scanComps[0].blocksWide / scanComps[0].hSamp
		mcuHigh := scanComps[0].blocksHigh / scanComps[0].vSamp
		for my := 0; my < mcuHigh; my++ {
			for mx := 0; mx < mcuWide; mx++ {
				for _, c := range scanComps {
					for dy := 0; dy < c.vSamp; dy++ {
						for dx := 0; dx < c.hSamp; dx++ {
							if err := yield(c, mx*c.hSamp+dx, my*c.vSamp+dy); err != nil {
								return err
							}
						}
					}
				}
			}
		}
		return nil
	}
	// A non-interleaved scan covers only the component's own
	// ceil(width/8) x ceil(height/8) blocks, not the MCU padding.
	c := comps[scan.ComponentIndex[0]]
	bw, bh := ceilDiv(c.plane.width, dctSize), ceilDiv(c.plane.height, dctSize)
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			if err := yield(c, bx, by); err != nil {
				return err
			}
		}
	}
	return nil
}

// scanMCUCount returns how many MCUs (or, for non-interleaved scans,
// blocks) a scan spans, the unit the restart interval counts in.
func scanMCUCount(scan ScanInfo, comps []*encodeComponent) int {
	if scan.ComponentCount > 1 {
		c := comps[scan.ComponentIndex[0]]
		return (c.blocksWide / c.hSamp) * (c.blocksHigh / c.vSamp)
	}
	c := comps[scan.ComponentIndex[0]]
	return ceilDiv(c.plane.width, dctSize) * ceilDiv(c.plane.height, dctSize)
}

// collectHistograms runs a scan's entropy logic in counting mode (no bits
// written), including the EOB flushes and DC predictor resets writeScan
// makes at restart boundaries, accumulating into hist. Used by
// optimize_huffman's first pass.
func collectHistograms(scan ScanInfo, comps []*encodeComponent, hist *histogramSet, restartInterval int) {
	state := &entropyState{}
	eobCount := countTarget{hist: &hist.ac[comps[scan.ComponentIndex[0]].quantClass]}
	flush := func() {
		if scan.SpectralStart > 0 && !scan.isRefinement() {
			flushEOBRun(eobCount, state)
		}
		if scan.isRefinement() && scan.SpectralStart > 0 {
			flushEOBRunRefine(eobCount, discardRawSink{}, state)
		}
	}
	mcuIndex := 0
	first := scan.ComponentIndex[0]
	scanBlocks(scan, comps, func(c *encodeComponent, bx, by int) error {
		if scan.ComponentCount == 1 || (c.index == first && bx%c.hSamp == 0 && by%c.vSamp == 0) {
			if restartInterval > 0 && mcuIndex > 0 && mcuIndex%restartInterval == 0 {
				flush()
				state.reset()
			}
			mcuIndex++
		}
		zz := c.blockAt(bx, by)
		dcCount := countTarget{hist: &hist.dc[c.quantClass]}
		acCount := countTarget{hist: &hist.ac[c.quantClass]}
		encodeScanBlock(dcCount, acCount, discardRawSink{}, zz, scan, state, c.index)
		return nil
	})
	flush()
}

// encodeScanBlock dispatches one block to the right entropy routine for
// scan's kind (baseline combined, progressive DC-first/refine, AC-first/
// refine), per spec.md §4.7-4.8.
func encodeScanBlock(dcT, acT huffTarget, raw rawSink, zz *[blockSize]int32, scan ScanInfo, state *entropyState, comp int) {
	switch {
	case scan.SpectralStart == 0 && scan.SpectralEnd == 63:
		// Baseline: DC + full AC band together.
		diff := zz[0] - state.lastDC[comp]
		state.lastDC[comp] = zz[0]
		encodeDCSymbol(dcT, diff)
		encodeACBaseline(acT, zz)
	case scan.isDCScan() && !scan.isRefinement():
		encodeDCFirst(dcT, zz[0], uint(scan.ApproxLow), state, comp)
	case scan.isDCScan() && scan.isRefinement():
		encodeDCRefine(raw, zz[0], uint(scan.ApproxLow))
	case !scan.isRefinement():
		encodeACFirst(acT, zz, scan.SpectralStart, scan.SpectralEnd, uint(scan.ApproxLow), state)
	default:
		encodeACRefine(acT, raw, zz, scan.SpectralStart, scan.SpectralEnd, uint(scan.ApproxLow), state)
	}
}

// writeScan writes one full scan's SOS header, entropy-coded data
// (including restart markers) to w.
func writeScan(w *bitWriter, scan ScanInfo, comps []*encodeComponent, huff *huffmanSet, restartInterval int) {
	sosComps := make([]sosComponentSpec, scan.ComponentCount)
	for i := 0; i < scan.ComponentCount; i++ {
		c := comps[scan.ComponentIndex[i]]
		sosComps[i] = sosComponentSpec{id: c.id, dcTb: c.quantClass, acTb: c.quantClass}
	}
	writeSOSHeader(w, sosComps, scan)

	state := &entropyState{}
	mcuIndex := 0
	restartCounter := 0
	first := scan.ComponentIndex[0]
	scanBlocks(scan, comps, func(c *encodeComponent, bx, by int) error {
		// An MCU starts at every block of a non-interleaved scan, and at the
		// first component's top-left block in an interleaved one.
		if scan.ComponentCount == 1 || (c.index == first && bx%c.hSamp == 0 && by%c.vSamp == 0) {
			if restartInterval > 0 && mcuIndex > 0 && mcuIndex%restartInterval == 0 {
				flushScanEOB(w, scan, comps, huff, state)
				w.padAndFlush()
				writeRestartMarker(w, restartCounter)
				restartCounter++
				state.reset()
			}
			mcuIndex++
		}
		zz := c.blockAt(bx, by)
		dcT := emitTarget{w: w, table: huff.dc[c.quantClass]}
		acT := emitTarget{w: w, table: huff.ac[c.quantClass]}
		raw := writerRawSink{w: w}
		encodeScanBlock(dcT, acT, raw, zz, scan, state, c.index)
		return nil
	})
	flushScanEOB(w, scan, comps, huff, state)
	w.padAndFlush()
}

func flushScanEOB(w *bitWriter, scan ScanInfo, comps []*encodeComponent, huff *huffmanSet, state *entropyState) {
	if scan.SpectralStart == 0 {
		return
	}
	acClass := comps[scan.ComponentIndex[0]].quantClass
	t := emitTarget{w: w, table: huff.ac[acClass]}
	if scan.isRefinement() {
		flushEOBRunRefine(t, writerRawSink{w: w}, state)
	} else {
		flushEOBRun(t, state)
	}
}

// encodeCore runs the full pipeline (spec.md §3-4): transform every
// component's blocks once, plan the scan script, derive Huffman tables, and
// write the complete JFIF byte stream.
func encodeCore(ctx context.Context, width, height int, y, cb, cr *componentPlane, gray bool, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.validate(width, height); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, wrapErr(KindCancelled, err, "cancelled before encode started")
	}

	lumaH, lumaV := 1, 1
	if !gray {
		lumaH, lumaV = opts.Subsampling.hvFactors()
	}
	mcuWide := ceilDiv(width, 8*lumaH)
	mcuHigh := ceilDiv(height, 8*lumaV)

	lumaTable, chromaTable := buildQuantTables(opts.Quality, opts.QuantTableVariant, opts.ForceBaseline)
	quantTables := []QuantTable{lumaTable}

	comps := []*encodeComponent{newEncodeComponent(1, 0, y, lumaH, lumaV, mcuWide, mcuHigh, 0)}
	if !gray {
		quantTables = append(quantTables, chromaTable)
		comps = append(comps,
			newEncodeComponent(2, 1, cb, 1, 1, mcuWide, mcuHigh, 1),
			newEncodeComponent(3, 2, cr, 1, 1, mcuWide, mcuHigh, 1),
		)
	}

	for _, c := range comps {
		q := &lumaTable
		if c.quantClass == 1 {
			q = &chromaTable
		}
		if err := transformComponent(ctx, c, q, opts); err != nil {
			return nil, err
		}
	}

	var scans []ScanInfo
	if !opts.Progressive {
		scans = buildBaselineScanScript(len(comps))
	} else if opts.OptimizeScans {
		cfg := defaultScanSearchConfig()
		candidates := generateSearchScans(len(comps), cfg)
		scans = selectSearchedScans(candidates, func(s ScanInfo) int {
			return estimateScanCost(s, comps)
		})
	} else {
		scans = buildStaticDefaultProgressiveScript(len(comps))
	}

	var huff *huffmanSet
	var err error
	if opts.OptimizeHuffman {
		hist := &histogramSet{}
		for _, s := range scans {
			collectHistograms(s, comps, hist, opts.RestartInterval)
		}
		huff, err = optimizedHuffmanSet(hist)
	} else {
		huff, err = builtinHuffmanSet()
	}
	if err != nil {
		return nil, err
	}

	w := newBitWriter()
	writeSOI(w)
	writeAPP0(w)
	writeAPP1Exif(w, opts.ExifData)
	writeAPP2ICC(w, opts.ICCProfile)
	for _, m := range opts.CustomMarkers {
		writeCustomMarker(w, m.Code, m.Payload)
	}
	writeDQT(w, quantTables)

	sofComps := make([]componentInfo, len(comps))
	for i, c := range comps {
		sofComps[i] = componentInfo{id: c.id, hSamp: byte(c.hSamp), vSamp: byte(c.vSamp), quantTb: c.quantClass}
	}
	sofMarker := byte(markerSOF0)
	if opts.Progressive {
		sofMarker = markerSOF2
	}
	writeSOF(w, sofMarker, width, height, sofComps)

	var dhtEntries []dhtEntry
	dhtEntries = append(dhtEntries, dhtEntry{class: 0, id: 0, table: &huff.dcRaw[0]})
	dhtEntries = append(dhtEntries, dhtEntry{class: 1, id: 0, table: &huff.acRaw[0]})
	if !gray {
		dhtEntries = append(dhtEntries, dhtEntry{class: 0, id: 1, table: &huff.dcRaw[1]})
		dhtEntries = append(dhtEntries, dhtEntry{class: 1, id: 1, table: &huff.acRaw[1]})
	}
	writeDHT(w, dhtEntries)

	if opts.RestartInterval > 0 {
		writeDRI(w, opts.RestartInterval)
	}

	for i, s := range scans {
		if i%4 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, wrapErr(KindCancelled, err, "cancelled during entropy coding")
			}
			if err := opts.checkDeadline(); err != nil {
				return nil, err
			}
		}
		writeScan(w, s, comps, huff, opts.RestartInterval)
	}

	writeEOI(w)
	return w.bytes(), nil
}

// estimateScanCost approximates a candidate scan's entropy-coded size in
// bits by summing each block's category-based symbol cost, used to choose
// among mutually-exclusive scan alternatives during optimize_scans search.
func estimateScanCost(scan ScanInfo, comps []*encodeComponent) int {
	total := 0
	state := &entropyState{}
	scanBlocks(scan, comps, func(c *encodeComponent, bx, by int) error {
		zz := c.blockAt(bx, by)
		if scan.isDCScan() {
			diff := zz[0] - state.lastDC[c.index]
			state.lastDC[c.index] = zz[0]
			cat := nbits(diff)
			total += int(cat) + 2
			return nil
		}
		for k := scan.SpectralStart; k <= scan.SpectralEnd; k++ {
			if zz[k] != 0 {
				total += int(nbits(zz[k])) + 4
			}
		}
		return nil
	})
	return total
}

func newComponentPlaneView(width, height int, pix []uint8) componentPlane {
	return componentPlane{width: width, height: height, pix: pix}
}

// EncodeRGB encodes packed 8-bit RGB pixel data (spec.md §6).
func EncodeRGB(ctx context.Context, rgb []byte, width, height int, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if len(rgb) != width*height*3 {
		return nil, newErr(KindBufferSizeMismatch, "rgb buffer length %d does not match %dx%d*3", len(rgb), width, height)
	}
	if opts.Subsampling == Gray {
		y := convertGrayFromRGB(rgb, width, height)
		return encodeCore(ctx, width, height, &y, nil, nil, true, opts)
	}
	y, cbPlane, crPlane := convertRGBToYCbCr(rgb, width, height, opts.Subsampling)
	return encodeCore(ctx, width, height, &y, &cbPlane, &crPlane, false, opts)
}

// EncodeGray encodes packed 8-bit grayscale pixel data.
func EncodeGray(ctx context.Context, gray []byte, width, height int, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if len(gray) != width*height {
		return nil, newErr(KindBufferSizeMismatch, "gray buffer length %d does not match %dx%d", len(gray), width, height)
	}
	y := convertGrayToY(gray, width, height)
	return encodeCore(ctx, width, height, &y, nil, nil, true, opts)
}

// EncodeYCbCrPlanar encodes already-planar, already-subsampled Y/Cb/Cr
// planes (spec.md §6), skipping color conversion entirely.
func EncodeYCbCrPlanar(ctx context.Context, y, cb, cr []byte, width, height int, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if len(y) != width*height {
		return nil, newErr(KindBufferSizeMismatch, "y buffer length %d does not match %dx%d", len(y), width, height)
	}
	if opts.Subsampling == Gray {
		yp := newComponentPlaneView(width, height, y)
		return encodeCore(ctx, width, height, &yp, nil, nil, true, opts)
	}
	hF, vF := opts.Subsampling.hvFactors()
	cw, ch := ceilDiv(width, hF), ceilDiv(height, vF)
	if len(cb) != cw*ch || len(cr) != cw*ch {
		return nil, newErr(KindBufferSizeMismatch, "cb/cr buffer length does not match %dx%d for %s", cw, ch, opts.Subsampling)
	}
	yp := newComponentPlaneView(width, height, y)
	cbp := newComponentPlaneView(cw, ch, cb)
	crp := newComponentPlaneView(cw, ch, cr)
	return encodeCore(ctx, width, height, &yp, &cbp, &crp, false, opts)
}
