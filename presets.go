package mozjpeg

// Named presets bundle the Options fields that matter most for a given
// speed/size tradeoff (spec.md §6). All four start from DefaultOptions and
// only override what the preset actually cares about.

// BaselineFastest favors encode speed: baseline (non-progressive), no
// Huffman optimization, no trellis, no scan search.
func BaselineFastest() *Options {
	o := DefaultOptions()
	o.Progressive = false
	o.OptimizeHuffman = false
	o.OvershootDeringing = false
	o.Trellis = TrellisOptions{}
	return o
}

// BaselineBalanced is baseline JPEG with optimized Huffman tables, the
// default middle ground when progressive decoding isn't needed.
func BaselineBalanced() *Options {
	o := DefaultOptions()
	o.Progressive = false
	o.OptimizeHuffman = true
	return o
}

// ProgressiveBalanced is this module's overall default shape: progressive,
// optimized Huffman tables, the static (non-searched) scan script.
func ProgressiveBalanced() *Options {
	o := DefaultOptions()
	o.Progressive = true
	o.OptimizeHuffman = true
	o.OptimizeScans = false
	return o
}

// ProgressiveSmallest spends the most CPU for the smallest output: scan
// search, trellis quantization of the AC coefficients (DC is plainly
// rounded; see TrellisOptions), optimized Huffman tables.
func ProgressiveSmallest() *Options {
	o := DefaultOptions()
	o.Progressive = true
	o.OptimizeHuffman = true
	o.OptimizeScans = true
	o.Trellis = TrellisOptions{Enabled: true, DCEnabled: true}
	return o
}
