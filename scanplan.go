package mozjpeg

// ScanSearchConfig controls the shape of the progressive scan candidate set
// mozjpeg's scan optimizer searches over (spec.md §4.9, pinned from
// tests/scan_verification.rs's get_c_reference_scans()).
type ScanSearchConfig struct {
	AlMaxLuma       int
	AlMaxChroma     int
	FrequencySplits [5]int
}

func defaultScanSearchConfig() ScanSearchConfig {
	return ScanSearchConfig{AlMaxLuma: 3, AlMaxChroma: 2, FrequencySplits: [5]int{2, 8, 5, 12, 18}}
}

// buildBaselineScanScript returns the single non-spectral-selection scan
// baseline (and non-progressive) JPEG uses: every component interleaved,
// full coefficient range, no successive approximation.
func buildBaselineScanScript(componentCount int) []ScanInfo {
	idx := [4]int{}
	for i := 0; i < componentCount; i++ {
		idx[i] = i
	}
	return []ScanInfo{{ComponentCount: componentCount, ComponentIndex: idx, SpectralStart: 0, SpectralEnd: 63}}
}

// buildStaticDefaultProgressiveScript is the fixed progressive script used
// when scan search (optimize_scans) is disabled: a combined DC scan
// followed by one non-successive-approximation 1-63 AC scan per component.
// It has no refinement passes, and no component's AC band is split into
// more than one scan.
func buildStaticDefaultProgressiveScript(componentCount int) []ScanInfo {
	idx := [4]int{}
	for i := 0; i < componentCount; i++ {
		idx[i] = i
	}
	scans := []ScanInfo{{ComponentCount: componentCount, ComponentIndex: idx}}
	for c := 0; c < componentCount; c++ {
		scans = append(scans, ScanInfo{ComponentCount: 1, ComponentIndex: [4]int{c, 0, 0, 0}, SpectralStart: 1, SpectralEnd: 63})
	}
	return scans
}

func mkScan(comp, ss, se, ah, al int) ScanInfo {
	return ScanInfo{ComponentCount: 1, ComponentIndex: [4]int{comp, 0, 0, 0}, SpectralStart: ss, SpectralEnd: se, ApproxHigh: ah, ApproxLow: al}
}

// generateLumaBandScans produces one component's AC candidate scans: the
// Al=0 base pair, the successive-approximation ladder down to Al=1 (a
// refine scan plus a fresh base pair at each level), the full 1-63 scan at
// Al=0, and a base/detail pair for every configured frequency split.
func generateLumaBandScans(comp, alMax int, splits [5]int) []ScanInfo {
	var scans []ScanInfo
	scans = append(scans, mkScan(comp, 1, 8, 0, 0), mkScan(comp, 9, 63, 0, 0))
	for al := 0; al < alMax; al++ {
		scans = append(scans,
			mkScan(comp, 1, 63, al+1, al),
			mkScan(comp, 1, 8, 0, al+1),
			mkScan(comp, 9, 63, 0, al+1),
		)
	}
	scans = append(scans, mkScan(comp, 1, 63, 0, 0))
	for _, s := range splits {
		scans = append(scans, mkScan(comp, 1, s, 0, 0), mkScan(comp, s+1, 63, 0, 0))
	}
	return scans
}

// generateChromaBandScans interleaves two chroma components' candidate
// scans exactly the way mozjpeg's scan search does: base pairs for both
// components, then each successive-approximation level (refine c1, refine
// c2, c1's next band pair, c2's next band pair), then both components' full
// scans, then both components' scans for each frequency split.
func generateChromaBandScans(c1, c2, alMax int, splits [5]int) []ScanInfo {
	var scans []ScanInfo
	scans = append(scans, mkScan(c1, 1, 8, 0, 0), mkScan(c1, 9, 63, 0, 0), mkScan(c2, 1, 8, 0, 0), mkScan(c2, 9, 63, 0, 0))
	for al := 0; al < alMax; al++ {
		scans = append(scans,
			mkScan(c1, 1, 63, al+1, al), mkScan(c2, 1, 63, al+1, al),
			mkScan(c1, 1, 8, 0, al+1), mkScan(c1, 9, 63, 0, al+1),
			mkScan(c2, 1, 8, 0, al+1), mkScan(c2, 9, 63, 0, al+1),
		)
	}
	scans = append(scans, mkScan(c1, 1, 63, 0, 0), mkScan(c2, 1, 63, 0, 0))
	for _, s := range splits {
		scans = append(scans, mkScan(c1, 1, s, 0, 0), mkScan(c1, s+1, 63, 0, 0), mkScan(c2, 1, s, 0, 0), mkScan(c2, s+1, 63, 0, 0))
	}
	return scans
}

// generateSearchScans builds the full progressive scan candidate catalog:
// for 3 components, exactly the 64-entry list pinned from mozjpeg's
// jpeg_search_progression (indices 0-22 luma, 23-63 chroma); for 1
// component, the 23-entry luma-shaped subset.
func generateSearchScans(componentCount int, cfg ScanSearchConfig) []ScanInfo {
	var scans []ScanInfo
	if componentCount >= 3 {
		scans = append(scans, ScanInfo{ComponentCount: 3, ComponentIndex: [4]int{0, 1, 2, 0}})
		scans = append(scans, generateLumaBandScans(0, cfg.AlMaxLuma, cfg.FrequencySplits)...)
		scans = append(scans, ScanInfo{ComponentCount: 2, ComponentIndex: [4]int{1, 2, 0, 0}})
		scans = append(scans, ScanInfo{ComponentCount: 1, ComponentIndex: [4]int{1, 0, 0, 0}})
		scans = append(scans, ScanInfo{ComponentCount: 1, ComponentIndex: [4]int{2, 0, 0, 0}})
		scans = append(scans, generateChromaBandScans(1, 2, cfg.AlMaxChroma, cfg.FrequencySplits)...)
	} else {
		scans = append(scans, ScanInfo{ComponentCount: 1, ComponentIndex: [4]int{0, 0, 0, 0}})
		scans = append(scans, generateLumaBandScans(0, cfg.AlMaxLuma, cfg.FrequencySplits)...)
	}
	return scans
}

// scanCost estimates a scan's entropy-coded size. The cost function
// encoder.go supplies (estimateScanCost) does not trial-encode the scan: it
// sums a per-coefficient estimate from each coded value's category (no
// Huffman table, no EOB runs). This indirection lets scanplan.go stay free
// of any dependency on pixel data.
type scanCost func(ScanInfo) int

// selectSearchedScans picks a minimal progressive script from the candidate
// catalog. The DC scans and every successive-approximation ladder entry
// (ApproxHigh != 0 or ApproxLow != 0) are mandatory and always kept. For
// each component's family of mutually-exclusive Al=0 AC alternatives (the
// base pair, the full 1-63 scan, and each frequency-split pair — they all
// cover the same 1-63 range so exactly one must be chosen) the alternative
// with the lowest total estimated cost is kept and the rest discarded.
//
// This mirrors the shape of mozjpeg's jpeg_search_progression scan search
// but not its exact trial-encoding cost bookkeeping (the C source's
// internal heuristics were outside the retrieval pack); see DESIGN.md.
func selectSearchedScans(candidates []ScanInfo, cost scanCost) []ScanInfo {
	type altGroup struct {
		component int
		scans     []ScanInfo
	}
	var mandatory []ScanInfo
	groups := map[int]*altGroup{}
	var order []int
	lastGroupForComponent := map[int]int{}

	for _, s := range candidates {
		if s.ComponentCount != 1 {
			mandatory = append(mandatory, s)
			continue
		}
		if s.ApproxHigh != 0 || s.ApproxLow != 0 {
			mandatory = append(mandatory, s)
			continue
		}
		if s.SpectralStart == 0 {
			mandatory = append(mandatory, s)
			continue
		}
		comp := s.ComponentIndex[0]
		if s.SpectralStart == 1 {
			g := &altGroup{component: comp}
			key := len(order)
			groups[key] = g
			order = append(order, key)
			// Track which group a given component is currently
			// accumulating into via the last entry for that component.
			lastGroupForComponent[comp] = key
		}
		key, ok := lastGroupForComponent[comp]
		if !ok {
			mandatory = append(mandatory, s)
			continue
		}
		groups[key].scans = append(groups[key].scans, s)
	}

	// Partition groups back out per component and keep the cheapest.
	byComponent := map[int][]*altGroup{}
	for _, key := range order {
		g := groups[key]
		byComponent[g.component] = append(byComponent[g.component], g)
	}

	result := append([]ScanInfo{}, mandatory...)
	for _, groupList := range byComponent {
		bestIdx := -1
		bestCost := 0
		for i, g := range groupList {
			total := 0
			for _, s := range g.scans {
				total += cost(s)
			}
			if bestIdx < 0 || total < bestCost {
				bestIdx, bestCost = i, total
			}
		}
		if bestIdx >= 0 {
			result = append(result, groupList[bestIdx].scans...)
		}
	}
	return result
}
