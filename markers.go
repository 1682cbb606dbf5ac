package mozjpeg

// componentInfo is one SOF/SOS component record: its 1-based id, its
// horizontal/vertical sampling factors, and the quantization table index it
// references.
type componentInfo struct {
	id      byte
	hSamp   byte
	vSamp   byte
	quantTb byte
	dcTb    byte
	acTb    byte
}

func be16(v int) [2]byte { return [2]byte{byte(v >> 8), byte(v)} }

// writeSOI writes the Start Of Image marker (spec.md §4.10).
func writeSOI(w *bitWriter) { w.rawMarker(markerSOI) }

// writeEOI writes the End Of Image marker.
func writeEOI(w *bitWriter) { w.rawMarker(markerEOI) }

// writeAPP0 writes the JFIF APP0 marker: version 1.01, no density info
// (aspect ratio 1:1, no thumbnail), matching the teacher's plain JFIF
// header.
func writeAPP0(w *bitWriter) {
	const length = 16
	w.rawMarker(markerAPP0)
	l := be16(length)
	w.rawBytes(l[:])
	w.rawBytes([]byte("JFIF\x00"))
	w.rawBytes([]byte{1, 1}) // version 1.01
	w.rawBytes([]byte{0})    // density units: none
	den := be16(1)
	w.rawBytes(den[:]) // Xdensity
	w.rawBytes(den[:]) // Ydensity
	w.rawBytes([]byte{0, 0})
}

// writeAPP1Exif passes an already-formed EXIF payload through verbatim
// behind an "Exif\x00\x00" APP1 header (spec.md §4.10: EXIF data is carried
// opaquely, never interpreted).
func writeAPP1Exif(w *bitWriter, exif []byte) {
	if len(exif) == 0 {
		return
	}
	length := 2 + 6 + len(exif)
	w.rawMarker(markerAPP1)
	l := be16(length)
	w.rawBytes(l[:])
	w.rawBytes([]byte("Exif\x00\x00"))
	w.rawBytes(exif)
}

// iccMarkerHeaderLen is the length of the 14-byte APP2 chunk header ICC profiles use when
// split across multiple markers (seq_no and num_markers are both 1-based).
const iccMarkerHeaderLen = 14
const iccMaxChunk = 65533 - iccMarkerHeaderLen

// writeAPP2ICC splits an ICC profile across as many APP2 markers as needed,
// each carrying the 14-byte "ICC_PROFILE\x00" + seq_no + num_markers header
// mandated by the ICC spec's JPEG embedding convention (spec.md §4.10).
func writeAPP2ICC(w *bitWriter, icc []byte) {
	if len(icc) == 0 {
		return
	}
	numMarkers := (len(icc) + iccMaxChunk - 1) / iccMaxChunk
	if numMarkers == 0 {
		numMarkers = 1
	}
	for seq := 1; seq <= numMarkers; seq++ {
		start := (seq - 1) * iccMaxChunk
		end := start + iccMaxChunk
		if end > len(icc) {
			end = len(icc)
		}
		chunk := icc[start:end]
		length := 2 + iccMarkerHeaderLen + len(chunk)
		w.rawMarker(markerAPP2)
		l := be16(length)
		w.rawBytes(l[:])
		w.rawBytes([]byte("ICC_PROFILE\x00"))
		w.rawBytes([]byte{byte(seq), byte(numMarkers)})
		w.rawBytes(chunk)
	}
}

// writeCustomMarker passes a caller-supplied application marker segment
// through verbatim (spec.md §6's CustomMarkers option).
func writeCustomMarker(w *bitWriter, code byte, payload []byte) {
	length := 2 + len(payload)
	w.rawMarker(code)
	l := be16(length)
	w.rawBytes(l[:])
	w.rawBytes(payload)
}

// dqtPrecision reports whether t needs 16-bit entries: Pq=1 whenever any
// entry exceeds the 8-bit range (spec.md §4.10: "8-bit precision (values
// <=255) or 16-bit precision otherwise").
func dqtPrecision(t QuantTable) byte {
	for _, v := range t {
		if v > 255 {
			return 1
		}
	}
	return 0
}

// writeDQT writes one Define Quantization Table marker carrying every
// table in tables (spec.md §4.10). Each table's
// precision (Pq) is chosen independently: 8-bit (1 byte/entry) unless any
// entry exceeds 255, in which case that table is written with 16-bit
// big-endian entries.
func writeDQT(w *bitWriter, tables []QuantTable) {
	length := 2
	precision := make([]byte, len(tables))
	for i, t := range tables {
		precision[i] = dqtPrecision(t)
		entrySize := 1
		if precision[i] == 1 {
			entrySize = 2
		}
		length += 1 + blockSize*entrySize
	}
	w.rawMarker(markerDQT)
	l := be16(length)
	w.rawBytes(l[:])
	for i, t := range tables {
		pq := precision[i]
		w.rawBytes([]byte{pq<<4 | byte(i)})
		if pq == 0 {
			nat := make([]byte, blockSize)
			for k := 0; k < blockSize; k++ {
				nat[k] = byte(t[k])
			}
			w.rawBytes(nat)
		} else {
			nat := make([]byte, 0, blockSize*2)
			for k := 0; k < blockSize; k++ {
				v := be16(int(t[k]))
				nat = append(nat, v[0], v[1])
			}
			w.rawBytes(nat)
		}
	}
}

// writeSOF writes a Start Of Frame marker (baseline SOF0 or progressive
// SOF2 per spec.md §4.10), 8-bit precision, for an arbitrary component set.
func writeSOF(w *bitWriter, marker byte, width, height int, comps []componentInfo) {
	length := 8 + 3*len(comps)
	w.rawMarker(marker)
	l := be16(length)
	w.rawBytes(l[:])
	w.rawBytes([]byte{8})
	h := be16(height)
	wd := be16(width)
	w.rawBytes(h[:])
	w.rawBytes(wd[:])
	w.rawBytes([]byte{byte(len(comps))})
	for _, c := range comps {
		w.rawBytes([]byte{c.id, c.hSamp<<4 | c.vSamp, c.quantTb})
	}
}

// writeDHT writes one Define Huffman Table marker carrying every table in
// tables (spec.md §4.10). class is 0 for DC, 1 for AC; id is the table's
// destination index (0-3).
type dhtEntry struct {
	class byte
	id    byte
	table *HuffTable
}

func writeDHT(w *bitWriter, entries []dhtEntry) {
	length := 2
	for _, e := range entries {
		n := 0
		for _, b := range e.table.Bits {
			n += int(b)
		}
		length += 1 + 16 + n
	}
	w.rawMarker(markerDHT)
	l := be16(length)
	w.rawBytes(l[:])
	for _, e := range entries {
		w.rawBytes([]byte{e.class<<4 | e.id})
		w.rawBytes(e.table.Bits[:])
		w.rawBytes(e.table.HuffVal)
	}
}

// writeDRI writes the Define Restart Interval marker.
func writeDRI(w *bitWriter, interval int) {
	w.rawMarker(markerDRI)
	l := be16(4)
	w.rawBytes(l[:])
	ri := be16(interval)
	w.rawBytes(ri[:])
}

// sosComponentSpec is one SOS component's (dcTb, acTb) table-selector pair.
type sosComponentSpec struct {
	id    byte
	dcTb  byte
	acTb  byte
}

// writeSOSHeader writes a Start Of Scan marker header (everything up to but
// not including the entropy-coded data, spec.md §4.10).
func writeSOSHeader(w *bitWriter, comps []sosComponentSpec, scan ScanInfo) {
	length := 6 + 2*len(comps)
	w.rawMarker(markerSOS)
	l := be16(length)
	w.rawBytes(l[:])
	w.rawBytes([]byte{byte(len(comps))})
	for _, c := range comps {
		w.rawBytes([]byte{c.id, c.dcTb<<4 | c.acTb})
	}
	w.rawBytes([]byte{
		byte(scan.SpectralStart),
		byte(scan.SpectralEnd),
		byte(scan.ApproxHigh<<4) | byte(scan.ApproxLow),
	})
}

// writeRestartMarker emits RSTm; m cycles 0..7 across successive restart
// intervals.
func writeRestartMarker(w *bitWriter, m int) {
	w.rawMarker(markerRST0 + byte(m&7))
}
