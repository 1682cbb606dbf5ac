package mozjpeg

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestNbits(t *testing.T) {
	c := qt.New(t)
	cases := []struct {
		v    int32
		want uint8
	}{
		{0, 0}, {1, 1}, {-1, 1}, {2, 2}, {-3, 2}, {255, 8}, {-255, 8}, {256, 9},
	}
	for _, tc := range cases {
		c.Check(nbits(tc.v), qt.Equals, tc.want, qt.Commentf("nbits(%d)", tc.v))
	}
}

func TestSignedValueBits(t *testing.T) {
	c := qt.New(t)
	// Positive values encode as themselves.
	c.Check(signedValueBits(5, nbits(5)), qt.Equals, uint32(5))
	// Negative values encode as (v-1) masked to category width, JPEG's
	// standard "off by one" signed magnitude trick.
	// -5-1 = -6 = ...11111010, masked to 3 bits: 0b010.
	c.Check(signedValueBits(-5, nbits(-5)), qt.Equals, uint32(0b010))
	c.Check(signedValueBits(0, 0), qt.Equals, uint32(0))
}

func TestDeriveBuiltinTables(t *testing.T) {
	c := qt.New(t)
	for _, tbl := range []HuffTable{
		builtinDCLumaTable(), builtinDCChromaTable(),
		builtinACLumaTable(), builtinACChromaTable(),
	} {
		d, err := deriveTable(&tbl)
		c.Assert(err, qt.IsNil)
		// Every declared symbol must get a positive code length.
		for _, sym := range tbl.HuffVal {
			_, length := d.code(sym)
			c.Check(length > 0, qt.IsTrue, qt.Commentf("symbol %d", sym))
		}
	}
}

// A canonical table gives each symbol, in huffval order, the previous
// symbol's code plus one, shifted left by the increase in code length, and
// never gives two symbols the same code.
func TestDeriveTableCanonicalOrder(t *testing.T) {
	c := qt.New(t)
	tbl := builtinACLumaTable()
	d, err := deriveTable(&tbl)
	c.Assert(err, qt.IsNil)

	seen := map[string]bool{}
	var prevCode uint32
	var prevLen uint8
	for k, sym := range tbl.HuffVal {
		code, length := d.code(sym)
		if k > 0 {
			c.Check(code, qt.Equals, (prevCode+1)<<(length-prevLen), qt.Commentf("symbol %d", sym))
		}
		prevCode, prevLen = code, length
		key := ""
		for i := int(length) - 1; i >= 0; i-- {
			if (code>>uint(i))&1 == 1 {
				key += "1"
			} else {
				key += "0"
			}
		}
		c.Check(seen[key], qt.IsFalse, qt.Commentf("duplicate code %s for symbol %d", key, sym))
		seen[key] = true
	}
}

func TestBuildOptimalHuffTable(t *testing.T) {
	c := qt.New(t)
	var hist histogram
	// A skewed distribution: symbol 5 dominates, a handful of others appear
	// rarely. The optimal table must give the frequent symbol a short code.
	for i := 0; i < 1000; i++ {
		hist.add(5)
	}
	hist.add(1)
	hist.add(2)
	hist.add(3)

	tbl, err := buildOptimalHuffTable(&hist)
	c.Assert(err, qt.IsNil)

	d, err := deriveTable(tbl)
	c.Assert(err, qt.IsNil)

	_, lenFrequent := d.code(5)
	_, lenRare := d.code(1)
	c.Check(lenFrequent > 0, qt.IsTrue)
	c.Check(lenFrequent <= lenRare, qt.IsTrue, qt.Commentf("frequent symbol should get a code no longer than a rare one"))

	// Every symbol must get one of the 16 code lengths Bits can express
	// (Annex K.3 cap): the Bits counts account for every huffval entry.
	total := 0
	for _, b := range tbl.Bits {
		total += int(b)
	}
	c.Check(total, qt.Equals, len(tbl.HuffVal))
}

func TestBuildOptimalHuffTableEmpty(t *testing.T) {
	c := qt.New(t)
	var hist histogram
	_, err := buildOptimalHuffTable(&hist)
	c.Assert(err, qt.Not(qt.IsNil))
	e, ok := err.(*Error)
	c.Assert(ok, qt.IsTrue)
	c.Check(e.Kind, qt.Equals, KindInvalidHuffmanTable)
}

// Many distinct symbols should still produce a table every code of which is
// at most 16 bits long, per the encoder's hard constraint (spec.md §4.6).
func TestBuildOptimalHuffTableManySymbols(t *testing.T) {
	c := qt.New(t)
	var hist histogram
	for sym := 0; sym < 256; sym++ {
		// A linear skew (frequency sym+1) makes the merge algorithm produce
		// codes up to 15 bits long without requiring the length-limiting
		// redistribution.
		hist[sym] = uint32(sym + 1)
	}
	tbl, err := buildOptimalHuffTable(&hist)
	c.Assert(err, qt.IsNil)

	d, err := deriveTable(tbl)
	c.Assert(err, qt.IsNil)
	for sym := 0; sym < 256; sym++ {
		if hist[sym] == 0 {
			continue
		}
		_, length := d.code(byte(sym))
		c.Check(length >= 1 && length <= 16, qt.IsTrue, qt.Commentf("symbol %d length %d", sym, length))
	}
}
