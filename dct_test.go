package mozjpeg

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestForwardDCTFlatBlockIsAllDC(t *testing.T) {
	c := qt.New(t)
	var samples [blockSize]uint8
	for i := range samples {
		samples[i] = 128
	}
	var shifted, coeffs block
	levelShift(&samples, &shifted)
	forwardDCT8x8(&shifted, &coeffs)

	// A perfectly flat (level-shifted-to-zero) block has zero energy in
	// every coefficient, DC included.
	for i, v := range coeffs {
		c.Check(v, qt.Equals, int32(0), qt.Commentf("coeff %d", i))
	}
}

func TestForwardDCTConstantOffsetIsPureDC(t *testing.T) {
	c := qt.New(t)
	var samples [blockSize]uint8
	for i := range samples {
		samples[i] = 200
	}
	var shifted, coeffs block
	levelShift(&samples, &shifted)
	forwardDCT8x8(&shifted, &coeffs)

	c.Check(coeffs[0], qt.Not(qt.Equals), int32(0))
	for i := 1; i < blockSize; i++ {
		c.Check(coeffs[i], qt.Equals, int32(0), qt.Commentf("AC coeff %d should be zero for a flat block", i))
	}
}

func TestLevelShiftCentersAroundZero(t *testing.T) {
	c := qt.New(t)
	var samples [blockSize]uint8
	samples[0], samples[1], samples[2] = 0, 128, 255
	var out block
	levelShift(&samples, &out)
	c.Check(out[0], qt.Equals, int32(-128))
	c.Check(out[1], qt.Equals, int32(0))
	c.Check(out[2], qt.Equals, int32(127))
}
