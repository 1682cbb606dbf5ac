package mozjpeg

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestRGBToYCbCrGrayscaleInput(t *testing.T) {
	c := qt.New(t)
	for _, v := range []uint8{0, 64, 128, 200, 255} {
		y, cb, cr := rgbToYCbCr(v, v, v)
		// A neutral (R=G=B) pixel must map to chroma's zero point and luma
		// equal to the input value (BT.601 full range).
		c.Check(int(y), qt.Equals, int(v), qt.Commentf("v=%d", v))
		c.Check(cb, qt.Equals, uint8(128))
		c.Check(cr, qt.Equals, uint8(128))
	}
}

func TestConvertRGBToYCbCrGrayMode(t *testing.T) {
	c := qt.New(t)
	rgb := make([]byte, 4*4*3)
	for i := range rgb {
		rgb[i] = byte(i)
	}
	y, cb, cr := convertRGBToYCbCr(rgb, 4, 4, Gray)
	c.Check(y.width, qt.Equals, 4)
	c.Check(cb.pix, qt.IsNil)
	c.Check(cr.pix, qt.IsNil)
}

func TestSubsamplePlane420HalvesBothDims(t *testing.T) {
	c := qt.New(t)
	full := newComponentPlane(8, 8)
	for i := range full.pix {
		full.pix[i] = 100
	}
	out := subsamplePlane(&full, 2, 2)
	c.Check(out.width, qt.Equals, 4)
	c.Check(out.height, qt.Equals, 4)
	for _, v := range out.pix {
		c.Check(v, qt.Equals, uint8(100))
	}
}

func TestSubsamplePlaneOddDimensionsEdgeReplicate(t *testing.T) {
	c := qt.New(t)
	full := newComponentPlane(3, 3)
	for i := range full.pix {
		full.pix[i] = 50
	}
	out := subsamplePlane(&full, 2, 2)
	c.Check(out.width, qt.Equals, 2)
	c.Check(out.height, qt.Equals, 2)
}

func TestComponentPlaneAtClampsOutOfBounds(t *testing.T) {
	c := qt.New(t)
	p := newComponentPlane(4, 4)
	p.set(3, 3, 42)
	c.Check(p.at(100, 100), qt.Equals, uint8(42))
	c.Check(p.at(-5, -5), qt.Equals, p.at(0, 0))
}
