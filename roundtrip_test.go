package mozjpeg_test

import (
	"bytes"
	"context"
	goimage "image"
	"image/jpeg"
	"testing"

	qt "github.com/frankban/quicktest"

	mozjpeg "github.com/imazen/mozjpeg-go"
)

// A stream this module emits must be a well-formed JPEG a standard decoder
// accepts; this catches framing mistakes the byte-level property tests in
// the package-internal test files might miss.
func TestEncodeGrayDecodesWithStdlibJPEG(t *testing.T) {
	c := qt.New(t)
	width, height := 48, 32
	gray := make([]byte, width*height)
	for i := range gray {
		gray[i] = byte(i)
	}

	data, err := mozjpeg.EncodeGray(context.Background(), gray, width, height, mozjpeg.BaselineBalanced())
	c.Assert(err, qt.IsNil)

	img, err := jpeg.Decode(bytes.NewReader(data))
	c.Assert(err, qt.IsNil)
	c.Check(img.Bounds(), qt.Equals, goimage.Rect(0, 0, width, height))
}

func TestEncodeRGBProgressiveDecodesWithStdlibJPEG(t *testing.T) {
	c := qt.New(t)
	width, height := 40, 24
	rgb := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			o := (y*width + x) * 3
			rgb[o], rgb[o+1], rgb[o+2] = byte(x*6), byte(y*8), byte((x^y)*3)
		}
	}

	data, err := mozjpeg.EncodeRGB(context.Background(), rgb, width, height, mozjpeg.ProgressiveBalanced())
	c.Assert(err, qt.IsNil)

	img, err := jpeg.Decode(bytes.NewReader(data))
	c.Assert(err, qt.IsNil)
	c.Check(img.Bounds(), qt.Equals, goimage.Rect(0, 0, width, height))
}
