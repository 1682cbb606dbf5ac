package mozjpeg

import (
	"bytes"
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func checkerboardRGB(width, height int) []byte {
	rgb := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			o := (y*width + x) * 3
			if (x/4+y/4)%2 == 0 {
				rgb[o], rgb[o+1], rgb[o+2] = 255, 255, 255
			} else {
				rgb[o], rgb[o+1], rgb[o+2] = 0, 0, 0
			}
		}
	}
	return rgb
}

func assertValidJPEGFraming(c *qt.C, data []byte) {
	c.Assert(len(data) > 4, qt.IsTrue)
	c.Check(data[0], qt.Equals, byte(0xFF))
	c.Check(data[1], qt.Equals, byte(markerSOI))
	c.Check(data[len(data)-2], qt.Equals, byte(0xFF))
	c.Check(data[len(data)-1], qt.Equals, byte(markerEOI))
}

func TestEncodeRGBBaselineFraming(t *testing.T) {
	c := qt.New(t)
	rgb := checkerboardRGB(16, 16)
	opts := BaselineBalanced()
	opts.Quality = 90
	data, err := EncodeRGB(context.Background(), rgb, 16, 16, opts)
	c.Assert(err, qt.IsNil)
	assertValidJPEGFraming(c, data)
}

func TestEncodeRGBProgressiveFraming(t *testing.T) {
	c := qt.New(t)
	rgb := checkerboardRGB(32, 32)
	data, err := EncodeRGB(context.Background(), rgb, 32, 32, ProgressiveBalanced())
	c.Assert(err, qt.IsNil)
	assertValidJPEGFraming(c, data)

	// No unescaped 0xFF may appear inside the entropy-coded segments: every
	// 0xFF not immediately followed by a marker code must be followed by a
	// stuffed 0x00 (spec.md §4.7).
	for i := 2; i < len(data)-2; i++ {
		if data[i] != 0xFF {
			continue
		}
		next := data[i+1]
		if next == 0x00 {
			continue // stuffed data byte
		}
		if next >= 0xD0 {
			continue // a real marker
		}
		t.Fatalf("unstuffed 0xFF at byte %d followed by 0x%02X", i, next)
	}
}

func TestEncodeRGBOptimizeHuffmanExactlyFourTables(t *testing.T) {
	c := qt.New(t)
	rgb := checkerboardRGB(16, 16)
	opts := DefaultOptions()
	opts.Progressive = false
	opts.OptimizeHuffman = true
	data, err := EncodeRGB(context.Background(), rgb, 16, 16, opts)
	c.Assert(err, qt.IsNil)

	tableCount := 0
	for i := 2; i+3 < len(data); i++ {
		if data[i] == 0xFF && data[i+1] == byte(markerDHT) {
			length := int(data[i+2])<<8 | int(data[i+3])
			pos := i + 4
			end := i + 2 + length
			for pos < end {
				classID := data[pos]
				pos++
				var count int
				for k := 0; k < 16; k++ {
					count += int(data[pos+k])
				}
				pos += 16 + count
				_ = classID
				tableCount++
			}
		}
	}
	c.Check(tableCount, qt.Equals, 4)
}

func TestEncodeGrayFraming(t *testing.T) {
	c := qt.New(t)
	gray := make([]byte, 16*16)
	for i := range gray {
		gray[i] = byte(i)
	}
	data, err := EncodeGray(context.Background(), gray, 16, 16, BaselineFastest())
	c.Assert(err, qt.IsNil)
	assertValidJPEGFraming(c, data)
}

func TestEncodeYCbCrPlanar420(t *testing.T) {
	c := qt.New(t)
	w, h := 16, 16
	y := make([]byte, w*h)
	cb := make([]byte, (w/2)*(h/2))
	cr := make([]byte, (w/2)*(h/2))
	for i := range y {
		y[i] = byte(i)
	}
	for i := range cb {
		cb[i], cr[i] = 100, 150
	}
	opts := DefaultOptions()
	opts.Subsampling = S420
	data, err := EncodeYCbCrPlanar(context.Background(), y, cb, cr, w, h, opts)
	c.Assert(err, qt.IsNil)
	assertValidJPEGFraming(c, data)
}

func TestEncodeYCbCrPlanarBufferMismatch(t *testing.T) {
	c := qt.New(t)
	opts := DefaultOptions()
	opts.Subsampling = S420
	_, err := EncodeYCbCrPlanar(context.Background(), make([]byte, 16*16), make([]byte, 1), make([]byte, 1), 16, 16, opts)
	c.Assert(err, qt.Not(qt.IsNil))
	e, ok := err.(*Error)
	c.Assert(ok, qt.IsTrue)
	c.Check(e.Kind, qt.Equals, KindBufferSizeMismatch)
}

func TestEncodeRGBInvalidDimensions(t *testing.T) {
	c := qt.New(t)
	_, err := EncodeRGB(context.Background(), nil, 0, 0, DefaultOptions())
	c.Assert(err, qt.Not(qt.IsNil))
	e, ok := err.(*Error)
	c.Assert(ok, qt.IsTrue)
	c.Check(e.Kind, qt.Equals, KindInvalidDimensions)
}

func TestEncodeRGBDimensionLimitExceeded(t *testing.T) {
	c := qt.New(t)
	opts := DefaultOptions()
	opts.MaxWidth = 8
	rgb := checkerboardRGB(16, 16)
	_, err := EncodeRGB(context.Background(), rgb, 16, 16, opts)
	c.Assert(err, qt.Not(qt.IsNil))
	e, ok := err.(*Error)
	c.Assert(ok, qt.IsTrue)
	c.Check(e.Kind, qt.Equals, KindDimensionLimitExceeded)
}

func TestEncodeRGBContextCancelled(t *testing.T) {
	c := qt.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rgb := checkerboardRGB(16, 16)
	_, err := EncodeRGB(ctx, rgb, 16, 16, DefaultOptions())
	c.Assert(err, qt.Not(qt.IsNil))
	e, ok := err.(*Error)
	c.Assert(ok, qt.IsTrue)
	c.Check(e.Kind, qt.Equals, KindCancelled)
}

func TestEncodeRGBDeadlineExceeded(t *testing.T) {
	c := qt.New(t)
	opts := DefaultOptions()
	opts.Deadline = time.Now().Add(-time.Second)
	rgb := checkerboardRGB(16, 16)
	_, err := EncodeRGB(context.Background(), rgb, 16, 16, opts)
	c.Assert(err, qt.Not(qt.IsNil))
	e, ok := err.(*Error)
	c.Assert(ok, qt.IsTrue)
	c.Check(e.Kind, qt.Equals, KindTimedOut)
}

func TestEncodeRGBRestartMarkersAppear(t *testing.T) {
	c := qt.New(t)
	opts := DefaultOptions()
	opts.Progressive = false
	opts.RestartInterval = 1
	rgb := checkerboardRGB(32, 32)
	data, err := EncodeRGB(context.Background(), rgb, 32, 32, opts)
	c.Assert(err, qt.IsNil)
	c.Check(bytes.Contains(data, []byte{0xFF, byte(markerRST0)}), qt.IsTrue)
}

func TestEncodeRGBWithICCAndExif(t *testing.T) {
	c := qt.New(t)
	opts := DefaultOptions()
	opts.ICCProfile = bytes.Repeat([]byte{0xAB}, 10)
	opts.ExifData = []byte("fake-exif-payload")
	rgb := checkerboardRGB(16, 16)
	data, err := EncodeRGB(context.Background(), rgb, 16, 16, opts)
	c.Assert(err, qt.IsNil)
	c.Check(bytes.Contains(data, []byte("ICC_PROFILE\x00")), qt.IsTrue)
	c.Check(bytes.Contains(data, []byte("Exif\x00\x00")), qt.IsTrue)
}

func TestEncodeRGBICCProfileTooLarge(t *testing.T) {
	c := qt.New(t)
	opts := DefaultOptions()
	opts.MaxICCProfileSize = 4
	opts.ICCProfile = bytes.Repeat([]byte{0xAB}, 10)
	rgb := checkerboardRGB(16, 16)
	_, err := EncodeRGB(context.Background(), rgb, 16, 16, opts)
	c.Assert(err, qt.Not(qt.IsNil))
	e, ok := err.(*Error)
	c.Assert(ok, qt.IsTrue)
	c.Check(e.Kind, qt.Equals, KindIccProfileTooLarge)
}

func TestEncodeRGBTrellisDoesNotCrash(t *testing.T) {
	c := qt.New(t)
	opts := ProgressiveSmallest()
	rgb := checkerboardRGB(24, 24)
	data, err := EncodeRGB(context.Background(), rgb, 24, 24, opts)
	c.Assert(err, qt.IsNil)
	assertValidJPEGFraming(c, data)
}

func TestEncodeRGBGraySubsampling(t *testing.T) {
	c := qt.New(t)
	opts := DefaultOptions()
	opts.Subsampling = Gray
	rgb := checkerboardRGB(16, 16)
	data, err := EncodeRGB(context.Background(), rgb, 16, 16, opts)
	c.Assert(err, qt.IsNil)
	assertValidJPEGFraming(c, data)
}
