package mozjpeg_test

import (
	"context"
	"fmt"

	mozjpeg "github.com/imazen/mozjpeg-go"
)

// ExampleEncodeRGB demonstrates the default progressive encode path.
func ExampleEncodeRGB() {
	width, height := 64, 64
	rgb := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			o := (y*width + x) * 3
			rgb[o], rgb[o+1], rgb[o+2] = byte(x*4), byte(y*4), 128
		}
	}

	data, err := mozjpeg.EncodeRGB(context.Background(), rgb, width, height, mozjpeg.ProgressiveBalanced())
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(len(data) > 0)
	// Output: true
}

// ExampleEncodeRGB_searchedScans demonstrates the smallest-output preset,
// which searches the progressive scan candidate catalog instead of using
// the static default script.
func ExampleEncodeRGB_searchedScans() {
	width, height := 32, 32
	rgb := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			o := (y*width + x) * 3
			rgb[o], rgb[o+1], rgb[o+2] = byte(x*8), byte(y*8), byte((x+y)*4)
		}
	}

	opts := mozjpeg.ProgressiveSmallest()
	data, err := mozjpeg.EncodeRGB(context.Background(), rgb, width, height, opts)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(len(data) > 0)
	// Output: true
}

// ExampleEncodeGray demonstrates encoding single-component grayscale input.
func ExampleEncodeGray() {
	width, height := 16, 16
	gray := make([]byte, width*height)
	for i := range gray {
		gray[i] = byte(i * 4)
	}

	data, err := mozjpeg.EncodeGray(context.Background(), gray, width, height, mozjpeg.BaselineFastest())
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(len(data) > 0)
	// Output: true
}
