// Command mozjpegenc is a command-line tool to encode images as JPEGs using
// this module, optionally serving the result over HTTP for testing
// progressive loading in a browser's dev tools.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"net/http"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/imazen/mozjpeg-go"
)

func main() {
	var in string
	var out string
	var hostPort string
	var quality int
	var progressive bool
	flag.StringVar(&in, "i", "", "Input image file path")
	flag.StringVar(&out, "o", "", "Output JPEG file path")
	flag.StringVar(&hostPort, "http", "", "Host and port for HTTP server serving output")
	flag.IntVar(&quality, "q", 90, "Quality 1-100")
	flag.BoolVar(&progressive, "progressive", true, "Write a progressive JPEG")
	flag.Parse()

	if (in == "" && hostPort == "") || out == "" {
		fmt.Fprintf(os.Stderr, "Input and output file paths must be specified")
		os.Exit(1)
	}

	file, err := os.Open(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cant open input %s: %s", in, err)
		os.Exit(1)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cant decode input %s: %s", in, err)
		os.Exit(1)
	}

	opts := mozjpeg.ProgressiveBalanced()
	opts.Quality = quality
	opts.Progressive = progressive

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	rgb := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		rowOff := rgba.PixOffset(0, y)
		for x := 0; x < width; x++ {
			p := rgba.Pix[rowOff+x*4 : rowOff+x*4+4]
			o := (y*width + x) * 3
			rgb[o], rgb[o+1], rgb[o+2] = p[0], p[1], p[2]
		}
	}

	data, err := mozjpeg.EncodeRGB(context.Background(), rgb, width, height, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cant encode output %s: %s", out, err)
		os.Exit(1)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "cant write output %s: %s", out, err)
		os.Exit(1)
	}

	if hostPort != "" {
		fmt.Printf("Serving %s on http://%s/\n", out, hostPort)
		http.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, out)
		}))
		if err := http.ListenAndServe(hostPort, nil); err != nil {
			fmt.Fprintf(os.Stderr, "cant start http server on %s: %s", hostPort, err)
			os.Exit(1)
		}
	}
}
