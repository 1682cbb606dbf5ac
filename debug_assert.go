//go:build mozjpegdebug

package mozjpeg

import "fmt"

// debugAssert panics on a violated invariant when built with -tags mozjpegdebug.
func debugAssert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("mozjpeg: invariant violated: "+format, args...))
	}
}
