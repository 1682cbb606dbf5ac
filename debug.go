//go:build !mozjpegdebug

package mozjpeg

// debugAssert is a no-op in release builds: the invariants it guards are
// not checked there, and no error is reported for them.
func debugAssert(cond bool, format string, args ...interface{}) {}
