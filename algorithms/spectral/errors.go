package spectral

import "errors"

// ErrInvalidParameter is returned (wrapped) when transform parameters cannot
// produce a valid engine: a size that is not a power of two, or an overlap
// ratio that does not divide the size.
var ErrInvalidParameter = errors.New("invalid parameter")

var errLengthMismatch = errors.New("length mismatch")
