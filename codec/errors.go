package codec

import "errors"

// ErrUnsupportedEncoding is returned for files whose extension has no
// registered codec.
var ErrUnsupportedEncoding = errors.New("unsupported encoding")
