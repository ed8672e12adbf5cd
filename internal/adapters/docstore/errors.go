package docstore

import "errors"

// Sentinel kinds for document store errors.
var (
	ErrRead   = errors.New("docstore read failed")
	ErrWrite  = errors.New("docstore write failed")
	ErrEncode = errors.New("docstore encode failed")
	ErrDecode = errors.New("docstore decode failed")
)
