package aiff

import "errors"

var (
	ErrInvalidHeader = errors.New("aiff: file didn't have a FORM header of type AIFF or AIFC")

	ErrMissingChunk = errors.New("aiff: missing required chunk")

	ErrUnsupportedFormat = errors.New("aiff: only uncompressed 16-bit samples are supported")
)
