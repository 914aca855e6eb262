package dsp

import "errors"

var (
	// ErrInvalidHeader indicates a header with an unknown format or
	// inconsistent counts.
	ErrInvalidHeader = errors.New("dsp: invalid header")

	// ErrTruncatedData indicates a file shorter than its header claims.
	ErrTruncatedData = errors.New("dsp: truncated audio data")

	// ErrFormatMismatch indicates files that cannot form one stream, or a
	// writer count that does not match the channel count.
	ErrFormatMismatch = errors.New("dsp: channel files do not match")
)
