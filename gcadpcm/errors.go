package gcadpcm

import "errors"

var (
	// ErrBufferTooSmall indicates the packed buffer holds fewer samples than requested.
	ErrBufferTooSmall = errors.New("gcadpcm: adpcm buffer too small for sample count")

	// ErrInvalidSampleCount indicates a negative sample count.
	ErrInvalidSampleCount = errors.New("gcadpcm: invalid sample count")

	// ErrInvalidSampleRange indicates a decode window outside the stream.
	ErrInvalidSampleRange = errors.New("gcadpcm: invalid sample range")

	// ErrLoopOutOfRange indicates loop points outside [0, SampleCount] or an
	// end before the start.
	ErrLoopOutOfRange = errors.New("gcadpcm: loop points out of range")

	// ErrInvalidAlignment indicates a negative alignment multiple.
	ErrInvalidAlignment = errors.New("gcadpcm: invalid alignment multiple")

	// ErrInvalidSeekInterval indicates a seek table interval below 1.
	ErrInvalidSeekInterval = errors.New("gcadpcm: samples per seek table entry must be at least 1")
)
