package format

import "errors"

var (
	// ErrNoChannels indicates a format built without any channels.
	ErrNoChannels = errors.New("format: at least one channel is required")

	// ErrNilChannel indicates a nil entry in the channel list.
	ErrNilChannel = errors.New("format: channel is nil")

	// ErrChannelLengthMismatch indicates channels with different sample counts.
	ErrChannelLengthMismatch = errors.New("format: all channels must have the same sample count")

	// ErrLoopOutOfRange indicates loop points outside [0, SampleCount] or an
	// end before the start.
	ErrLoopOutOfRange = errors.New("format: loop points out of range")

	// ErrInvalidAlignment indicates a negative alignment multiple.
	ErrInvalidAlignment = errors.New("format: invalid alignment multiple")

	// ErrInvalidTrack indicates a track referencing a channel that does not exist.
	ErrInvalidTrack = errors.New("format: track references a missing channel")

	// ErrInvalidChannelIndex indicates a channel index outside the format.
	ErrInvalidChannelIndex = errors.New("format: channel index out of range")

	// ErrInvalidSampleRate indicates a sample rate that is not positive.
	ErrInvalidSampleRate = errors.New("format: sample rate must be positive")
)
