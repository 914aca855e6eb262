// Package format groups codec channels into multi-channel streams with a
// sample rate, loop points and track layout.
package format

import "fmt"

// Kind identifies the concrete variant behind an AudioFormat.
type Kind int

const (
	KindPcm16 Kind = iota
	KindGcAdpcm
)

func (kind Kind) String() string {
	switch kind {
	case KindPcm16:
		return "pcm16"
	case KindGcAdpcm:
		return "gc-adpcm"
	default:
		return fmt.Sprintf("Kind(%d)", int(kind))
	}
}

// AudioFormat is implemented by *Pcm16Format and *AdpcmFormat only.
type AudioFormat interface {
	Kind() Kind
	SampleCount() int
	SampleRate() int
	ChannelCount() int
	Looping() bool
	LoopStart() int
	LoopEnd() int
	Tracks() []AudioTrack

	ToPcm16() (*Pcm16Format, error)

	// GetChannels returns a format holding the listed channels, in order.
	GetChannels(indices ...int) (AudioFormat, error)

	// Add returns a format with the channels of other appended, converting
	// other to this format's kind if needed.
	Add(other AudioFormat) (AudioFormat, error)
}

// base holds the fields shared by every variant. Loop points are the values
// before any alignment.
type base struct {
	sampleRate int
	looping    bool
	loopStart  int
	loopEnd    int
	tracks     []AudioTrack
}

func (b *base) SampleRate() int {
	return b.sampleRate
}

func (b *base) Looping() bool {
	return b.looping
}

func (b *base) UnalignedLoopStart() int {
	return b.loopStart
}

func (b *base) UnalignedLoopEnd() int {
	return b.loopEnd
}

func (b *base) tracksFor(channelCount int) []AudioTrack {
	if len(b.tracks) == 0 {
		return DefaultTracks(channelCount)
	}

	return append([]AudioTrack(nil), b.tracks...)
}

func validateLoop(looping bool, loopStart int, loopEnd int, sampleCount int) error {
	if !looping {
		return nil
	}

	if loopStart < 0 || loopEnd < loopStart || loopEnd > sampleCount {
		return fmt.Errorf("%w: [%d, %d] in %d samples", ErrLoopOutOfRange, loopStart, loopEnd, sampleCount)
	}

	return nil
}

func validateIndices(indices []int, channelCount int) error {
	for _, index := range indices {
		if index < 0 || index >= channelCount {
			return fmt.Errorf("%w: %d of %d", ErrInvalidChannelIndex, index, channelCount)
		}
	}

	return nil
}
