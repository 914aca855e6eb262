package format

import "fmt"

// Pcm16Format is a multi-channel stream of 16-bit samples.
type Pcm16Format struct {
	base
	channels    [][]int16
	sampleCount int
}

func (f *Pcm16Format) Kind() Kind {
	return KindPcm16
}

func (f *Pcm16Format) SampleCount() int {
	return f.sampleCount
}

func (f *Pcm16Format) ChannelCount() int {
	return len(f.channels)
}

func (f *Pcm16Format) LoopStart() int {
	return f.loopStart
}

func (f *Pcm16Format) LoopEnd() int {
	return f.loopEnd
}

func (f *Pcm16Format) Tracks() []AudioTrack {
	return f.tracksFor(len(f.channels))
}

// Channel returns the samples of one channel. The slice is shared with the
// format and must not be modified.
func (f *Pcm16Format) Channel(index int) []int16 {
	return f.channels[index]
}

func (f *Pcm16Format) Channels() [][]int16 {
	return append([][]int16(nil), f.channels...)
}

func (f *Pcm16Format) ToPcm16() (*Pcm16Format, error) {
	return f, nil
}

func (f *Pcm16Format) GetChannels(indices ...int) (AudioFormat, error) {
	if err := validateIndices(indices, len(f.channels)); err != nil {
		return nil, err
	}

	var channels = make([][]int16, len(indices))

	for i, index := range indices {
		channels[i] = f.channels[index]
	}

	return NewPcm16FormatBuilder(channels, f.sampleRate).
		WithLoop(f.looping, f.loopStart, f.loopEnd).
		Build()
}

func (f *Pcm16Format) Add(other AudioFormat) (AudioFormat, error) {
	pcm, err := other.ToPcm16()

	if err != nil {
		return nil, err
	}

	var channels = append(f.Channels(), pcm.channels...)

	return NewPcm16FormatBuilder(channels, f.sampleRate).
		WithLoop(f.looping, f.loopStart, f.loopEnd).
		Build()
}

type Pcm16FormatBuilder struct {
	channels   [][]int16
	sampleRate int
	looping    bool
	loopStart  int
	loopEnd    int
	tracks     []AudioTrack
}

func NewPcm16FormatBuilder(channels [][]int16, sampleRate int) *Pcm16FormatBuilder {
	return &Pcm16FormatBuilder{
		channels:   channels,
		sampleRate: sampleRate,
	}
}

func (builder *Pcm16FormatBuilder) WithLoop(loop bool, loopStart int, loopEnd int) *Pcm16FormatBuilder {
	builder.looping = loop
	builder.loopStart = loopStart
	builder.loopEnd = loopEnd
	return builder
}

func (builder *Pcm16FormatBuilder) WithTracks(tracks []AudioTrack) *Pcm16FormatBuilder {
	builder.tracks = tracks
	return builder
}

func (builder *Pcm16FormatBuilder) Build() (*Pcm16Format, error) {
	if len(builder.channels) == 0 {
		return nil, ErrNoChannels
	}

	var sampleCount = len(builder.channels[0])

	for i, channel := range builder.channels {
		if channel == nil {
			return nil, fmt.Errorf("%w: index %d", ErrNilChannel, i)
		}

		if len(channel) != sampleCount {
			return nil, fmt.Errorf("%w: channel %d has %d samples, expected %d", ErrChannelLengthMismatch, i, len(channel), sampleCount)
		}
	}

	if builder.sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, builder.sampleRate)
	}

	if err := validateLoop(builder.looping, builder.loopStart, builder.loopEnd, sampleCount); err != nil {
		return nil, err
	}

	if err := validateTracks(builder.tracks, len(builder.channels)); err != nil {
		return nil, err
	}

	var result = &Pcm16Format{
		base: base{
			sampleRate: builder.sampleRate,
			looping:    builder.looping,
			tracks:     append([]AudioTrack(nil), builder.tracks...),
		},
		channels:    append([][]int16(nil), builder.channels...),
		sampleCount: sampleCount,
	}

	if builder.looping {
		result.loopStart = builder.loopStart
		result.loopEnd = builder.loopEnd
	}

	return result, nil
}
