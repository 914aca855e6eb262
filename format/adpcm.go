package format

import (
	"errors"
	"fmt"

	"github.com/lambertjamesd/gcadpcm/gcadpcm"
	"golang.org/x/sync/errgroup"
)

// AdpcmFormat is a multi-channel GameCube ADPCM stream. The channel set is
// fixed at Build; SetLoop and SetAlignment change how every channel is
// presented.
//
// Build clones the channels it is given, so a format never shares channel
// state with its source channels or with formats derived from it.
type AdpcmFormat struct {
	base
	channels          []*gcadpcm.Channel
	alignmentMultiple int
}

func (f *AdpcmFormat) Kind() Kind {
	return KindGcAdpcm
}

func (f *AdpcmFormat) alignmentNeeded() bool {
	return f.looping && gcadpcm.AlignmentNeeded(f.alignmentMultiple, f.loopStart, f.loopEnd)
}

func (f *AdpcmFormat) alignmentOffset() int {
	if !f.alignmentNeeded() {
		return 0
	}

	return gcadpcm.GetNextMultiple(f.loopStart, f.alignmentMultiple) - f.loopStart
}

// SampleCount is the length of the stream as written, including samples
// added by alignment.
func (f *AdpcmFormat) SampleCount() int {
	if f.alignmentNeeded() {
		return f.loopEnd + f.alignmentOffset()
	}

	return f.UnalignedSampleCount()
}

func (f *AdpcmFormat) UnalignedSampleCount() int {
	return f.channels[0].UnalignedSampleCount()
}

func (f *AdpcmFormat) ChannelCount() int {
	return len(f.channels)
}

func (f *AdpcmFormat) LoopStart() int {
	return f.loopStart + f.alignmentOffset()
}

func (f *AdpcmFormat) LoopEnd() int {
	return f.loopEnd + f.alignmentOffset()
}

func (f *AdpcmFormat) AlignmentMultiple() int {
	return f.alignmentMultiple
}

func (f *AdpcmFormat) Tracks() []AudioTrack {
	return f.tracksFor(len(f.channels))
}

func (f *AdpcmFormat) Channel(index int) *gcadpcm.Channel {
	return f.channels[index]
}

func (f *AdpcmFormat) Channels() []*gcadpcm.Channel {
	return append([]*gcadpcm.Channel(nil), f.channels...)
}

// SetLoop validates and applies new loop points, then realigns every
// channel. On error the format is left as it was.
func (f *AdpcmFormat) SetLoop(loop bool, loopStart int, loopEnd int) error {
	if !loop {
		loopStart = 0
		loopEnd = 0
	}

	if err := validateLoop(loop, loopStart, loopEnd, f.UnalignedSampleCount()); err != nil {
		return err
	}

	var previous = f.settings()

	f.looping = loop
	f.loopStart = loopStart
	f.loopEnd = loopEnd

	return f.applyOrRestore(previous)
}

// SetAlignment sets the multiple the loop start is moved to and realigns
// every channel. Zero disables alignment.
func (f *AdpcmFormat) SetAlignment(multiple int) error {
	if multiple < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAlignment, multiple)
	}

	var previous = f.settings()

	f.alignmentMultiple = multiple

	return f.applyOrRestore(previous)
}

type loopSettings struct {
	looping           bool
	loopStart         int
	loopEnd           int
	alignmentMultiple int
}

func (f *AdpcmFormat) settings() loopSettings {
	return loopSettings{
		looping:           f.looping,
		loopStart:         f.loopStart,
		loopEnd:           f.loopEnd,
		alignmentMultiple: f.alignmentMultiple,
	}
}

// applyOrRestore realigns every channel for the current settings. If any
// channel fails, previous is put back and the channels are realigned to it.
func (f *AdpcmFormat) applyOrRestore(previous loopSettings) error {
	var err = f.applyAlignment()

	if err == nil {
		return nil
	}

	f.looping = previous.looping
	f.loopStart = previous.loopStart
	f.loopEnd = previous.loopEnd
	f.alignmentMultiple = previous.alignmentMultiple

	if restoreErr := f.applyAlignment(); restoreErr != nil {
		return errors.Join(err, restoreErr)
	}

	return err
}

// applyAlignment runs one task per channel. Each task only touches its own
// channel.
func (f *AdpcmFormat) applyAlignment() error {
	var multiple = f.alignmentMultiple
	var loopStart = f.loopStart
	var loopEnd = f.loopEnd

	if !f.looping {
		multiple = 0
		loopStart = 0
		loopEnd = 0
	}

	var alignedLoopStart = f.LoopStart()
	var group errgroup.Group

	for _, channel := range f.channels {
		channel := channel
		group.Go(func() error {
			if _, err := channel.SetAlignment(multiple, loopStart, loopEnd); err != nil {
				return err
			}

			if !f.looping {
				return nil
			}

			_, err := channel.GetLoopContext(alignedLoopStart, false)
			return err
		})
	}

	return group.Wait()
}

// ToPcm16 decodes every channel in parallel.
func (f *AdpcmFormat) ToPcm16() (*Pcm16Format, error) {
	var pcm = make([][]int16, len(f.channels))
	var group errgroup.Group

	for i, channel := range f.channels {
		i, channel := i, channel
		group.Go(func() error {
			decoded, err := channel.Decode()
			pcm[i] = decoded
			return err
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return NewPcm16FormatBuilder(pcm, f.sampleRate).
		WithLoop(f.looping, f.LoopStart(), f.LoopEnd()).
		WithTracks(f.tracks).
		Build()
}

func (f *AdpcmFormat) GetChannels(indices ...int) (AudioFormat, error) {
	if err := validateIndices(indices, len(f.channels)); err != nil {
		return nil, err
	}

	var channels = make([]*gcadpcm.Channel, len(indices))

	for i, index := range indices {
		channels[i] = f.channels[index]
	}

	return f.rebuild(channels)
}

func (f *AdpcmFormat) Add(other AudioFormat) (AudioFormat, error) {
	var added *AdpcmFormat

	if adpcm, ok := other.(*AdpcmFormat); ok {
		added = adpcm
	} else {
		pcm, err := other.ToPcm16()

		if err != nil {
			return nil, err
		}

		added, err = EncodeFromPcm16(pcm)

		if err != nil {
			return nil, err
		}
	}

	return f.rebuild(append(f.Channels(), added.channels...))
}

func (f *AdpcmFormat) rebuild(channels []*gcadpcm.Channel) (*AdpcmFormat, error) {
	return NewAdpcmFormatBuilder(channels, f.sampleRate).
		WithLoop(f.looping, f.loopStart, f.loopEnd).
		WithAlignment(f.alignmentMultiple).
		Build()
}

// EncodeFromPcm16 encodes every channel of pcm in parallel, deriving
// coefficients for each channel on its own.
func EncodeFromPcm16(pcm *Pcm16Format) (*AdpcmFormat, error) {
	return EncodeFromPcm16WithCoefficients(pcm, nil)
}

// EncodeFromPcm16WithCoefficients encodes channel i with coefs[i]. Channels
// past the end of coefs get their own coefficients.
func EncodeFromPcm16WithCoefficients(pcm *Pcm16Format, coefs []gcadpcm.Coefficients) (*AdpcmFormat, error) {
	var channels = make([]*gcadpcm.Channel, len(pcm.channels))
	var group errgroup.Group

	for i, samples := range pcm.channels {
		i, samples := i, samples
		group.Go(func() error {
			if i < len(coefs) {
				channels[i] = gcadpcm.EncodeChannelWithCoefficients(samples, coefs[i])
			} else {
				channels[i] = gcadpcm.EncodeChannel(samples)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return NewAdpcmFormatBuilder(channels, pcm.sampleRate).
		WithLoop(pcm.looping, pcm.loopStart, pcm.loopEnd).
		WithTracks(pcm.tracks).
		Build()
}

type AdpcmFormatBuilder struct {
	channels          []*gcadpcm.Channel
	sampleRate        int
	looping           bool
	loopStart         int
	loopEnd           int
	alignmentMultiple int
	tracks            []AudioTrack
}

func NewAdpcmFormatBuilder(channels []*gcadpcm.Channel, sampleRate int) *AdpcmFormatBuilder {
	return &AdpcmFormatBuilder{
		channels:   channels,
		sampleRate: sampleRate,
	}
}

func (builder *AdpcmFormatBuilder) WithLoop(loop bool, loopStart int, loopEnd int) *AdpcmFormatBuilder {
	builder.looping = loop
	builder.loopStart = loopStart
	builder.loopEnd = loopEnd
	return builder
}

func (builder *AdpcmFormatBuilder) WithAlignment(multiple int) *AdpcmFormatBuilder {
	builder.alignmentMultiple = multiple
	return builder
}

func (builder *AdpcmFormatBuilder) WithTracks(tracks []AudioTrack) *AdpcmFormatBuilder {
	builder.tracks = tracks
	return builder
}

func (builder *AdpcmFormatBuilder) Build() (*AdpcmFormat, error) {
	if len(builder.channels) == 0 {
		return nil, ErrNoChannels
	}

	for i, channel := range builder.channels {
		if channel == nil {
			return nil, fmt.Errorf("%w: index %d", ErrNilChannel, i)
		}
	}

	var sampleCount = builder.channels[0].UnalignedSampleCount()

	for i, channel := range builder.channels {
		if channel.UnalignedSampleCount() != sampleCount {
			return nil, fmt.Errorf("%w: channel %d has %d samples, expected %d", ErrChannelLengthMismatch, i, channel.UnalignedSampleCount(), sampleCount)
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

	if builder.alignmentMultiple < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAlignment, builder.alignmentMultiple)
	}

	var channels = make([]*gcadpcm.Channel, len(builder.channels))

	for i, channel := range builder.channels {
		channels[i] = channel.Clone()
	}

	var result = &AdpcmFormat{
		base: base{
			sampleRate: builder.sampleRate,
			looping:    builder.looping,
			tracks:     append([]AudioTrack(nil), builder.tracks...),
		},
		channels:          channels,
		alignmentMultiple: builder.alignmentMultiple,
	}

	if builder.looping {
		result.loopStart = builder.loopStart
		result.loopEnd = builder.loopEnd
	}

	if err := result.applyAlignment(); err != nil {
		return nil, err
	}

	return result, nil
}
