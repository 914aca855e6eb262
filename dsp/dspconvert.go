package dsp

import (
	"fmt"
	"io"

	"github.com/lambertjamesd/gcadpcm/format"
	"github.com/lambertjamesd/gcadpcm/gcadpcm"
)

// FromChannel builds a file from the active view of channel. Loop points are
// in samples of that view. The loop context stored in the header is always
// calculated from the audio, never taken from a supplied value.
func FromChannel(channel *gcadpcm.Channel, sampleRate int, looping bool, loopStart int, loopEnd int) (*File, error) {
	var sampleCount = channel.SampleCount()
	var data = channel.GetAudioData()
	var hist1, hist2 = channel.StartContext()

	var result = &File{
		Header: Header{
			SampleCount:    uint32(sampleCount),
			NibbleCount:    uint32(gcadpcm.SampleCountToNibbleCount(sampleCount)),
			SampleRate:     uint32(sampleRate),
			Format:         FORMAT_ADPCM,
			CurrentAddress: uint32(gcadpcm.SampleToNibble(0)),
			Coefs:          channel.Coefs(),
			Gain:           channel.Gain(),
			Hist1:          hist1,
			Hist2:          hist2,
			ChannelCount:   1,
		},
		Data: append([]byte(nil), data...),
	}

	if len(data) > 0 {
		result.Header.PredScale = uint16(data[0])
	}

	if looping {
		if loopStart < 0 || loopEnd < loopStart || loopEnd > sampleCount {
			return nil, fmt.Errorf("%w: loop %d..%d in %d samples", gcadpcm.ErrLoopOutOfRange, loopStart, loopEnd, sampleCount)
		}

		context, err := channel.GetLoopContext(loopStart, true)

		if err != nil {
			return nil, err
		}

		result.Header.LoopFlag = 1
		result.Header.LoopStart = uint32(gcadpcm.SampleToNibble(loopStart))
		result.Header.LoopEnd = uint32(gcadpcm.SampleToNibble(loopEnd - 1))
		result.Header.LoopPredScale = uint16(context.PredScale)
		result.Header.LoopHist1 = context.Hist1
		result.Header.LoopHist2 = context.Hist2
	}

	return result, nil
}

// ToChannel wraps the file's audio in a channel. The header loop context is
// registered as a supplied value.
func (file *File) ToChannel() (*gcadpcm.Channel, error) {
	var builder = gcadpcm.NewChannelBuilder(file.Data, file.Header.Coefs, int(file.Header.SampleCount)).
		WithGain(file.Header.Gain).
		WithStartContext(file.Header.Hist1, file.Header.Hist2)

	if file.Looping() {
		builder.WithLoopContext(file.LoopStartSample(), byte(file.Header.LoopPredScale), file.Header.LoopHist1, file.Header.LoopHist2)
	}

	return builder.Build()
}

// ReadFormat reads one file per channel and combines them into a single
// stream. Every file must agree on length, rate and loop points.
func ReadFormat(readers ...io.Reader) (*format.AdpcmFormat, error) {
	if len(readers) == 0 {
		return nil, format.ErrNoChannels
	}

	var files = make([]*File, len(readers))
	var channels = make([]*gcadpcm.Channel, len(readers))

	for i, reader := range readers {
		file, err := Parse(reader)

		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}

		if i > 0 && !sameStream(&files[0].Header, &file.Header) {
			return nil, fmt.Errorf("%w: channel %d", ErrFormatMismatch, i)
		}

		channel, err := file.ToChannel()

		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}

		files[i] = file
		channels[i] = channel
	}

	return format.NewAdpcmFormatBuilder(channels, int(files[0].Header.SampleRate)).
		WithLoop(files[0].Looping(), files[0].LoopStartSample(), files[0].LoopEndSample()).
		Build()
}

func sameStream(a *Header, b *Header) bool {
	if a.SampleCount != b.SampleCount || a.SampleRate != b.SampleRate || a.LoopFlag != b.LoopFlag {
		return false
	}

	return a.LoopFlag == 0 || (a.LoopStart == b.LoopStart && a.LoopEnd == b.LoopEnd)
}

// WriteFormat writes each channel of f to the matching writer, using the
// aligned audio and loop points.
func WriteFormat(f *format.AdpcmFormat, writers ...io.Writer) error {
	if len(writers) != f.ChannelCount() {
		return fmt.Errorf("%w: %d writers for %d channels", ErrFormatMismatch, len(writers), f.ChannelCount())
	}

	for i, channel := range f.Channels() {
		file, err := FromChannel(channel, f.SampleRate(), f.Looping(), f.LoopStart(), f.LoopEnd())

		if err != nil {
			return fmt.Errorf("channel %d: %w", i, err)
		}

		file.Header.ChannelCount = uint16(f.ChannelCount())

		err = file.Serialize(writers[i])

		if err != nil {
			return fmt.Errorf("channel %d: %w", i, err)
		}
	}

	return nil
}
