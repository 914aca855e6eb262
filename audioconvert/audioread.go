package audioconvert

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/lambertjamesd/gcadpcm/aiff"
	"github.com/lambertjamesd/gcadpcm/format"
	"github.com/mewkiz/flac"
)

var ErrUnsupportedFile = errors.New("audioconvert: not a supported sound file")

const wavFormatPcm = 1

func clampSample(value int) int16 {
	if value > 32767 {
		return 32767
	} else if value < -32768 {
		return -32768
	}

	return int16(value)
}

// to16Bit rescales a signed sample of the given bit depth.
func to16Bit(value int, bitDepth int) int16 {
	if bitDepth > 16 {
		return clampSample(value >> (bitDepth - 16))
	}

	return clampSample(value << (16 - bitDepth))
}

func deinterleave(samples []int16, channelCount int) [][]int16 {
	var frames = len(samples) / channelCount
	var result = make([][]int16, channelCount)

	for channel := range result {
		result[channel] = make([]int16, frames)

		for frame := 0; frame < frames; frame++ {
			result[channel][frame] = samples[frame*channelCount+channel]
		}
	}

	return result
}

func readWav(file *os.File) (*format.Pcm16Format, error) {
	var decoder = wav.NewDecoder(file)

	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid wav file", file.Name())
	}

	if decoder.WavAudioFormat != wavFormatPcm {
		return nil, fmt.Errorf("%s should be pcm", file.Name())
	}

	buffer, err := decoder.FullPCMBuffer()

	if err != nil {
		return nil, err
	}

	var bitDepth = int(decoder.BitDepth)
	var samples = make([]int16, len(buffer.Data))

	for i, value := range buffer.Data {
		if bitDepth == 8 {
			// 8-bit wav is unsigned
			value = value - 128
		}

		samples[i] = to16Bit(value, bitDepth)
	}

	return format.NewPcm16FormatBuilder(deinterleave(samples, int(decoder.NumChans)), int(decoder.SampleRate)).Build()
}

func readFlac(file *os.File) (*format.Pcm16Format, error) {
	stream, err := flac.New(file)

	if err != nil {
		return nil, fmt.Errorf("decoding flac: %w", err)
	}

	defer stream.Close()

	var channelCount = int(stream.Info.NChannels)
	var bitDepth = int(stream.Info.BitsPerSample)
	var channels = make([][]int16, channelCount)

	for {
		frame, err := stream.ParseNext()

		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decoding flac: %w", err)
		}

		for channel := range channels {
			for _, value := range frame.Subframes[channel].Samples {
				channels[channel] = append(channels[channel], to16Bit(int(value), bitDepth))
			}
		}
	}

	for channel := range channels {
		if channels[channel] == nil {
			channels[channel] = []int16{}
		}
	}

	return format.NewPcm16FormatBuilder(channels, int(stream.Info.SampleRate)).Build()
}

// readMp3 reads the whole stream. go-mp3 always produces 16-bit stereo.
func readMp3(file *os.File) (*format.Pcm16Format, error) {
	decoder, err := mp3.NewDecoder(file)

	if err != nil {
		return nil, fmt.Errorf("decoding mp3: %w", err)
	}

	data, err := io.ReadAll(decoder)

	if err != nil {
		return nil, fmt.Errorf("decoding mp3: %w", err)
	}

	return format.NewPcm16FormatBuilder(deinterleave(DecodeSamples(data, binary.LittleEndian), 2), decoder.SampleRate()).Build()
}

func readOgg(file *os.File) (*format.Pcm16Format, error) {
	reader, err := oggvorbis.NewReader(file)

	if err != nil {
		return nil, fmt.Errorf("decoding ogg: %w", err)
	}

	var samples []int16
	var buffer = make([]float32, 4096*reader.Channels())

	for {
		n, err := reader.Read(buffer)

		for _, value := range buffer[:n] {
			samples = append(samples, clampSample(int(value*32767)))
		}

		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decoding ogg: %w", err)
		}
	}

	return format.NewPcm16FormatBuilder(deinterleave(samples, reader.Channels()), reader.SampleRate()).Build()
}

func readAiff(file *os.File) (*format.Pcm16Format, error) {
	aiffFile, err := aiff.Parse(file)

	if err != nil {
		return nil, err
	}

	loopStart, loopEnd, looping := aiffFile.LoopPoints()

	return format.NewPcm16FormatBuilder(aiffFile.Channels(), aiffFile.SampleRate()).
		WithLoop(looping, loopStart, loopEnd).
		Build()
}

// ReadPcm16 loads a sound file as 16-bit samples, choosing the decoder by
// extension. Loop points are only read from AIFF files.
func ReadPcm16(filename string) (*format.Pcm16Format, error) {
	var read func(*os.File) (*format.Pcm16Format, error)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		read = readWav
	case ".flac":
		read = readFlac
	case ".mp3":
		read = readMp3
	case ".ogg":
		read = readOgg
	case ".aif", ".aiff":
		read = readAiff
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}

	file, err := os.Open(filename)

	if err != nil {
		return nil, err
	}

	defer file.Close()

	result, err := read(file)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	return result, nil
}
