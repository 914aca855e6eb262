package audioconvert

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/lambertjamesd/gcadpcm/aiff"
	"github.com/lambertjamesd/gcadpcm/format"
)

func EnsureDirectory(filename string) error {
	var dir = filepath.Dir(filename)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		err = EnsureDirectory(dir)
		if err != nil {
			return err
		}
		return os.Mkdir(dir, 0776)
	}

	return nil
}

func EncodeSamples(data []int16, order binary.ByteOrder) []byte {
	var result = make([]byte, len(data)*2)

	for index, sample := range data {
		order.PutUint16(result[index*2:], uint16(sample))
	}

	return result
}

func DecodeSamples(data []byte, order binary.ByteOrder) []int16 {
	var result = make([]int16, len(data)/2)

	for index := range result {
		result[index] = int16(order.Uint16(data[index*2:]))
	}

	return result
}

func interleave(pcm *format.Pcm16Format) []int {
	var channelCount = pcm.ChannelCount()
	var result = make([]int, pcm.SampleCount()*channelCount)

	for channel := 0; channel < channelCount; channel++ {
		for frame, sample := range pcm.Channel(channel) {
			result[frame*channelCount+channel] = int(sample)
		}
	}

	return result
}

func WriteWav(filename string, pcm *format.Pcm16Format) error {
	EnsureDirectory(filename)

	waveFileOut, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0664)

	if err != nil {
		return err
	}

	var encoder = wav.NewEncoder(waveFileOut, pcm.SampleRate(), 16, pcm.ChannelCount(), wavFormatPcm)

	err = encoder.Write(&audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: pcm.ChannelCount(),
			SampleRate:  pcm.SampleRate(),
		},
		Data:           interleave(pcm),
		SourceBitDepth: 16,
	})

	if err == nil {
		err = encoder.Close()
	}

	if closeErr := waveFileOut.Close(); err == nil {
		err = closeErr
	}

	return err
}

// WriteAiff writes pcm as an uncompressed AIFF, keeping its loop points.
func WriteAiff(filename string, pcm *format.Pcm16Format) error {
	var aiffFile = aiff.New(pcm.Channels(), pcm.SampleRate(), pcm.Looping(), pcm.LoopStart(), pcm.LoopEnd())

	EnsureDirectory(filename)

	aiffFileOut, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0664)

	if err != nil {
		return err
	}

	err = aiffFile.Serialize(aiffFileOut)

	if closeErr := aiffFileOut.Close(); err == nil {
		err = closeErr
	}

	return err
}

// WritePcm16 picks the writer by extension.
func WritePcm16(filename string, pcm *format.Pcm16Format) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		return WriteWav(filename, pcm)
	case ".aif", ".aiff":
		return WriteAiff(filename, pcm)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}
}
