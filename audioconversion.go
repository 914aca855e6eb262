package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lambertjamesd/gcadpcm/audioconvert"
	"github.com/lambertjamesd/gcadpcm/dsp"
	"github.com/lambertjamesd/gcadpcm/gcadpcm"
)

const seekTableInterval = 0x3800

type ConversionSettings struct {
	Looping       bool
	LoopStart     int
	LoopEnd       int
	Alignment     int
	SampleRate    int
	TableFilename string
}

func ParseConversionSettings(parsed *ParsedArgs, input string) (*ConversionSettings, error) {
	var result = ConversionSettings{
		LoopStart:     parsed.Int("--loop-start"),
		LoopEnd:       parsed.Int("--loop-end"),
		Alignment:     parsed.Int("--align"),
		SampleRate:    parsed.Int("--sample-rate"),
		TableFilename: parsed.String("--table"),
	}

	if (result.LoopStart < 0) != (result.LoopEnd < 0) {
		return nil, errors.New("--loop-start and --loop-end must be used together")
	}

	result.Looping = result.LoopStart >= 0

	if result.Looping && result.LoopEnd < result.LoopStart {
		return nil, fmt.Errorf("--loop-end %d is before --loop-start %d", result.LoopEnd, result.LoopStart)
	}

	if result.TableFilename == "" {
		result.TableFilename = audioconvert.TableFilename(input)
	} else if _, err := os.Stat(result.TableFilename); err != nil {
		return nil, err
	}

	return &result, nil
}

// ChannelFilenames names one output file per channel. A mono stream keeps
// the output name; otherwise the channel index is appended.
func ChannelFilenames(output string, channelCount int) []string {
	if channelCount == 1 {
		return []string{output}
	}

	var ext = filepath.Ext(output)
	var base = output[0 : len(output)-len(ext)]
	var result = make([]string, channelCount)

	for i := range result {
		result[i] = fmt.Sprintf("%s_%d%s", base, i, ext)
	}

	return result
}

func encodeAudio(input string, output string, settings *ConversionSettings) ([]string, error) {
	pcm, err := audioconvert.ReadPcm16(input)

	if err != nil {
		return nil, err
	}

	pcm, err = audioconvert.ResamplePcm16(pcm, settings.SampleRate)

	if err != nil {
		return nil, err
	}

	encoded, err := audioconvert.Compress(pcm, settings.TableFilename)

	if err != nil {
		return nil, err
	}

	if settings.Looping {
		err = encoded.SetLoop(true, settings.LoopStart, settings.LoopEnd)

		if err != nil {
			return nil, err
		}
	}

	err = encoded.SetAlignment(settings.Alignment)

	if err != nil {
		return nil, err
	}

	var filenames = ChannelFilenames(output, encoded.ChannelCount())

	err = writeFiles(filenames, func(writers []io.Writer) error {
		return dsp.WriteFormat(encoded, writers...)
	})

	if err != nil {
		return nil, err
	}

	return filenames, nil
}

// writeFiles creates every file, passes them to write, then closes them.
// The first error from creating, writing or closing is returned.
func writeFiles(filenames []string, write func(writers []io.Writer) error) error {
	var files []*os.File
	var err error

	for _, filename := range filenames {
		audioconvert.EnsureDirectory(filename)

		var file *os.File
		file, err = os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0664)

		if err != nil {
			break
		}

		files = append(files, file)
	}

	if err == nil {
		var writers = make([]io.Writer, len(files))

		for i, file := range files {
			writers[i] = file
		}

		err = write(writers)
	}

	for _, file := range files {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}

	return err
}

func decodeAudio(inputs []string, output string) error {
	var readers []io.Reader

	for _, input := range inputs {
		file, err := os.Open(input)

		if err != nil {
			return err
		}

		defer file.Close()

		readers = append(readers, file)
	}

	encoded, err := dsp.ReadFormat(readers...)

	if err != nil {
		return err
	}

	pcm, err := encoded.ToPcm16()

	if err != nil {
		return err
	}

	return audioconvert.WritePcm16(output, pcm)
}

func writeTable(input string, output string, settings *ConversionSettings) error {
	pcm, err := audioconvert.ReadPcm16(input)

	if err != nil {
		return err
	}

	pcm, err = audioconvert.ResamplePcm16(pcm, settings.SampleRate)

	if err != nil {
		return err
	}

	return writeFiles([]string{output}, func(writers []io.Writer) error {
		return audioconvert.WriteCoefficients(writers[0], audioconvert.CalculateTable(pcm))
	})
}

func printInfo(out io.Writer, input string) error {
	file, err := os.Open(input)

	if err != nil {
		return err
	}

	defer file.Close()

	dspFile, err := dsp.Parse(file)

	if err != nil {
		return err
	}

	var header = &dspFile.Header

	fmt.Fprintf(out, "%s\n", input)
	fmt.Fprintf(out, "  samples:      %d (%d nibbles, %d bytes)\n", header.SampleCount, header.NibbleCount, len(dspFile.Data))
	fmt.Fprintf(out, "  sample rate:  %d\n", header.SampleRate)

	if dspFile.Looping() {
		fmt.Fprintf(out, "  loop:         %d..%d\n", dspFile.LoopStartSample(), dspFile.LoopEndSample())
		fmt.Fprintf(out, "  loop context: ps 0x%02x hist %d %d\n", header.LoopPredScale, header.LoopHist1, header.LoopHist2)
	} else {
		fmt.Fprintf(out, "  loop:         none\n")
	}

	fmt.Fprintf(out, "  start:        ps 0x%02x hist %d %d gain %d\n", header.PredScale, header.Hist1, header.Hist2, header.Gain)

	for pair := 0; pair < len(header.Coefs)/2; pair++ {
		fmt.Fprintf(out, "  coef %d:       %6d %6d\n", pair, header.Coefs[pair*2], header.Coefs[pair*2+1])
	}

	channel, err := dspFile.ToChannel()

	if err != nil {
		return err
	}

	table, err := channel.GetSeekTable(seekTableInterval, false)

	if err != nil {
		return err
	}

	fmt.Fprintf(out, "  seek table:   %d entries every %d samples\n", len(table.Table)/2, seekTableInterval)

	if dspFile.Looping() && gcadpcm.LoopPointsAreAligned(dspFile.LoopStartSample(), gcadpcm.SamplesPerFrame) {
		fmt.Fprintf(out, "  loop start is frame aligned\n")
	}

	return nil
}
