package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
)

const usage = `Usage
	gcadpcm input.wav output.dsp [--loop-start N --loop-end N] [--align N] [--sample-rate N] [--table file.table]
	gcadpcm input.dsp [input_1.dsp ...] output.wav
	gcadpcm input.wav output.table [--sample-rate N]
	gcadpcm --info input.dsp [...]

Inputs may be .wav, .aiff, .flac, .mp3 or .ogg. Decoded output may be .wav or .aiff.
A stream with more than one channel is written as output_0.dsp, output_1.dsp, ...`

func createArgs() Args {
	var args = NewArgs(usage)

	args.AddIntegerArg([]string{"--loop-start"}, "first sample of the loop, in output samples", -1, -1, math.MaxInt32)
	args.AddIntegerArg([]string{"--loop-end"}, "sample after the end of the loop", -1, -1, math.MaxInt32)
	args.AddIntegerArg([]string{"--align"}, "move the loop start to a multiple of this many samples", 0, 0, math.MaxInt32)
	args.AddIntegerArg([]string{"-s", "--sample-rate"}, "resample the input before encoding", 0, 0, 192000)
	args.AddStringArg([]string{"--table"}, "coefficient table to encode with instead of searching", "")
	args.AddFlagArg([]string{"--info"}, "print the header of each .dsp file")
	args.AddFlagArg([]string{"-h", "--help"}, "show this message")

	return args
}

func main() {
	var args = createArgs()

	parsed, errs := args.Parse(os.Args[1:])

	if len(errs) != 0 {
		for _, err := range errs {
			log.Println(err.Error())
		}
		log.Fatal(args.CreateHelpMessage())
	}

	if parsed.Flag("--help") {
		fmt.Println(args.CreateHelpMessage())
		return
	}

	if parsed.Flag("--info") {
		for _, input := range parsed.Positional {
			if err := printInfo(os.Stdout, input); err != nil {
				log.Fatal(err)
			}
		}
		return
	}

	if len(parsed.Positional) < 2 {
		log.Fatal(args.CreateHelpMessage())
	}

	var inputs = parsed.Positional[0 : len(parsed.Positional)-1]
	var output = parsed.Positional[len(parsed.Positional)-1]

	var ext = strings.ToLower(filepath.Ext(inputs[0]))
	var outExt = strings.ToLower(filepath.Ext(output))

	if ext == ".dsp" {
		err := decodeAudio(inputs, output)

		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("Wrote audio to %s\n", output)
		return
	}

	if len(inputs) != 1 {
		log.Fatal(fmt.Sprintf("Expected a single input file, got %d", len(inputs)))
	}

	settings, err := ParseConversionSettings(parsed, inputs[0])

	if err != nil {
		log.Fatal(err)
	}

	if outExt == ".table" {
		err = writeTable(inputs[0], output, settings)

		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("Wrote table to %s\n", output)
	} else if outExt == ".dsp" {
		filenames, err := encodeAudio(inputs[0], output, settings)

		if err != nil {
			log.Fatal(err)
		}

		for _, filename := range filenames {
			fmt.Printf("Wrote channel to %s\n", filename)
		}
	} else {
		log.Fatal(fmt.Sprintf("Could not convert %s to %s", inputs[0], output))
	}
}
