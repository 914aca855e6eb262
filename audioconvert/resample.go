package audioconvert

import (
	"math"

	"github.com/lambertjamesd/gcadpcm/format"
)

func ConvertSampleLocation(location int, to int, from int) int {
	var result = float64(location)*float64(to)/float64(from) + 0.5
	return int(math.Floor(result))
}

func lerpSample(a int16, b int16, lerp float32) int16 {
	return (int16)(float32(a)*(1-lerp) + float32(b)*lerp)
}

func GetSample(input []int16, at float32) int16 {
	var asInt = int(at)

	if asInt < 0 {
		return input[0]
	} else if asInt+1 >= len(input) {
		return input[len(input)-1]
	} else {
		var currentSample = input[asInt]
		var nextSample = input[asInt+1]

		var lerpValue = at - float32(asInt)

		return lerpSample(currentSample, nextSample, lerpValue)
	}
}

func Resample(input []int16, from int, to int) []int16 {
	var result = make([]int16, ConvertSampleLocation(len(input), to, from))

	if len(input) == 0 {
		return result
	}

	var scale = float32(from) / float32(to)

	for index := range result {
		result[index] = GetSample(input, float32(index)*scale)
	}

	return result
}

// ResampleLooped keeps the first sample of the loop exact and crossfades
// across the loop so the end meets the start.
func ResampleLooped(input []int16, from int, to int, loopStart int, loopEnd int) []int16 {
	var result = make([]int16, ConvertSampleLocation(len(input), to, from))

	if len(input) == 0 {
		return result
	}

	var scale = float32(from) / float32(to)

	var convertedStart = ConvertSampleLocation(loopStart, to, from)
	var convertedEnd = ConvertSampleLocation(loopEnd, to, from)

	var scaleOffset = float32(loopStart) - float32(convertedStart)*scale

	for index := 0; index < convertedEnd && index < len(result); index++ {
		result[index] = GetSample(input, float32(index)*scale+scaleOffset)
	}

	scaleOffset = float32(loopEnd) - float32(convertedEnd)*scale

	if convertedEnd-convertedStart > 1 {
		for index := convertedStart; index < convertedEnd && index < len(result); index++ {
			var lerp = float32(index-convertedStart) / float32(convertedEnd-1-convertedStart)

			var inputSample = GetSample(input, float32(index)*scale+scaleOffset)
			result[index] = lerpSample(result[index], inputSample, lerp)
		}
	}

	for index := convertedEnd; index < len(result); index++ {
		result[index] = GetSample(input, float32(index)*scale+scaleOffset)
	}

	return result
}

// ResamplePcm16 converts every channel to the sample rate to, moving the
// loop points with it.
func ResamplePcm16(pcm *format.Pcm16Format, to int) (*format.Pcm16Format, error) {
	var from = pcm.SampleRate()

	if to <= 0 || to == from {
		return pcm, nil
	}

	var channels = make([][]int16, pcm.ChannelCount())

	for i := range channels {
		if pcm.Looping() {
			channels[i] = ResampleLooped(pcm.Channel(i), from, to, pcm.LoopStart(), pcm.LoopEnd())
		} else {
			channels[i] = Resample(pcm.Channel(i), from, to)
		}
	}

	var builder = format.NewPcm16FormatBuilder(channels, to)

	if pcm.Looping() {
		var sampleCount = len(channels[0])
		var loopStart = min(ConvertSampleLocation(pcm.LoopStart(), to, from), sampleCount)
		var loopEnd = min(ConvertSampleLocation(pcm.LoopEnd(), to, from), sampleCount)

		builder.WithLoop(true, loopStart, loopEnd)
	}

	return builder.Build()
}
