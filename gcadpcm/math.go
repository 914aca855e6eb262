package gcadpcm

const (
	SamplesPerFrame = 14
	BytesPerFrame   = 8
	NibblesPerFrame = 16
)

// Coefficients holds the 8 predictor pairs of a channel. Pair p is stored
// at [2p] (applied to hist1) and [2p+1] (applied to hist2).
type Coefficients [16]int16

// SampleCountToByteCount returns the size of a packed buffer holding
// sampleCount samples. A trailing partial frame only stores the header byte
// and the nibbles it needs.
func SampleCountToByteCount(sampleCount int) int {
	var frames = sampleCount / SamplesPerFrame
	var extraSamples = sampleCount % SamplesPerFrame

	if extraSamples == 0 {
		return frames * BytesPerFrame
	}

	return frames*BytesPerFrame + 1 + (extraSamples+1)/2
}

func SampleCountToNibbleCount(sampleCount int) int {
	var frames = sampleCount / SamplesPerFrame
	var extraSamples = sampleCount % SamplesPerFrame

	if extraSamples == 0 {
		return frames * NibblesPerFrame
	}

	return frames*NibblesPerFrame + extraSamples + 2
}

func NibbleCountToSampleCount(nibbleCount int) int {
	var frames = nibbleCount / NibblesPerFrame
	var extraNibbles = nibbleCount % NibblesPerFrame
	var extraSamples = 0

	if extraNibbles > 2 {
		extraSamples = extraNibbles - 2
	}

	return frames*SamplesPerFrame + extraSamples
}

func ByteCountToSampleCount(byteCount int) int {
	return NibbleCountToSampleCount(byteCount * 2)
}

// SampleToNibble converts a sample index to the nibble address used by
// DSP hardware, which counts the header nibbles of every frame.
func SampleToNibble(sample int) int {
	var frames = sample / SamplesPerFrame
	var extraSamples = sample % SamplesPerFrame

	return frames*NibblesPerFrame + extraSamples + 2
}

func NibbleToSample(nibble int) int {
	var frames = nibble / NibblesPerFrame
	var extraNibbles = nibble % NibblesPerFrame

	return frames*SamplesPerFrame + extraNibbles - 2
}

// GetNextMultiple rounds value up to a multiple of multiple. A multiple of
// zero or less leaves value untouched.
func GetNextMultiple(value int, multiple int) int {
	if multiple <= 0 || value%multiple == 0 {
		return value
	}

	return value + multiple - value%multiple
}

func LoopPointsAreAligned(loopStart int, multiple int) bool {
	return multiple <= 0 || loopStart%multiple == 0
}

func clamp16(value int) int16 {
	if value > 32767 {
		return 32767
	} else if value < -32768 {
		return -32768
	}

	return int16(value)
}

func predScaleAt(adpcm []byte, sample int) byte {
	var offset = sample / SamplesPerFrame * BytesPerFrame

	if offset < 0 || offset >= len(adpcm) {
		return 0
	}

	return adpcm[offset]
}
