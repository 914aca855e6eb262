package gcadpcm

import "fmt"

// Hardware rounding term: half of the 1<<11 fixed point unit.
const roundingBias = 1 << 10

func nibbleAt(frame []byte, sampleInFrame int) int {
	var packed = frame[1+sampleInFrame/2]

	if sampleInFrame%2 == 0 {
		return int(int8(packed) >> 4)
	}

	return int(int8(packed<<4) >> 4)
}

func predictSample(nibble int, scale int, coef1 int, coef2 int, hist1 int16, hist2 int16) int16 {
	var sample = ((nibble * scale) << 11) + roundingBias + coef1*int(hist1) + coef2*int(hist2)
	return clamp16(sample >> 11)
}

// Decode converts the first sampleCount samples of a packed channel to PCM.
// hist1 and hist2 are the two samples that precede sample 0.
func Decode(adpcm []byte, coefs *Coefficients, sampleCount int, hist1 int16, hist2 int16) ([]int16, error) {
	return DecodeRange(adpcm, coefs, 0, sampleCount, hist1, hist2)
}

// DecodeRange decodes sampleCount samples starting at startSample. hist1 and
// hist2 must be the decoded samples at startSample-1 and startSample-2.
func DecodeRange(adpcm []byte, coefs *Coefficients, startSample int, sampleCount int, hist1 int16, hist2 int16) ([]int16, error) {
	if startSample < 0 || sampleCount < 0 {
		return nil, fmt.Errorf("%w: start %d count %d", ErrInvalidSampleRange, startSample, sampleCount)
	}

	var result = make([]int16, sampleCount)

	if sampleCount == 0 {
		return result, nil
	}

	if SampleCountToByteCount(startSample+sampleCount) > len(adpcm) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, SampleCountToByteCount(startSample+sampleCount), len(adpcm))
	}

	decodeInto(result, adpcm, coefs, startSample, hist1, hist2)

	return result, nil
}

func decodeInto(out []int16, adpcm []byte, coefs *Coefficients, startSample int, hist1 int16, hist2 int16) {
	var frameIndex = startSample / SamplesPerFrame
	var sampleInFrame = startSample % SamplesPerFrame
	var outIndex = 0

	for outIndex < len(out) {
		var frame = adpcm[frameIndex*BytesPerFrame:]
		var predictor = int(frame[0]>>4) & 0x7
		var scale = 1 << (frame[0] & 0xf)
		var coef1 = int(coefs[predictor*2])
		var coef2 = int(coefs[predictor*2+1])

		for ; sampleInFrame < SamplesPerFrame && outIndex < len(out); sampleInFrame++ {
			var sample = predictSample(nibbleAt(frame, sampleInFrame), scale, coef1, coef2, hist1, hist2)

			out[outIndex] = sample
			hist2 = hist1
			hist1 = sample
			outIndex++
		}

		sampleInFrame = 0
		frameIndex++
	}
}
