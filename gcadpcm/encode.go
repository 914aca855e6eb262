package gcadpcm

import "math"

type EncodeConfig struct {
	// History1 and History2 are the decoded samples preceding the first
	// sample to encode.
	History1 int16
	History2 int16
}

func iabs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}

// 0.4999999 rounded to float32, the bias the DSPADPCM tools quantize with.
var roundHalf = float64(float32(0.4999999))

// quantize maps a prediction error in 1<<11 fixed point to a nibble. The
// error is truncated to whole samples before scaling.
func quantize(delta int, scale int) int {
	var whole = delta / 2048
	var scaled = float64(whole) / float64(int(1)<<scale)

	if whole > 0 {
		return int(scaled + roundHalf)
	}

	return int(scaled - roundHalf)
}

type frameCandidate struct {
	reconstructed [16]int
	nibbles       [SamplesPerFrame]int
	scale         int
	distance      float64
}

func (candidate *frameCandidate) search(pcm *[16]int16, sampleCount int, coef1 int, coef2 int) {
	var maxResidual = 0

	candidate.reconstructed[0] = int(pcm[0])
	candidate.reconstructed[1] = int(pcm[1])

	// Start from the one-step residual using the true signal as history.
	for s := 0; s < sampleCount; s++ {
		var prediction = (int(pcm[s])*coef2 + int(pcm[s+1])*coef1) / 2048
		var residual = int(pcm[s+2]) - prediction

		if residual > 32767 {
			residual = 32767
		} else if residual < -32768 {
			residual = -32768
		}

		if iabs(residual) > iabs(maxResidual) {
			maxResidual = residual
		}
	}

	var scale = 0

	for scale <= 12 && (maxResidual > 7 || maxResidual < -8) {
		scale++
		maxResidual /= 2
	}

	if scale <= 1 {
		scale = -1
	} else {
		scale = scale - 2
	}

	for {
		scale++
		candidate.distance = 0
		var maxOverflow = 0

		for s := 0; s < sampleCount; s++ {
			var prediction = candidate.reconstructed[s]*coef2 + candidate.reconstructed[s+1]*coef1
			var delta = (int(pcm[s+2]) << 11) - prediction
			var nibble = quantize(delta, scale)

			if nibble < -8 {
				if maxOverflow < -8-nibble {
					maxOverflow = -8 - nibble
				}
				nibble = -8
			} else if nibble > 7 {
				if maxOverflow < nibble-7 {
					maxOverflow = nibble - 7
				}
				nibble = 7
			}

			candidate.nibbles[s] = nibble

			var decoded = int(clamp16((prediction + ((nibble * (1 << scale)) << 11) + roundingBias) >> 11))
			candidate.reconstructed[s+2] = decoded

			var err = float64(int(pcm[s+2]) - decoded)
			candidate.distance += err * err
		}

		for x := maxOverflow + 8; x > 256; x >>= 1 {
			scale++
			if scale >= 12 {
				scale = 11
			}
		}

		if scale >= 12 || maxOverflow <= 1 {
			break
		}
	}

	candidate.scale = scale

	for s := sampleCount; s < SamplesPerFrame; s++ {
		candidate.nibbles[s] = 0
	}
}

// EncodeFrame packs sampleCount samples from pcm[2:] into one frame. pcm[0]
// and pcm[1] are hist2 and hist1. Every predictor pair is tried and the one
// with the least squared error is kept. On return pcm[2:] holds the samples a
// decoder will reconstruct.
func EncodeFrame(pcm *[16]int16, sampleCount int, coefs *Coefficients) [BytesPerFrame]byte {
	var candidates [8]frameCandidate
	var best = 0
	var minDistance = math.MaxFloat64

	for p := 0; p < 8; p++ {
		candidates[p].search(pcm, sampleCount, int(coefs[p*2]), int(coefs[p*2+1]))

		if candidates[p].distance < minDistance {
			minDistance = candidates[p].distance
			best = p
		}
	}

	var chosen = &candidates[best]

	for s := 0; s < sampleCount; s++ {
		pcm[s+2] = int16(chosen.reconstructed[s+2])
	}

	var result [BytesPerFrame]byte

	result[0] = byte(best<<4) | byte(chosen.scale&0xf)

	for i := 0; i < 7; i++ {
		result[i+1] = byte(chosen.nibbles[i*2]<<4) | byte(chosen.nibbles[i*2+1]&0xf)
	}

	return result
}

// Encode packs pcm into a channel buffer using coefs. Frames are encoded in
// order since each one starts from the previous frame's reconstructed output.
func Encode(pcm []int16, coefs *Coefficients, config *EncodeConfig) []byte {
	var result = make([]byte, SampleCountToByteCount(len(pcm)))
	var buffer [16]int16

	if config != nil {
		buffer[0] = config.History2
		buffer[1] = config.History1
	}

	var frameCount = (len(pcm) + SamplesPerFrame - 1) / SamplesPerFrame

	for frame := 0; frame < frameCount; frame++ {
		var start = frame * SamplesPerFrame
		var samplesInFrame = len(pcm) - start

		if samplesInFrame > SamplesPerFrame {
			samplesInFrame = SamplesPerFrame
		}

		copy(buffer[2:], pcm[start:start+samplesInFrame])

		for s := 2 + samplesInFrame; s < len(buffer); s++ {
			buffer[s] = 0
		}

		var encoded = EncodeFrame(&buffer, SamplesPerFrame, coefs)

		copy(result[frame*BytesPerFrame:], encoded[:SampleCountToByteCount(samplesInFrame)])

		buffer[0] = buffer[14]
		buffer[1] = buffer[15]
	}

	return result
}
