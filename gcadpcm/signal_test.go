package gcadpcm

import "math"

// testSignal is a sine with a little deterministic noise on top, so every
// frame carries enough energy to fit a predictor.
func testSignal(sampleCount int, frequency float64, amplitude float64) []int16 {
	var result = make([]int16, sampleCount)
	var seed uint32 = 12345

	for i := range result {
		seed = seed*1664525 + 1013904223
		var noise = float64(int32(seed>>16)%1001) - 500
		var value = amplitude*math.Sin(2*math.Pi*frequency*float64(i)/32000) + noise

		result[i] = int16(math.Max(-32768, math.Min(32767, value)))
	}

	return result
}

func rmsError(a []int16, b []int16) float64 {
	var sum = 0.0

	for i := range a {
		var diff = float64(a[i]) - float64(b[i])
		sum += diff * diff
	}

	return math.Sqrt(sum / float64(len(a)))
}

func rms(a []int16) float64 {
	var sum = 0.0

	for _, value := range a {
		sum += float64(value) * float64(value)
	}

	return math.Sqrt(sum / float64(len(a)))
}
