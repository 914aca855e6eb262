package gcadpcm

import "math"

type correlationSettings struct {
	Order       int
	FrameSize   int
	Threshold   float64
	Bits        int
	RefineIters int
}

// Order 2 and 8 predictors are fixed by the frame header layout.
func dspCorrelationSettings() correlationSettings {
	return correlationSettings{
		Order:       2,
		FrameSize:   SamplesPerFrame,
		Threshold:   10,
		Bits:        3,
		RefineIters: 2,
	}
}

// autocorrelationVector fills out[0..order] with the negated correlation of
// the current frame against lags 0..order. window holds the previous frame
// followed by the current one.
func autocorrelationVector(window []int16, order int, frameSize int, out []float64) {
	for lag := 0; lag <= order; lag++ {
		out[lag] = 0

		for s := 0; s < frameSize; s++ {
			out[lag] -= float64(window[frameSize+s-lag]) * float64(window[frameSize+s])
		}
	}
}

func autocorrelationMatrix(window []int16, order int, frameSize int, out [][]float64) {
	for row := 1; row <= order; row++ {
		for col := 1; col <= order; col++ {
			out[row][col] = 0

			for s := 0; s < frameSize; s++ {
				out[row][col] += float64(window[frameSize+s-row]) * float64(window[frameSize+s-col])
			}
		}
	}
}

// luDecompose factors mat in place with partial pivoting (1-based). Returns
// false when the matrix is singular or badly conditioned.
func luDecompose(mat [][]float64, n int, pivots []int) bool {
	var recips = make([]float64, n+1)

	for row := 1; row <= n; row++ {
		var largest = 0.0

		for col := 1; col <= n; col++ {
			largest = math.Max(largest, math.Abs(mat[row][col]))
		}

		if largest < 2.220446049250313e-16 {
			return false
		}

		recips[row] = 1.0 / largest
	}

	var maxIndex = 0

	for col := 1; col <= n; col++ {
		for row := 1; row < col; row++ {
			var sum = mat[row][col]

			for k := 1; k < row; k++ {
				sum -= mat[row][k] * mat[k][col]
			}

			mat[row][col] = sum
		}

		var largest = 0.0

		for row := col; row <= n; row++ {
			var sum = mat[row][col]

			for k := 1; k < col; k++ {
				sum -= mat[row][k] * mat[k][col]
			}

			mat[row][col] = sum

			var weighted = math.Abs(sum) * recips[row]

			if weighted >= largest {
				largest = weighted
				maxIndex = row
			}
		}

		if maxIndex != col {
			mat[maxIndex], mat[col] = mat[col], mat[maxIndex]
			recips[maxIndex] = recips[col]
		}

		pivots[col] = maxIndex

		if mat[col][col] == 0 {
			return false
		}

		if col != n {
			var inverse = 1.0 / mat[col][col]

			for row := col + 1; row <= n; row++ {
				mat[row][col] *= inverse
			}
		}
	}

	var minDiag = 1.0e10
	var maxDiag = 0.0

	for i := 1; i <= n; i++ {
		var value = math.Abs(mat[i][i])
		minDiag = math.Min(minDiag, value)
		maxDiag = math.Max(maxDiag, value)
	}

	return minDiag/maxDiag >= 1.0e-10
}

func luSolve(mat [][]float64, n int, pivots []int, vec []float64) {
	var firstNonZero = 0

	for i := 1; i <= n; i++ {
		var pivot = pivots[i]
		var sum = vec[pivot]
		vec[pivot] = vec[i]

		if firstNonZero != 0 {
			for j := firstNonZero; j < i; j++ {
				sum -= mat[i][j] * vec[j]
			}
		} else if sum != 0 {
			firstNonZero = i
		}

		vec[i] = sum
	}

	for i := n; i >= 1; i-- {
		var sum = vec[i]

		for j := i + 1; j <= n; j++ {
			sum -= mat[i][j] * vec[j]
		}

		vec[i] = sum / mat[i][i]
	}
}

// reflectionFromDirect converts predictor taps to reflection coefficients.
// Returns the number of unstable (|k| > 1) coefficients below the top order.
func reflectionFromDirect(taps []float64, reflection []float64, order int) int {
	var next = make([]float64, order+1)
	var unstable = 0

	reflection[order] = taps[order]

	for i := order - 1; i >= 1; i-- {
		var k = reflection[i+1]
		var div = 1.0 - k*k

		if div == 0 {
			return 1
		}

		for j := 0; j <= i; j++ {
			next[j] = (taps[j] - taps[i+1-j]*k) / div
		}

		copy(taps[:i+1], next[:i+1])

		reflection[i] = next[i]

		if math.Abs(reflection[i]) > 1.0 {
			unstable++
		}
	}

	return unstable
}

func directFromReflection(reflection []float64, taps []float64, order int) {
	taps[0] = 1.0

	for i := 1; i <= order; i++ {
		taps[i] = reflection[i]

		for j := 1; j < i; j++ {
			taps[j] += taps[i-j] * taps[i]
		}
	}
}

func clampReflection(reflection []float64, order int) {
	for i := 1; i <= order; i++ {
		if reflection[i] >= 1.0 {
			reflection[i] = 0.9999999999
		}

		if reflection[i] <= -1.0 {
			reflection[i] = -0.9999999999
		}
	}
}

// autocorrelationFromDirect recovers the normalized autocorrelation implied
// by a set of predictor taps.
func autocorrelationFromDirect(taps []float64, order int, out []float64) {
	var mat = make([][]float64, order+1)

	mat[order] = make([]float64, order+1)
	mat[order][0] = 1.0

	for i := 1; i <= order; i++ {
		mat[order][i] = -taps[i]
	}

	for i := order; i >= 1; i-- {
		mat[i-1] = make([]float64, i)
		var div = 1.0 - mat[i][i]*mat[i][i]

		for j := 1; j <= i-1; j++ {
			mat[i-1][j] = (mat[i][i-j]*mat[i][i] + mat[i][j]) / div
		}
	}

	out[0] = 1

	for i := 1; i <= order; i++ {
		out[i] = 0

		for j := 1; j <= i; j++ {
			out[i] += mat[i][j] * out[i-j]
		}
	}
}

// levinsonDurbin solves for predictor taps from an autocorrelation. The
// reflection coefficients are written to reflection.
func levinsonDurbin(autocorrelation []float64, order int, reflection []float64, taps []float64) {
	var err = autocorrelation[0]

	taps[0] = 1.0

	for i := 1; i <= order; i++ {
		var sum = 0.0

		for j := 1; j < i; j++ {
			sum += taps[j] * autocorrelation[i-j]
		}

		if err > 0 {
			taps[i] = -(autocorrelation[i] + sum) / err
		} else {
			taps[i] = 0
		}

		reflection[i] = taps[i]

		for j := 1; j < i; j++ {
			taps[j] += taps[i-j] * taps[i]
		}

		err *= 1.0 - taps[i]*taps[i]
	}
}

// tapsFromAutocorrelation runs Durbin and then rebuilds the taps from the
// clamped reflection coefficients so the predictor stays stable.
func tapsFromAutocorrelation(autocorrelation []float64, order int, taps []float64) {
	var reflection = make([]float64, order+1)

	levinsonDurbin(autocorrelation, order, reflection, taps)
	clampReflection(reflection, order)
	directFromReflection(reflection, taps, order)
}

func predictionError(taps []float64, record []float64, order int) float64 {
	var recordCorrelation = make([]float64, order+1)
	var tapCorrelation = make([]float64, order+1)

	autocorrelationFromDirect(record, order, recordCorrelation)

	for i := 0; i <= order; i++ {
		for j := 0; j <= order-i; j++ {
			tapCorrelation[i] += taps[j] * taps[i+j]
		}
	}

	var result = tapCorrelation[0] * recordCorrelation[0]

	for i := 1; i <= order; i++ {
		result += 2 * recordCorrelation[i] * tapCorrelation[i]
	}

	return result
}

func splitPredictors(predictors [][]float64, count int, order int) {
	for i := 0; i < count; i++ {
		copy(predictors[i+count], predictors[i])
		predictors[i+count][order-1] -= 0.01
	}
}

// refinePredictors assigns each record to its closest predictor, then
// replaces every predictor with the one fitted to its assigned records.
func refinePredictors(predictors [][]float64, count int, records [][]float64, settings *correlationSettings) {
	var order = settings.Order
	var sums = make([][]float64, count)
	var counts = make([]int, count)
	var correlation = make([]float64, order+1)

	for i := range sums {
		sums[i] = make([]float64, order+1)
	}

	for iter := 0; iter < settings.RefineIters; iter++ {
		for i := 0; i < count; i++ {
			counts[i] = 0

			for j := range sums[i] {
				sums[i][j] = 0
			}
		}

		for _, record := range records {
			var bestIndex = 0
			var bestError = 1e30

			for p := 0; p < count; p++ {
				var err = predictionError(predictors[p], record, order)

				if err < bestError {
					bestError = err
					bestIndex = p
				}
			}

			counts[bestIndex]++
			autocorrelationFromDirect(record, order, correlation)

			for j := 0; j <= order; j++ {
				sums[bestIndex][j] += correlation[j]
			}
		}

		for p := 0; p < count; p++ {
			if counts[p] > 0 {
				for j := 0; j <= order; j++ {
					sums[p][j] /= float64(counts[p])
				}
			}

			tapsFromAutocorrelation(sums[p], order, predictors[p])
		}
	}
}

// collectRecords fits a predictor to every frame with enough energy.
func collectRecords(pcm []int16, settings *correlationSettings) [][]float64 {
	var order = settings.Order
	var frameSize = settings.FrameSize
	var window = make([]int16, frameSize*2)
	var vec = make([]float64, order+1)
	var reflection = make([]float64, order+1)
	var mat = make([][]float64, order+1)
	var pivots = make([]int, order+1)
	var records [][]float64

	for i := range mat {
		mat[i] = make([]float64, order+1)
	}

	for start := 0; start < len(pcm); start += frameSize {
		copy(window, window[frameSize:])

		var end = start + frameSize

		if end > len(pcm) {
			end = len(pcm)
		}

		var copied = copy(window[frameSize:], pcm[start:end])

		for i := frameSize + copied; i < len(window); i++ {
			window[i] = 0
		}

		autocorrelationVector(window, order, frameSize, vec)

		if math.Abs(vec[0]) <= settings.Threshold {
			continue
		}

		autocorrelationMatrix(window, order, frameSize, mat)

		if !luDecompose(mat, order, pivots) {
			continue
		}

		luSolve(mat, order, pivots, vec)
		vec[0] = 1.0

		if reflectionFromDirect(vec, reflection, order) != 0 {
			continue
		}

		var record = make([]float64, order+1)

		clampReflection(reflection, order)
		directFromReflection(reflection, record, order)
		records = append(records, record)
	}

	return records
}

func roundCoefficient(value float64) int16 {
	var scaled = value * 2048

	if scaled > 0 {
		if scaled > 32767 {
			return 32767
		}

		return int16(math.Floor(scaled + 0.5))
	}

	if scaled < -32768 {
		return -32768
	}

	return int16(math.Ceil(scaled - 0.5))
}

// CalculateCoefficients derives the 8 predictor pairs for a channel from its
// PCM samples. The result only depends on pcm. Input too quiet to fit any
// predictor yields all-zero pairs.
func CalculateCoefficients(pcm []int16) Coefficients {
	var settings = dspCorrelationSettings()
	var order = settings.Order
	var records = collectRecords(pcm, &settings)
	var result Coefficients

	if len(records) == 0 {
		return result
	}

	var predictorCount = 1 << settings.Bits
	var predictors = make([][]float64, predictorCount)

	for i := range predictors {
		predictors[i] = make([]float64, order+1)
	}

	var average = make([]float64, order+1)
	var correlation = make([]float64, order+1)

	average[0] = 1.0

	for _, record := range records {
		autocorrelationFromDirect(record, order, correlation)

		for j := 1; j <= order; j++ {
			average[j] += correlation[j]
		}
	}

	for j := 1; j <= order; j++ {
		average[j] /= float64(len(records))
	}

	tapsFromAutocorrelation(average, order, predictors[0])

	for count := 1; count < predictorCount; count *= 2 {
		splitPredictors(predictors, count, order)
		refinePredictors(predictors, count*2, records, &settings)
	}

	for p := 0; p < predictorCount; p++ {
		result[p*2] = roundCoefficient(-predictors[p][1])
		result[p*2+1] = roundCoefficient(-predictors[p][2])
	}

	return result
}
