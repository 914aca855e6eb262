package gcadpcm

import "testing"

func TestCalculateCoefficientsIsDeterministic(t *testing.T) {
	var pcm = testSignal(5000, 523, 10000)

	if CalculateCoefficients(pcm) != CalculateCoefficients(pcm) {
		t.Fatal("coefficients differ for identical input")
	}
}

func TestCalculateCoefficientsOfSilence(t *testing.T) {
	var coefs = CalculateCoefficients(make([]int16, 1000))

	if coefs != (Coefficients{}) {
		t.Fatalf("expected zero coefficients for silence, got %v", coefs)
	}

	if CalculateCoefficients(nil) != (Coefficients{}) {
		t.Fatal("expected zero coefficients for empty input")
	}
}

func TestCalculatedCoefficientsBeatZeroPredictor(t *testing.T) {
	var pcm = testSignal(3000, 440, 12000)
	var coefs = CalculateCoefficients(pcm)
	var zero Coefficients

	fitted, _ := Decode(Encode(pcm, &coefs, nil), &coefs, len(pcm), 0, 0)
	flat, _ := Decode(Encode(pcm, &zero, nil), &zero, len(pcm), 0, 0)

	if rmsError(pcm, fitted) >= rmsError(pcm, flat) {
		t.Fatalf("fitted error %f not below zero-predictor error %f", rmsError(pcm, fitted), rmsError(pcm, flat))
	}
}

func TestLuDecomposeRejectsSingularMatrix(t *testing.T) {
	var mat = [][]float64{
		{0, 0, 0},
		{0, 0, 0},
		{0, 0, 0},
	}
	var pivots = make([]int, 3)

	if luDecompose(mat, 2, pivots) {
		t.Fatal("expected zero matrix to be rejected")
	}
}
