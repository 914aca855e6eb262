package audioconvert

import (
	"os"

	"github.com/lambertjamesd/gcadpcm/format"
	"github.com/lambertjamesd/gcadpcm/gcadpcm"
)

// Compress encodes pcm. If tableFilename exists its coefficients replace the
// search for the channels it lists.
func Compress(pcm *format.Pcm16Format, tableFilename string) (*format.AdpcmFormat, error) {
	if _, err := os.Stat(tableFilename); err != nil {
		return format.EncodeFromPcm16(pcm)
	}

	coefs, err := readCoefficientFile(tableFilename)

	if err != nil {
		return nil, err
	}

	return format.EncodeFromPcm16WithCoefficients(pcm, coefs)
}

func readCoefficientFile(filename string) ([]gcadpcm.Coefficients, error) {
	file, err := os.Open(filename)

	if err != nil {
		return nil, err
	}

	defer file.Close()

	return ReadCoefficients(file)
}

// CalculateTable derives one coefficient set per channel.
func CalculateTable(pcm *format.Pcm16Format) []gcadpcm.Coefficients {
	var result = make([]gcadpcm.Coefficients, pcm.ChannelCount())

	for i := range result {
		result[i] = gcadpcm.CalculateCoefficients(pcm.Channel(i))
	}

	return result
}
