package audioconvert

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lambertjamesd/gcadpcm/gcadpcm"
)

var ErrInvalidTable = errors.New("audioconvert: invalid coefficient table")

const coefficientPairs = 8

// WriteCoefficients writes a text table: the channel count, then one line
// of 16 coefficients per channel.
func WriteCoefficients(out io.Writer, coefs []gcadpcm.Coefficients) error {
	_, err := io.WriteString(out, fmt.Sprintf("%d\n%d\n", len(coefs), coefficientPairs))

	if err != nil {
		return err
	}

	for _, channel := range coefs {
		var line strings.Builder

		for i, value := range channel {
			if i > 0 {
				line.WriteString(" ")
			}

			line.WriteString(strconv.Itoa(int(value)))
		}

		line.WriteString("\n")

		_, err = io.WriteString(out, line.String())

		if err != nil {
			return err
		}
	}

	return nil
}

func ReadCoefficients(in io.Reader) ([]gcadpcm.Coefficients, error) {
	content, err := io.ReadAll(in)

	if err != nil {
		return nil, err
	}

	var chunks = strings.Fields(string(content))

	if len(chunks) < 2 {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidTable)
	}

	channelCount, err := strconv.Atoi(chunks[0])

	if err != nil || channelCount < 0 {
		return nil, fmt.Errorf("%w: channel count %q", ErrInvalidTable, chunks[0])
	}

	if chunks[1] != strconv.Itoa(coefficientPairs) {
		return nil, fmt.Errorf("%w: expected %d predictors, got %s", ErrInvalidTable, coefficientPairs, chunks[1])
	}

	chunks = chunks[2:]

	if len(chunks) != channelCount*16 {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrInvalidTable, channelCount*16, len(chunks))
	}

	var result = make([]gcadpcm.Coefficients, channelCount)

	for i, chunk := range chunks {
		value, err := strconv.ParseInt(chunk, 10, 16)

		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
		}

		result[i/16][i%16] = int16(value)
	}

	return result, nil
}

// TableFilename is where a precomputed table for a sound file is looked up.
func TableFilename(soundFilename string) string {
	return soundFilename[0:len(soundFilename)-len(filepath.Ext(soundFilename))] + ".table"
}
