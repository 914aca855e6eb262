package dsp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/lambertjamesd/gcadpcm/gcadpcm"
)

func validateHeader(header *Header) error {
	if header.Format != FORMAT_ADPCM {
		return fmt.Errorf("%w: format %d", ErrInvalidHeader, header.Format)
	}

	if header.LoopFlag > 1 {
		return fmt.Errorf("%w: loop flag %d", ErrInvalidHeader, header.LoopFlag)
	}

	if gcadpcm.NibbleCountToSampleCount(int(header.NibbleCount)) < int(header.SampleCount) {
		return fmt.Errorf("%w: %d nibbles cannot hold %d samples", ErrInvalidHeader, header.NibbleCount, header.SampleCount)
	}

	if header.LoopFlag != 0 {
		var loopStart = gcadpcm.NibbleToSample(int(header.LoopStart))
		var loopEnd = gcadpcm.NibbleToSample(int(header.LoopEnd)) + 1

		if loopStart < 0 || loopEnd < loopStart || loopEnd > int(header.SampleCount) {
			return fmt.Errorf("%w: loop %d..%d in %d samples", ErrInvalidHeader, loopStart, loopEnd, header.SampleCount)
		}
	}

	return nil
}

func Parse(reader io.Reader) (*File, error) {
	var result File

	err := binary.Read(reader, binary.BigEndian, &result.Header)

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: header shorter than %d bytes", ErrInvalidHeader, HeaderSize)
	} else if err != nil {
		return nil, err
	}

	err = validateHeader(&result.Header)

	if err != nil {
		return nil, err
	}

	result.Data = make([]byte, gcadpcm.SampleCountToByteCount(int(result.Header.SampleCount)))
	_, err = io.ReadFull(reader, result.Data)

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: expected %d bytes", ErrTruncatedData, len(result.Data))
	} else if err != nil {
		return nil, err
	}

	return &result, nil
}
