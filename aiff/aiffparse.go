package aiff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

func readExtended(reader io.Reader) (ExtendedFloat, error) {
	var exponent uint16
	err := binary.Read(reader, binary.BigEndian, &exponent)

	if err != nil {
		return ExtendedFloat{}, err
	}

	var mantissa uint64
	err = binary.Read(reader, binary.BigEndian, &mantissa)

	if err != nil {
		return ExtendedFloat{}, err
	}

	return ExtendedFloat{
		(exponent & 0x8000) != 0,
		exponent & 0x7FFF,
		mantissa,
	}, nil
}

func readPString(reader io.Reader) (string, error) {
	var len uint8
	err := binary.Read(reader, binary.BigEndian, &len)

	if err != nil {
		return "", err
	}

	var buffer = make([]byte, len)
	_, err = io.ReadFull(reader, buffer)

	if err != nil {
		return "", err
	}

	if len%2 == 0 {
		// read padding byte
		err = binary.Read(reader, binary.BigEndian, &len)
	}

	return string(buffer), err
}

func parseCommonChunk(reader io.Reader, compressed bool) (*CommonChunk, error) {
	var result CommonChunk

	err := binary.Read(reader, binary.BigEndian, &result.NumChannels)

	if err != nil {
		return nil, err
	}

	err = binary.Read(reader, binary.BigEndian, &result.NumSampleFrames)

	if err != nil {
		return nil, err
	}

	err = binary.Read(reader, binary.BigEndian, &result.SampleSize)

	if err != nil {
		return nil, err
	}

	result.SampleRate, err = readExtended(reader)

	if err != nil {
		return nil, err
	}

	if compressed {
		err = binary.Read(reader, binary.BigEndian, &result.CompressionType)

		if err != nil {
			return nil, err
		}
	} else {
		result.CompressionType = COMPRESSION_NONE
	}

	return &result, nil
}

func parseMarkerChunk(reader io.Reader) (*MarkerChunk, error) {
	var result MarkerChunk
	var count uint16

	err := binary.Read(reader, binary.BigEndian, &count)

	if err != nil {
		return nil, err
	}

	for i := uint16(0); i < count; i++ {
		var marker Marker

		binary.Read(reader, binary.BigEndian, &marker.ID)
		err = binary.Read(reader, binary.BigEndian, &marker.Position)

		if err != nil {
			return nil, err
		}

		marker.Name, err = readPString(reader)

		if err != nil {
			return nil, err
		}

		result.Markers = append(result.Markers, marker)
	}

	return &result, nil
}

func parseInstrumentChunk(reader io.Reader) (*InstrumentChunk, error) {
	var result InstrumentChunk

	binary.Read(reader, binary.BigEndian, &result.BaseNote)
	binary.Read(reader, binary.BigEndian, &result.Detune)
	binary.Read(reader, binary.BigEndian, &result.LowNote)
	binary.Read(reader, binary.BigEndian, &result.HighNote)
	binary.Read(reader, binary.BigEndian, &result.LowVelocity)
	binary.Read(reader, binary.BigEndian, &result.HighVelocity)
	binary.Read(reader, binary.BigEndian, &result.Gain)

	binary.Read(reader, binary.BigEndian, &result.SustainLoop)
	err := binary.Read(reader, binary.BigEndian, &result.ReleaseLoop)

	return &result, err
}

func parseSoundData(reader io.Reader, chunkSize uint32) ([]byte, error) {
	if chunkSize < 8 {
		return nil, fmt.Errorf("%w: sound data chunk of %d bytes", ErrInvalidHeader, chunkSize)
	}

	var offset uint32
	var blockSize uint32

	binary.Read(reader, binary.BigEndian, &offset)
	err := binary.Read(reader, binary.BigEndian, &blockSize)

	if err != nil {
		return nil, err
	}

	if offset > chunkSize-8 {
		return nil, fmt.Errorf("%w: sound data offset %d", ErrInvalidHeader, offset)
	}

	var result = make([]byte, chunkSize-8)

	_, err = io.ReadFull(reader, result)

	if err != nil {
		return nil, err
	}

	return result[offset:], nil
}

func swapEndian(data []byte) {
	for i := 0; i+1 < len(data); i += 2 {
		data[i], data[i+1] = data[i+1], data[i]
	}
}

func Parse(reader io.ReadSeeker) (*Aiff, error) {
	var result Aiff

	var id uint32

	err := binary.Read(reader, binary.BigEndian, &id)

	if err != nil {
		return nil, err
	}

	if id != FORM_HEADER {
		return nil, ErrInvalidHeader
	}

	var chunkSize uint32
	binary.Read(reader, binary.BigEndian, &chunkSize)

	err = binary.Read(reader, binary.BigEndian, &id)

	if err != nil {
		return nil, err
	}

	var compressed = id == AIFC

	if !compressed && id != AIFF {
		return nil, ErrInvalidHeader
	}

	for {
		err = binary.Read(reader, binary.BigEndian, &id)

		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}

		err = binary.Read(reader, binary.BigEndian, &chunkSize)

		if err != nil {
			return nil, err
		}

		currPos, err := reader.Seek(0, io.SeekCurrent)

		if err != nil {
			return nil, err
		}

		switch id {
		case COMM:
			result.Common, err = parseCommonChunk(reader, compressed)
		case SSND:
			result.WaveformData, err = parseSoundData(reader, chunkSize)
		case MARK:
			result.Markers, err = parseMarkerChunk(reader)
		case INST:
			result.Instrument, err = parseInstrumentChunk(reader)
		}

		if err != nil {
			return nil, err
		}

		// chunks are padded to an even length
		_, err = reader.Seek(currPos+int64(chunkSize)+int64(chunkSize&1), io.SeekStart)

		if err != nil {
			return nil, err
		}
	}

	if result.Common == nil {
		return nil, fmt.Errorf("%w: COMM", ErrMissingChunk)
	}

	if result.WaveformData == nil && result.Common.NumSampleFrames > 0 {
		return nil, fmt.Errorf("%w: SSND", ErrMissingChunk)
	}

	if result.Common.SampleSize != 16 || result.Common.NumChannels < 1 {
		return nil, fmt.Errorf("%w: %d channels of %d bits", ErrUnsupportedFormat, result.Common.NumChannels, result.Common.SampleSize)
	}

	switch result.Common.CompressionType {
	case COMPRESSION_NONE:
	case COMPRESSION_SOWT:
		swapEndian(result.WaveformData)
		result.Common.CompressionType = COMPRESSION_NONE
	default:
		return nil, fmt.Errorf("%w: compression type %08x", ErrUnsupportedFormat, result.Common.CompressionType)
	}

	return &result, nil
}
