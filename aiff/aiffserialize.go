package aiff

import (
	"bytes"
	"encoding/binary"
	"io"
)

func writeExtended(out *bytes.Buffer, val ExtendedFloat) {
	var exponent = val.Exponent

	if val.Sign {
		exponent |= 0x8000
	}

	binary.Write(out, binary.BigEndian, exponent)
	binary.Write(out, binary.BigEndian, val.Mantissa)
}

func writePString(out *bytes.Buffer, value string) {
	out.WriteByte(byte(len(value)))
	out.WriteString(value)

	if len(value)%2 == 0 {
		out.WriteByte(0)
	}
}

func (commonChunk *CommonChunk) serialize() *bytes.Buffer {
	var result bytes.Buffer

	binary.Write(&result, binary.BigEndian, commonChunk.NumChannels)
	binary.Write(&result, binary.BigEndian, commonChunk.NumSampleFrames)
	binary.Write(&result, binary.BigEndian, commonChunk.SampleSize)
	writeExtended(&result, commonChunk.SampleRate)

	return &result
}

func (markers *MarkerChunk) serialize() *bytes.Buffer {
	var result bytes.Buffer

	binary.Write(&result, binary.BigEndian, uint16(len(markers.Markers)))

	for _, marker := range markers.Markers {
		binary.Write(&result, binary.BigEndian, marker.ID)
		binary.Write(&result, binary.BigEndian, marker.Position)
		writePString(&result, marker.Name)
	}

	return &result
}

func (instrument *InstrumentChunk) serialize() *bytes.Buffer {
	var result bytes.Buffer

	binary.Write(&result, binary.BigEndian, instrument)

	return &result
}

func serializeSoundData(data []byte) *bytes.Buffer {
	var result bytes.Buffer

	// offset and block size
	binary.Write(&result, binary.BigEndian, uint32(0))
	binary.Write(&result, binary.BigEndian, uint32(0))
	result.Write(data)

	return &result
}

type chunkData struct {
	header uint32
	data   *bytes.Buffer
}

// Serialize writes an uncompressed AIFF file. The waveform data must
// already be big-endian.
func (aiff *Aiff) Serialize(writer io.Writer) error {
	var chunks = []chunkData{{COMM, aiff.Common.serialize()}}

	if aiff.Markers != nil {
		chunks = append(chunks, chunkData{MARK, aiff.Markers.serialize()})
	}

	if aiff.Instrument != nil {
		chunks = append(chunks, chunkData{INST, aiff.Instrument.serialize()})
	}

	chunks = append(chunks, chunkData{SSND, serializeSoundData(aiff.WaveformData)})

	var totalLength uint32 = 4

	for _, chunk := range chunks {
		var size = uint32(chunk.data.Len())
		totalLength = totalLength + 8 + size + size&1
	}

	var header = []uint32{FORM_HEADER, totalLength, AIFF}
	err := binary.Write(writer, binary.BigEndian, header)

	if err != nil {
		return err
	}

	for _, chunk := range chunks {
		var size = uint32(chunk.data.Len())

		if size&1 != 0 {
			chunk.data.WriteByte(0)
		}

		err = binary.Write(writer, binary.BigEndian, []uint32{chunk.header, size})

		if err != nil {
			return err
		}

		_, err = writer.Write(chunk.data.Bytes())

		if err != nil {
			return err
		}
	}

	return nil
}
