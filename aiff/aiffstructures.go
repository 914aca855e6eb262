// Package aiff reads and writes uncompressed 16-bit AIFF files, including
// the marker and instrument chunks that carry a sustain loop.
package aiff

import "math"

const FORM_HEADER = 0x464F524D

const AIFC = 0x41494643
const AIFF = 0x41494646

const COMM = 0x434F4D4D
const INST = 0x494E5354
const SSND = 0x53534E44
const MARK = 0x4D41524B

const COMPRESSION_NONE = 0x4E4F4E45
const COMPRESSION_SOWT = 0x736F7774

const LOOP_MODE_NONE = 0
const LOOP_MODE_FORWARD = 1

const loopStartMarker = 1
const loopEndMarker = 2

// Sign * 1.Mantissa * pow(2, Exponent - 0x3FFF)
type ExtendedFloat struct {
	Sign     bool
	Exponent uint16
	Mantissa uint64
}

type CommonChunk struct {
	NumChannels     int16
	NumSampleFrames uint32
	SampleSize      int16
	SampleRate      ExtendedFloat
	CompressionType uint32
}

type Marker struct {
	ID       uint16
	Position uint32
	Name     string
}

type MarkerChunk struct {
	Markers []Marker
}

type Loop struct {
	PlayMode  int16
	BeginLoop uint16
	EndLoop   uint16
}

type InstrumentChunk struct {
	BaseNote     uint8
	Detune       uint8
	LowNote      uint8
	HighNote     uint8
	LowVelocity  uint8
	HighVelocity uint8
	Gain         int16
	SustainLoop  Loop
	ReleaseLoop  Loop
}

type Aiff struct {
	Common     *CommonChunk
	Markers    *MarkerChunk
	Instrument *InstrumentChunk
	// Interleaved big-endian samples.
	WaveformData []byte
}

func (markers *MarkerChunk) FindMarker(id uint16) *Marker {
	for i := range markers.Markers {
		if markers.Markers[i].ID == id {
			return &markers.Markers[i]
		}
	}

	return nil
}

func ExtendedFromF64(val float64) ExtendedFloat {
	if val == 0 {
		return ExtendedFloat{}
	}

	var asInt = math.Float64bits(val)

	var sign = asInt & 0x8000000000000000
	var exponent = (asInt ^ sign) >> 52
	var mantissa = asInt & 0xFFFFFFFFFFFFF

	exponent = exponent + 0x3FFF - 1023

	mantissa = 0x8000000000000000 | (mantissa << (63 - 52))

	return ExtendedFloat{
		sign != 0,
		uint16(exponent),
		mantissa,
	}
}

func F64FromExtended(val ExtendedFloat) float64 {
	if val.Exponent == 0 && val.Mantissa == 0 {
		return 0
	}

	var sign float64 = 1

	if val.Sign {
		sign = -1
	}

	var mant = float64(val.Mantissa) / math.Pow(2, 63)

	return sign * mant * math.Pow(2, float64(val.Exponent)-0x3FFF)
}

func (file *Aiff) SampleRate() int {
	return int(math.Round(F64FromExtended(file.Common.SampleRate)))
}

// LoopPoints returns the sustain loop of the instrument chunk, resolved
// through the marker chunk.
func (file *Aiff) LoopPoints() (loopStart int, loopEnd int, ok bool) {
	if file.Instrument == nil || file.Markers == nil || file.Instrument.SustainLoop.PlayMode == LOOP_MODE_NONE {
		return 0, 0, false
	}

	var begin = file.Markers.FindMarker(file.Instrument.SustainLoop.BeginLoop)
	var end = file.Markers.FindMarker(file.Instrument.SustainLoop.EndLoop)

	if begin == nil || end == nil || end.Position < begin.Position {
		return 0, 0, false
	}

	return int(begin.Position), int(end.Position), true
}

// Channels splits the waveform data into one slice per channel.
func (file *Aiff) Channels() [][]int16 {
	var channelCount = int(file.Common.NumChannels)
	var frames = len(file.WaveformData) / (2 * channelCount)

	if frames > int(file.Common.NumSampleFrames) {
		frames = int(file.Common.NumSampleFrames)
	}

	var result = make([][]int16, channelCount)

	for channel := range result {
		result[channel] = make([]int16, frames)
	}

	for frame := 0; frame < frames; frame++ {
		for channel := 0; channel < channelCount; channel++ {
			var offset = (frame*channelCount + channel) * 2
			result[channel][frame] = int16(uint16(file.WaveformData[offset])<<8 | uint16(file.WaveformData[offset+1]))
		}
	}

	return result
}

// New interleaves channels into a 16-bit file. A loop is stored as a pair of
// markers referenced by a forward sustain loop.
func New(channels [][]int16, sampleRate int, looping bool, loopStart int, loopEnd int) *Aiff {
	var frames = 0

	if len(channels) > 0 {
		frames = len(channels[0])
	}

	var data = make([]byte, frames*len(channels)*2)

	for frame := 0; frame < frames; frame++ {
		for channel, samples := range channels {
			var offset = (frame*len(channels) + channel) * 2
			data[offset] = byte(uint16(samples[frame]) >> 8)
			data[offset+1] = byte(samples[frame])
		}
	}

	var result = &Aiff{
		Common: &CommonChunk{
			NumChannels:     int16(len(channels)),
			NumSampleFrames: uint32(frames),
			SampleSize:      16,
			SampleRate:      ExtendedFromF64(float64(sampleRate)),
		},
		WaveformData: data,
	}

	if looping {
		result.Markers = &MarkerChunk{
			Markers: []Marker{
				{ID: loopStartMarker, Position: uint32(loopStart), Name: "start"},
				{ID: loopEndMarker, Position: uint32(loopEnd), Name: "end"},
			},
		}

		result.Instrument = &InstrumentChunk{
			HighNote:     127,
			HighVelocity: 127,
			SustainLoop:  Loop{PlayMode: LOOP_MODE_FORWARD, BeginLoop: loopStartMarker, EndLoop: loopEndMarker},
		}
	}

	return result
}
