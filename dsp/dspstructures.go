// Package dsp reads and writes the Nintendo .dsp container: a 0x60 byte
// big-endian header followed by the packed ADPCM of one channel.
package dsp

import "github.com/lambertjamesd/gcadpcm/gcadpcm"

const HeaderSize = 0x60

const FORMAT_ADPCM = 0

type Header struct {
	SampleCount    uint32
	NibbleCount    uint32
	SampleRate     uint32
	LoopFlag       uint16
	Format         uint16
	LoopStart      uint32
	LoopEnd        uint32
	CurrentAddress uint32
	Coefs          gcadpcm.Coefficients
	Gain           int16
	PredScale      uint16
	Hist1          int16
	Hist2          int16
	LoopPredScale  uint16
	LoopHist1      int16
	LoopHist2      int16
	ChannelCount   uint16
	Interleave     uint16
	Padding        [9]uint16
}

type File struct {
	Header Header
	Data   []byte
}

func (file *File) Looping() bool {
	return file.Header.LoopFlag != 0
}

// LoopStartSample converts the header's nibble address to a sample index.
func (file *File) LoopStartSample() int {
	return gcadpcm.NibbleToSample(int(file.Header.LoopStart))
}

// LoopEndSample is exclusive. The header stores the address of the last
// sample played.
func (file *File) LoopEndSample() int {
	return gcadpcm.NibbleToSample(int(file.Header.LoopEnd)) + 1
}
