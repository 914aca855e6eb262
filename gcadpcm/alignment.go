package gcadpcm

import "fmt"

// Alignment is the result of moving a channel's loop start up to a multiple
// of AlignmentMultiple. The loop is rotated: the stream is extended past
// LoopEnd with audio taken from the start of the loop, so the looped audio
// is unchanged while both loop points shift by LoopStartAligned-LoopStart.
type Alignment struct {
	AlignmentMultiple  int
	LoopStart          int
	LoopEnd            int
	LoopStartAligned   int
	SampleCountAligned int
	AlignmentNeeded    bool

	view channelView
}

// AlignmentNeeded reports whether a loop must be re-encoded to start on a
// multiple. Empty loops are never realigned.
func AlignmentNeeded(multiple int, loopStart int, loopEnd int) bool {
	return !LoopPointsAreAligned(loopStart, multiple) && loopEnd > loopStart
}

func (alignment *Alignment) matches(multiple int, loopStart int, loopEnd int) bool {
	return alignment.AlignmentMultiple == multiple && alignment.LoopStart == loopStart && alignment.LoopEnd == loopEnd
}

// SetAlignment realigns the channel for the given loop and reports whether
// re-encoding was needed. Repeating a call with the same arguments reuses
// the previous result. When no realignment is needed the channel exposes
// its original audio again.
func (channel *Channel) SetAlignment(multiple int, loopStart int, loopEnd int) (bool, error) {
	if multiple < 0 {
		return false, fmt.Errorf("%w: %d", ErrInvalidAlignment, multiple)
	}

	if loopStart < 0 || loopEnd < loopStart || loopEnd > channel.original.sampleCount {
		return false, fmt.Errorf("%w: [%d, %d] in %d samples", ErrLoopOutOfRange, loopStart, loopEnd, channel.original.sampleCount)
	}

	if channel.alignment != nil && channel.alignment.matches(multiple, loopStart, loopEnd) {
		return channel.alignment.AlignmentNeeded, nil
	}

	alignment, err := channel.align(multiple, loopStart, loopEnd)

	if err != nil {
		return false, err
	}

	channel.alignment = alignment

	return alignment.AlignmentNeeded, nil
}

func (channel *Channel) align(multiple int, loopStart int, loopEnd int) (*Alignment, error) {
	var result = &Alignment{
		AlignmentMultiple:  multiple,
		LoopStart:          loopStart,
		LoopEnd:            loopEnd,
		LoopStartAligned:   loopStart,
		SampleCountAligned: channel.original.sampleCount,
		AlignmentNeeded:    AlignmentNeeded(multiple, loopStart, loopEnd),
	}

	if !result.AlignmentNeeded {
		return result, nil
	}

	result.LoopStartAligned = GetNextMultiple(loopStart, multiple)
	result.SampleCountAligned = loopEnd + result.LoopStartAligned - loopStart

	// Whole frames before the loop start are unaffected.
	var framesToKeep = loopStart / SamplesPerFrame
	var samplesToKeep = framesToKeep * SamplesPerFrame
	var bytesToKeep = framesToKeep * BytesPerFrame
	var samplesToEncode = result.SampleCountAligned - samplesToKeep

	pcm, err := Decode(channel.original.adpcm, &channel.coefs, loopEnd, channel.hist1, channel.hist2)

	if err != nil {
		return nil, err
	}

	var source = make([]int16, samplesToEncode)
	var written = copy(source, pcm[samplesToKeep:loopEnd])

	for written < samplesToEncode {
		written += copy(source[written:], pcm[loopStart:loopEnd])
	}

	var config = EncodeConfig{
		History1: channel.hist1,
		History2: channel.hist2,
	}

	if samplesToKeep >= 2 {
		config.History1 = pcm[samplesToKeep-1]
		config.History2 = pcm[samplesToKeep-2]
	}

	var encoded = Encode(source, &channel.coefs, &config)
	var adpcm = make([]byte, SampleCountToByteCount(result.SampleCountAligned))

	copy(adpcm, channel.original.adpcm[:bytesToKeep])
	copy(adpcm[bytesToKeep:], encoded)

	result.view = newChannelView(adpcm, result.SampleCountAligned)

	return result, nil
}
