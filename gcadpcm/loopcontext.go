package gcadpcm

import "fmt"

// LoopContext is the decoder state needed to resume playback at a loop
// start: the header byte of the frame holding the loop start and the two
// samples before it.
type LoopContext struct {
	PredScale byte
	Hist1     int16
	Hist2     int16

	// IsSelfCalculated is false for values supplied by a container.
	IsSelfCalculated bool
}

// AddLoopContext records a loop context supplied from outside, such as a
// file header. It applies to the unaligned audio only.
func (channel *Channel) AddLoopContext(loopStart int, predScale byte, hist1 int16, hist2 int16) {
	channel.original.loopContexts[loopStart] = LoopContext{
		PredScale: predScale,
		Hist1:     hist1,
		Hist2:     hist2,
	}
}

// GetLoopContext returns the context for loopStart in the active view. A
// cached value is reused unless ensureSelfCalculated is set and the cached
// value was supplied, in which case it is recalculated and replaced.
func (channel *Channel) GetLoopContext(loopStart int, ensureSelfCalculated bool) (LoopContext, error) {
	var view = channel.activeView()

	if loopStart < 0 || loopStart > view.sampleCount {
		return LoopContext{}, fmt.Errorf("%w: loop start %d, sample count %d", ErrLoopOutOfRange, loopStart, view.sampleCount)
	}

	if context, ok := view.loopContexts[loopStart]; ok && (!ensureSelfCalculated || context.IsSelfCalculated) {
		return context, nil
	}

	context, err := channel.calculateLoopContext(view, loopStart)

	if err != nil {
		return LoopContext{}, err
	}

	view.loopContexts[loopStart] = context

	return context, nil
}

func (channel *Channel) calculateLoopContext(view *channelView, loopStart int) (LoopContext, error) {
	pcm, err := Decode(view.adpcm, &channel.coefs, loopStart, channel.hist1, channel.hist2)

	if err != nil {
		return LoopContext{}, err
	}

	var history = make([]int16, 0, loopStart+2)
	history = append(history, channel.hist2, channel.hist1)
	history = append(history, pcm...)

	return LoopContext{
		PredScale:        predScaleAt(view.adpcm, loopStart),
		Hist1:            history[loopStart+1],
		Hist2:            history[loopStart],
		IsSelfCalculated: true,
	}, nil
}
