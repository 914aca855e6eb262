package gcadpcm

import "fmt"

// channelView is one rendition of a channel's audio together with the
// caches derived from it. Cached values are only valid for the bytes they
// were computed from, so the original and aligned renditions keep their own.
type channelView struct {
	adpcm        []byte
	sampleCount  int
	loopContexts map[int]LoopContext
	seekTables   map[int]SeekTable
}

func newChannelView(adpcm []byte, sampleCount int) channelView {
	return channelView{
		adpcm:        adpcm,
		sampleCount:  sampleCount,
		loopContexts: make(map[int]LoopContext),
		seekTables:   make(map[int]SeekTable),
	}
}

// Channel is a single mono stream of packed ADPCM along with the state a
// decoder needs to play it.
//
// A Channel is not safe for concurrent use. Loop contexts and seek tables
// are cached on first request, and SetAlignment swaps the active buffer.
type Channel struct {
	coefs     Coefficients
	gain      int16
	hist1     int16
	hist2     int16
	original  channelView
	alignment *Alignment
}

func (channel *Channel) activeView() *channelView {
	if channel.alignment != nil && channel.alignment.AlignmentNeeded {
		return &channel.alignment.view
	}

	return &channel.original
}

// GetAudioData returns the packed bytes of the active view. The slice is
// shared with the channel and must not be modified.
func (channel *Channel) GetAudioData() []byte {
	return channel.activeView().adpcm
}

func (channel *Channel) SampleCount() int {
	return channel.activeView().sampleCount
}

func (channel *Channel) UnalignedAudioData() []byte {
	return channel.original.adpcm
}

func (channel *Channel) UnalignedSampleCount() int {
	return channel.original.sampleCount
}

// PredScale is the header byte of the first frame of the active view.
func (channel *Channel) PredScale() byte {
	return predScaleAt(channel.activeView().adpcm, 0)
}

func (channel *Channel) Coefs() Coefficients {
	return channel.coefs
}

func (channel *Channel) Gain() int16 {
	return channel.gain
}

// StartContext returns the two samples that precede sample 0.
func (channel *Channel) StartContext() (hist1 int16, hist2 int16) {
	return channel.hist1, channel.hist2
}

// Alignment returns the most recent alignment result, or nil if
// SetAlignment was never called.
func (channel *Channel) Alignment() *Alignment {
	return channel.alignment
}

// Decode converts the active view to PCM.
func (channel *Channel) Decode() ([]int16, error) {
	var view = channel.activeView()
	return Decode(view.adpcm, &channel.coefs, view.sampleCount, channel.hist1, channel.hist2)
}

type ChannelBuilder struct {
	adpcm        []byte
	coefs        Coefficients
	sampleCount  int
	gain         int16
	hist1        int16
	hist2        int16
	loopContexts map[int]LoopContext
	seekTables   map[int]SeekTable
}

// NewChannelBuilder starts a channel from packed bytes. The buffer is kept,
// not copied.
func NewChannelBuilder(adpcm []byte, coefs Coefficients, sampleCount int) *ChannelBuilder {
	return &ChannelBuilder{
		adpcm:        adpcm,
		coefs:        coefs,
		sampleCount:  sampleCount,
		loopContexts: make(map[int]LoopContext),
		seekTables:   make(map[int]SeekTable),
	}
}

func (builder *ChannelBuilder) WithGain(gain int16) *ChannelBuilder {
	builder.gain = gain
	return builder
}

func (builder *ChannelBuilder) WithStartContext(hist1 int16, hist2 int16) *ChannelBuilder {
	builder.hist1 = hist1
	builder.hist2 = hist2
	return builder
}

// WithLoopContext registers a loop context read from a container header.
func (builder *ChannelBuilder) WithLoopContext(loopStart int, predScale byte, hist1 int16, hist2 int16) *ChannelBuilder {
	builder.loopContexts[loopStart] = LoopContext{
		PredScale: predScale,
		Hist1:     hist1,
		Hist2:     hist2,
	}
	return builder
}

// WithSeekTable registers a seek table read from a container header.
func (builder *ChannelBuilder) WithSeekTable(samplesPerEntry int, table []int16) *ChannelBuilder {
	builder.seekTables[samplesPerEntry] = SeekTable{
		SamplesPerEntry: samplesPerEntry,
		Table:           append([]int16(nil), table...),
	}
	return builder
}

func (builder *ChannelBuilder) Build() (*Channel, error) {
	if builder.sampleCount < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleCount, builder.sampleCount)
	}

	var byteCount = SampleCountToByteCount(builder.sampleCount)

	if len(builder.adpcm) < byteCount {
		return nil, fmt.Errorf("%w: %d samples need %d bytes, have %d", ErrBufferTooSmall, builder.sampleCount, byteCount, len(builder.adpcm))
	}

	var result = &Channel{
		coefs:    builder.coefs,
		gain:     builder.gain,
		hist1:    builder.hist1,
		hist2:    builder.hist2,
		original: newChannelView(builder.adpcm[:byteCount], builder.sampleCount),
	}

	for loopStart, context := range builder.loopContexts {
		result.original.loopContexts[loopStart] = context
	}

	for samplesPerEntry, table := range builder.seekTables {
		result.original.seekTables[samplesPerEntry] = table
	}

	return result, nil
}

// EncodeChannel derives coefficients for pcm and encodes it into a new
// channel.
func EncodeChannel(pcm []int16) *Channel {
	return EncodeChannelWithCoefficients(pcm, CalculateCoefficients(pcm))
}

func EncodeChannelWithCoefficients(pcm []int16, coefs Coefficients) *Channel {
	var adpcm = Encode(pcm, &coefs, nil)

	return &Channel{
		coefs:    coefs,
		original: newChannelView(adpcm, len(pcm)),
	}
}

func (view *channelView) clone() channelView {
	var result = newChannelView(view.adpcm, view.sampleCount)

	for loopStart, context := range view.loopContexts {
		result.loopContexts[loopStart] = context
	}

	for samplesPerEntry, table := range view.seekTables {
		result.seekTables[samplesPerEntry] = table
	}

	return result
}

// Clone returns a channel with the same audio and cached state that can be
// realigned without affecting channel. Packed buffers are shared since
// neither channel writes to them.
func (channel *Channel) Clone() *Channel {
	var result = &Channel{
		coefs:    channel.coefs,
		gain:     channel.gain,
		hist1:    channel.hist1,
		hist2:    channel.hist2,
		original: channel.original.clone(),
	}

	if channel.alignment != nil {
		var alignment = *channel.alignment
		alignment.view = channel.alignment.view.clone()
		result.alignment = &alignment
	}

	return result
}
