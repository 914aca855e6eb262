package gcadpcm

import "fmt"

// SeekTable holds history pairs at every SamplesPerEntry samples. Entry i
// occupies Table[2i] (hist1) and Table[2i+1] (hist2) for sample
// i*SamplesPerEntry.
type SeekTable struct {
	SamplesPerEntry  int
	Table            []int16
	IsSelfCalculated bool
}

func seekTableLength(sampleCount int, samplesPerEntry int) int {
	return 2 * ((sampleCount + samplesPerEntry - 1) / samplesPerEntry)
}

// AddSeekTable records a seek table supplied from outside. It applies to the
// unaligned audio only.
func (channel *Channel) AddSeekTable(samplesPerEntry int, table []int16) {
	channel.original.seekTables[samplesPerEntry] = SeekTable{
		SamplesPerEntry: samplesPerEntry,
		Table:           append([]int16(nil), table...),
	}
}

// GetSeekTable returns the seek table for samplesPerEntry in the active
// view, following the same reuse rules as GetLoopContext. The returned table
// is a copy.
func (channel *Channel) GetSeekTable(samplesPerEntry int, ensureSelfCalculated bool) (SeekTable, error) {
	if samplesPerEntry < 1 {
		return SeekTable{}, fmt.Errorf("%w: %d", ErrInvalidSeekInterval, samplesPerEntry)
	}

	var view = channel.activeView()

	table, ok := view.seekTables[samplesPerEntry]

	if !ok || (ensureSelfCalculated && !table.IsSelfCalculated) {
		var err error
		table, err = channel.calculateSeekTable(view, samplesPerEntry)

		if err != nil {
			return SeekTable{}, err
		}

		view.seekTables[samplesPerEntry] = table
	}

	table.Table = append([]int16(nil), table.Table...)

	return table, nil
}

func (channel *Channel) calculateSeekTable(view *channelView, samplesPerEntry int) (SeekTable, error) {
	var history = make([]int16, view.sampleCount+2)

	history[0] = channel.hist2
	history[1] = channel.hist1

	pcm, err := Decode(view.adpcm, &channel.coefs, view.sampleCount, channel.hist1, channel.hist2)

	if err != nil {
		return SeekTable{}, err
	}

	copy(history[2:], pcm)

	var result = SeekTable{
		SamplesPerEntry:  samplesPerEntry,
		Table:            make([]int16, seekTableLength(view.sampleCount, samplesPerEntry)),
		IsSelfCalculated: true,
	}

	for i := 0; i < len(result.Table)/2; i++ {
		result.Table[i*2] = history[i*samplesPerEntry+1]
		result.Table[i*2+1] = history[i*samplesPerEntry]
	}

	return result, nil
}
