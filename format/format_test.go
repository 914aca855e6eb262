package format

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/lambertjamesd/gcadpcm/gcadpcm"
)

func sine(sampleCount int, frequency float64) []int16 {
	var result = make([]int16, sampleCount)

	for i := range result {
		result[i] = int16(8000*math.Sin(2*math.Pi*frequency*float64(i)/32000) + float64(i%7)*40)
	}

	return result
}

func monoAdpcm(t *testing.T, sampleCount int) *AdpcmFormat {
	t.Helper()

	result, err := NewAdpcmFormatBuilder([]*gcadpcm.Channel{gcadpcm.EncodeChannel(sine(sampleCount, 440))}, 32000).Build()

	if err != nil {
		t.Fatal(err)
	}

	return result
}

func checkAligned(t *testing.T, f *AdpcmFormat) {
	t.Helper()

	if f.LoopStart() != 50 || f.LoopEnd() != 110 {
		t.Fatalf("expected loop 50..110, got %d..%d", f.LoopStart(), f.LoopEnd())
	}

	if f.SampleCount() != 110 {
		t.Fatalf("expected 110 samples, got %d", f.SampleCount())
	}

	if len(f.Channel(0).GetAudioData()) != 63 {
		t.Fatalf("expected 63 bytes, got %d", len(f.Channel(0).GetAudioData()))
	}
}

func TestAlignmentThenLoop(t *testing.T) {
	var f = monoAdpcm(t, 100)

	if err := f.SetAlignment(50); err != nil {
		t.Fatal(err)
	}

	if err := f.SetLoop(true, 30, 90); err != nil {
		t.Fatal(err)
	}

	checkAligned(t, f)
}

func TestLoopThenAlignment(t *testing.T) {
	var f = monoAdpcm(t, 100)

	if err := f.SetLoop(true, 30, 90); err != nil {
		t.Fatal(err)
	}

	if err := f.SetAlignment(50); err != nil {
		t.Fatal(err)
	}

	checkAligned(t, f)

	if f.UnalignedLoopStart() != 30 || f.UnalignedLoopEnd() != 90 {
		t.Fatalf("unaligned loop changed to %d..%d", f.UnalignedLoopStart(), f.UnalignedLoopEnd())
	}

	if err := f.SetAlignment(0); err != nil {
		t.Fatal(err)
	}

	if f.SampleCount() != 100 || len(f.Channel(0).GetAudioData()) != 58 {
		t.Fatalf("expected original 100 samples in 58 bytes, got %d in %d", f.SampleCount(), len(f.Channel(0).GetAudioData()))
	}

	if f.LoopStart() != 30 || f.LoopEnd() != 90 {
		t.Fatalf("expected loop 30..90, got %d..%d", f.LoopStart(), f.LoopEnd())
	}
}

func TestDisablingLoopRemovesAlignment(t *testing.T) {
	var f = monoAdpcm(t, 100)

	f.SetAlignment(50)
	f.SetLoop(true, 30, 90)

	if err := f.SetLoop(false, 0, 0); err != nil {
		t.Fatal(err)
	}

	if f.Looping() || f.SampleCount() != 100 || f.LoopStart() != 0 || f.LoopEnd() != 0 {
		t.Fatalf("loop not cleared: looping %v count %d loop %d..%d", f.Looping(), f.SampleCount(), f.LoopStart(), f.LoopEnd())
	}

	if f.AlignmentMultiple() != 50 {
		t.Fatalf("alignment multiple should be kept, got %d", f.AlignmentMultiple())
	}
}

func TestSetLoopValidation(t *testing.T) {
	var f = monoAdpcm(t, 100)

	if err := f.SetLoop(true, 20, 60); err != nil {
		t.Fatal(err)
	}

	for _, loop := range [][2]int{{-1, 10}, {5, 3}, {0, 101}} {
		if err := f.SetLoop(true, loop[0], loop[1]); !errors.Is(err, ErrLoopOutOfRange) {
			t.Fatalf("loop %v: expected ErrLoopOutOfRange, got %v", loop, err)
		}
	}

	if f.LoopStart() != 20 || f.LoopEnd() != 60 {
		t.Fatalf("failed SetLoop changed state to %d..%d", f.LoopStart(), f.LoopEnd())
	}

	if err := f.SetLoop(true, 0, f.SampleCount()); err != nil {
		t.Fatal(err)
	}
}

func TestSetLoopWarmsLoopContext(t *testing.T) {
	var f = monoAdpcm(t, 1000)

	f.SetAlignment(256)

	if err := f.SetLoop(true, 300, 900); err != nil {
		t.Fatal(err)
	}

	context, err := f.Channel(0).GetLoopContext(f.LoopStart(), false)

	if err != nil {
		t.Fatal(err)
	}

	if !context.IsSelfCalculated {
		t.Fatal("expected a calculated loop context")
	}

	pcm, err := f.ToPcm16()

	if err != nil {
		t.Fatal(err)
	}

	if pcm.SampleCount() != 1112 || pcm.LoopStart() != 512 || pcm.LoopEnd() != 1112 {
		t.Fatalf("unexpected pcm layout: %d samples loop %d..%d", pcm.SampleCount(), pcm.LoopStart(), pcm.LoopEnd())
	}

	if context.Hist1 != pcm.Channel(0)[511] || context.Hist2 != pcm.Channel(0)[510] {
		t.Fatal("loop context does not match decoded history")
	}
}

func TestAdpcmBuilderValidation(t *testing.T) {
	var short = gcadpcm.EncodeChannel(sine(50, 440))
	var long = gcadpcm.EncodeChannel(sine(60, 440))

	var cases = []struct {
		name    string
		builder *AdpcmFormatBuilder
		err     error
	}{
		{"empty", NewAdpcmFormatBuilder(nil, 32000), ErrNoChannels},
		{"nil", NewAdpcmFormatBuilder([]*gcadpcm.Channel{short, nil}, 32000), ErrNilChannel},
		{"mismatch", NewAdpcmFormatBuilder([]*gcadpcm.Channel{short, long}, 32000), ErrChannelLengthMismatch},
		{"rate", NewAdpcmFormatBuilder([]*gcadpcm.Channel{short}, 0), ErrInvalidSampleRate},
		{"loop", NewAdpcmFormatBuilder([]*gcadpcm.Channel{short}, 32000).WithLoop(true, 10, 51), ErrLoopOutOfRange},
		{"track", NewAdpcmFormatBuilder([]*gcadpcm.Channel{short}, 32000).WithTracks([]AudioTrack{{ChannelCount: 2, ChannelLeft: 0, ChannelRight: 1}}), ErrInvalidTrack},
		{"alignment", NewAdpcmFormatBuilder([]*gcadpcm.Channel{short}, 32000).WithAlignment(-1), ErrInvalidAlignment},
	}

	for _, test := range cases {
		result, err := test.builder.Build()

		if !errors.Is(err, test.err) {
			t.Fatalf("%s: expected %v, got %v", test.name, test.err, err)
		}

		if result != nil {
			t.Fatalf("%s: expected no format on error", test.name)
		}
	}
}

func TestBuilderAppliesAlignment(t *testing.T) {
	f, err := NewAdpcmFormatBuilder([]*gcadpcm.Channel{gcadpcm.EncodeChannel(sine(100, 440))}, 32000).
		WithLoop(true, 30, 90).
		WithAlignment(50).
		Build()

	if err != nil {
		t.Fatal(err)
	}

	checkAligned(t, f)
}

func TestDefaultTracks(t *testing.T) {
	var tracks = DefaultTracks(3)

	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}

	if tracks[0].ChannelCount != 2 || tracks[0].ChannelLeft != 0 || tracks[0].ChannelRight != 1 {
		t.Fatalf("unexpected first track %+v", tracks[0])
	}

	if tracks[1].ChannelCount != 1 || tracks[1].ChannelLeft != 2 {
		t.Fatalf("unexpected second track %+v", tracks[1])
	}

	if tracks[0].Panning != DefaultPanning || tracks[0].Volume != DefaultVolume {
		t.Fatalf("unexpected defaults %+v", tracks[0])
	}
}

func TestTracksFollowChannelCount(t *testing.T) {
	pcm, err := NewPcm16FormatBuilder([][]int16{sine(40, 440), sine(40, 660)}, 32000).Build()

	if err != nil {
		t.Fatal(err)
	}

	if len(pcm.Tracks()) != 1 {
		t.Fatalf("expected one stereo track, got %d", len(pcm.Tracks()))
	}

	added, err := pcm.Add(pcm)

	if err != nil {
		t.Fatal(err)
	}

	if added.ChannelCount() != 4 || len(added.Tracks()) != 2 {
		t.Fatalf("expected 4 channels in 2 tracks, got %d in %d", added.ChannelCount(), len(added.Tracks()))
	}
}

func TestEncodeAndDecodeFormat(t *testing.T) {
	var left = sine(700, 440)
	var right = sine(700, 880)

	pcm, err := NewPcm16FormatBuilder([][]int16{left, right}, 32000).WithLoop(true, 100, 600).Build()

	if err != nil {
		t.Fatal(err)
	}

	adpcm, err := EncodeFromPcm16(pcm)

	if err != nil {
		t.Fatal(err)
	}

	if adpcm.Kind() != KindGcAdpcm || adpcm.ChannelCount() != 2 || adpcm.SampleCount() != 700 {
		t.Fatalf("unexpected encoded format: %v %d channels %d samples", adpcm.Kind(), adpcm.ChannelCount(), adpcm.SampleCount())
	}

	if adpcm.Channel(0).Coefs() == adpcm.Channel(1).Coefs() {
		t.Fatal("expected per-channel coefficients")
	}

	decoded, err := adpcm.ToPcm16()

	if err != nil {
		t.Fatal(err)
	}

	if !decoded.Looping() || decoded.LoopStart() != 100 || decoded.LoopEnd() != 600 {
		t.Fatalf("loop lost in round trip: %d..%d", decoded.LoopStart(), decoded.LoopEnd())
	}

	for i, source := range [][]int16{left, right} {
		var sum, energy float64

		for j, value := range decoded.Channel(i) {
			var diff = float64(value) - float64(source[j])
			sum += diff * diff
			energy += float64(source[j]) * float64(source[j])
		}

		if math.Sqrt(sum/energy) > 0.1 {
			t.Fatalf("channel %d: relative error %f", i, math.Sqrt(sum/energy))
		}
	}
}

func TestGetChannelsAndAdd(t *testing.T) {
	pcm, _ := NewPcm16FormatBuilder([][]int16{sine(200, 440), sine(200, 880)}, 32000).Build()
	adpcm, err := EncodeFromPcm16(pcm)

	if err != nil {
		t.Fatal(err)
	}

	right, err := adpcm.GetChannels(1)

	if err != nil {
		t.Fatal(err)
	}

	if right.ChannelCount() != 1 || !bytes.Equal(right.(*AdpcmFormat).Channel(0).GetAudioData(), adpcm.Channel(1).GetAudioData()) {
		t.Fatal("GetChannels returned the wrong channel")
	}

	if right.(*AdpcmFormat).Channel(0) == adpcm.Channel(1) {
		t.Fatal("GetChannels shared a channel with its source")
	}

	if _, err := adpcm.GetChannels(2); !errors.Is(err, ErrInvalidChannelIndex) {
		t.Fatalf("expected ErrInvalidChannelIndex, got %v", err)
	}

	mono, _ := NewPcm16FormatBuilder([][]int16{sine(200, 330)}, 32000).Build()
	combined, err := adpcm.Add(mono)

	if err != nil {
		t.Fatal(err)
	}

	if combined.Kind() != KindGcAdpcm || combined.ChannelCount() != 3 {
		t.Fatalf("expected 3 ADPCM channels, got %d of %v", combined.ChannelCount(), combined.Kind())
	}

	short, _ := NewPcm16FormatBuilder([][]int16{sine(100, 330)}, 32000).Build()

	if _, err := adpcm.Add(short); !errors.Is(err, ErrChannelLengthMismatch) {
		t.Fatalf("expected ErrChannelLengthMismatch, got %v", err)
	}
}

func TestPcm16BuilderValidation(t *testing.T) {
	if _, err := NewPcm16FormatBuilder(nil, 32000).Build(); !errors.Is(err, ErrNoChannels) {
		t.Fatalf("expected ErrNoChannels, got %v", err)
	}

	if _, err := NewPcm16FormatBuilder([][]int16{{1, 2}, nil}, 32000).Build(); !errors.Is(err, ErrNilChannel) {
		t.Fatalf("expected ErrNilChannel, got %v", err)
	}

	if _, err := NewPcm16FormatBuilder([][]int16{{1, 2}, {1}}, 32000).Build(); !errors.Is(err, ErrChannelLengthMismatch) {
		t.Fatalf("expected ErrChannelLengthMismatch, got %v", err)
	}
}

func TestEncodeWithSuppliedCoefficients(t *testing.T) {
	pcm, _ := NewPcm16FormatBuilder([][]int16{sine(300, 440), sine(300, 880)}, 32000).Build()

	var fixed gcadpcm.Coefficients
	fixed[0] = 2048

	adpcm, err := EncodeFromPcm16WithCoefficients(pcm, []gcadpcm.Coefficients{fixed})

	if err != nil {
		t.Fatal(err)
	}

	if adpcm.Channel(0).Coefs() != fixed {
		t.Fatal("expected the supplied coefficients on channel 0")
	}

	if adpcm.Channel(1).Coefs() != gcadpcm.CalculateCoefficients(pcm.Channel(1)) {
		t.Fatal("expected calculated coefficients on channel 1")
	}
}

func TestAddLeavesSourceUnchanged(t *testing.T) {
	var looped = monoAdpcm(t, 100)

	if err := looped.SetLoop(true, 30, 90); err != nil {
		t.Fatal(err)
	}

	if err := looped.SetAlignment(50); err != nil {
		t.Fatal(err)
	}

	var plain = monoAdpcm(t, 100)
	var before = append([]byte(nil), plain.Channel(0).GetAudioData()...)

	combined, err := looped.Add(plain)

	if err != nil {
		t.Fatal(err)
	}

	if combined.SampleCount() != 110 || len(combined.(*AdpcmFormat).Channel(1).GetAudioData()) != 63 {
		t.Fatalf("expected the added channel to be aligned, got %d samples", combined.SampleCount())
	}

	if plain.SampleCount() != 100 || plain.Channel(0).SampleCount() != 100 {
		t.Fatalf("expected source to keep 100 samples, got %d and %d", plain.SampleCount(), plain.Channel(0).SampleCount())
	}

	if !bytes.Equal(plain.Channel(0).GetAudioData(), before) {
		t.Fatal("adding a format changed its audio")
	}

	subset, err := combined.GetChannels(1)

	if err != nil {
		t.Fatal(err)
	}

	if err := subset.(*AdpcmFormat).SetLoop(false, 0, 0); err != nil {
		t.Fatal(err)
	}

	if combined.SampleCount() != 110 || len(combined.(*AdpcmFormat).Channel(1).GetAudioData()) != 63 {
		t.Fatal("changing a derived format changed its source")
	}
}

func TestDuplicateChannels(t *testing.T) {
	var channel = gcadpcm.EncodeChannel(sine(2000, 440))

	f, err := NewAdpcmFormatBuilder([]*gcadpcm.Channel{channel, channel}, 32000).
		WithLoop(true, 300, 1900).
		WithAlignment(256).
		Build()

	if err != nil {
		t.Fatal(err)
	}

	if f.Channel(0) == f.Channel(1) {
		t.Fatal("expected each channel to be distinct")
	}

	if f.SampleCount() != 2112 || channel.SampleCount() != 2000 {
		t.Fatalf("expected 2112 aligned samples and an untouched source, got %d and %d", f.SampleCount(), channel.SampleCount())
	}

	doubled, err := f.GetChannels(0, 0)

	if err != nil {
		t.Fatal(err)
	}

	added, err := doubled.Add(doubled)

	if err != nil {
		t.Fatal(err)
	}

	if added.ChannelCount() != 4 || added.SampleCount() != 2112 {
		t.Fatalf("expected 4 channels of 2112 samples, got %d of %d", added.ChannelCount(), added.SampleCount())
	}

	pcm, err := added.ToPcm16()

	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i < pcm.ChannelCount(); i++ {
		for j, sample := range pcm.Channel(i) {
			if sample != pcm.Channel(0)[j] {
				t.Fatalf("channel %d differs at sample %d", i, j)
			}
		}
	}
}

func TestSetLoopRestoresOnChannelFailure(t *testing.T) {
	var f = &AdpcmFormat{
		base: base{sampleRate: 32000},
		channels: []*gcadpcm.Channel{
			gcadpcm.EncodeChannel(sine(100, 440)),
			gcadpcm.EncodeChannel(sine(60, 440)),
		},
		alignmentMultiple: 50,
	}

	if err := f.SetLoop(true, 30, 90); !errors.Is(err, gcadpcm.ErrLoopOutOfRange) {
		t.Fatalf("expected gcadpcm.ErrLoopOutOfRange, got %v", err)
	}

	if f.Looping() || f.LoopStart() != 0 || f.LoopEnd() != 0 {
		t.Fatalf("expected loop settings to be restored, got %v %d..%d", f.Looping(), f.LoopStart(), f.LoopEnd())
	}

	if f.SampleCount() != 100 || len(f.Channel(0).GetAudioData()) != 58 {
		t.Fatalf("expected original 100 samples in 58 bytes, got %d in %d", f.SampleCount(), len(f.Channel(0).GetAudioData()))
	}
}
