package gcadpcm

import (
	"errors"
	"testing"
)

func TestChannelBuilderValidation(t *testing.T) {
	var coefs Coefficients

	_, err := NewChannelBuilder(make([]byte, 8), coefs, 15).Build()

	if !errors.Is(err, ErrBufferTooSmall) {
		t.Fatalf("expected ErrBufferTooSmall, got %v", err)
	}

	_, err = NewChannelBuilder(nil, coefs, -1).Build()

	if !errors.Is(err, ErrInvalidSampleCount) {
		t.Fatalf("expected ErrInvalidSampleCount, got %v", err)
	}

	channel, err := NewChannelBuilder(make([]byte, 20), coefs, 14).
		WithGain(3).
		WithStartContext(10, 20).
		Build()

	if err != nil {
		t.Fatal(err)
	}

	if len(channel.GetAudioData()) != 8 {
		t.Fatalf("expected buffer trimmed to 8 bytes, got %d", len(channel.GetAudioData()))
	}

	if hist1, hist2 := channel.StartContext(); hist1 != 10 || hist2 != 20 || channel.Gain() != 3 {
		t.Fatalf("unexpected start context %d %d gain %d", hist1, hist2, channel.Gain())
	}
}

func TestLoopContextResumesDecoding(t *testing.T) {
	var channel = EncodeChannel(testSignal(500, 440, 9000))

	full, err := channel.Decode()

	if err != nil {
		t.Fatal(err)
	}

	for _, loopStart := range []int{0, 1, 2, 13, 14, 15, 100, 255, 499} {
		context, err := channel.GetLoopContext(loopStart, true)

		if err != nil {
			t.Fatal(err)
		}

		if !context.IsSelfCalculated {
			t.Fatalf("loop start %d: expected self-calculated context", loopStart)
		}

		if context.PredScale != channel.GetAudioData()[loopStart/14*8] {
			t.Fatalf("loop start %d: wrong pred/scale %#x", loopStart, context.PredScale)
		}

		resumed, err := DecodeRange(channel.GetAudioData(), &channel.coefs, loopStart, 500-loopStart, context.Hist1, context.Hist2)

		if err != nil {
			t.Fatal(err)
		}

		for i := range resumed {
			if resumed[i] != full[loopStart+i] {
				t.Fatalf("loop start %d: sample %d expected %d got %d", loopStart, loopStart+i, full[loopStart+i], resumed[i])
			}
		}
	}
}

func TestLoopContextPrecedence(t *testing.T) {
	var channel = EncodeChannel(testSignal(300, 440, 9000))

	channel.AddLoopContext(100, 0x42, 1, 2)

	supplied, err := channel.GetLoopContext(100, false)

	if err != nil {
		t.Fatal(err)
	}

	if supplied.IsSelfCalculated || supplied.PredScale != 0x42 || supplied.Hist1 != 1 || supplied.Hist2 != 2 {
		t.Fatalf("expected supplied context back, got %+v", supplied)
	}

	calculated, err := channel.GetLoopContext(100, true)

	if err != nil {
		t.Fatal(err)
	}

	if !calculated.IsSelfCalculated {
		t.Fatal("expected self-calculated context")
	}

	cached, _ := channel.GetLoopContext(100, false)

	if cached != calculated {
		t.Fatalf("expected calculated context to replace supplied one, got %+v", cached)
	}

	if _, err := channel.GetLoopContext(301, false); !errors.Is(err, ErrLoopOutOfRange) {
		t.Fatalf("expected ErrLoopOutOfRange, got %v", err)
	}
}

func TestSeekTableCoversStream(t *testing.T) {
	var channel = EncodeChannel(testSignal(1000, 440, 9000))

	full, err := channel.Decode()

	if err != nil {
		t.Fatal(err)
	}

	for _, samplesPerEntry := range []int{1, 7, 14, 100, 999, 1000, 5000} {
		table, err := channel.GetSeekTable(samplesPerEntry, false)

		if err != nil {
			t.Fatal(err)
		}

		var entries = (1000 + samplesPerEntry - 1) / samplesPerEntry

		if len(table.Table) != 2*entries {
			t.Fatalf("interval %d: expected %d values, got %d", samplesPerEntry, 2*entries, len(table.Table))
		}

		if table.Table[0] != 0 || table.Table[1] != 0 {
			t.Fatalf("interval %d: first entry should be the start context", samplesPerEntry)
		}

		for i := 1; i < entries; i++ {
			var sample = i * samplesPerEntry

			if table.Table[i*2] != full[sample-1] {
				t.Fatalf("interval %d entry %d: hist1 %d expected %d", samplesPerEntry, i, table.Table[i*2], full[sample-1])
			}

			if sample >= 2 && table.Table[i*2+1] != full[sample-2] {
				t.Fatalf("interval %d entry %d: hist2 %d expected %d", samplesPerEntry, i, table.Table[i*2+1], full[sample-2])
			}
		}
	}

	if _, err := channel.GetSeekTable(0, false); !errors.Is(err, ErrInvalidSeekInterval) {
		t.Fatalf("expected ErrInvalidSeekInterval, got %v", err)
	}
}

func TestSeekTablePrecedence(t *testing.T) {
	var channel = EncodeChannel(testSignal(100, 440, 9000))

	channel.AddSeekTable(14, []int16{5, 6})

	supplied, _ := channel.GetSeekTable(14, false)

	if supplied.IsSelfCalculated || len(supplied.Table) != 2 || supplied.Table[0] != 5 {
		t.Fatalf("expected supplied table back, got %+v", supplied)
	}

	calculated, _ := channel.GetSeekTable(14, true)

	if !calculated.IsSelfCalculated || len(calculated.Table) != 2*8 {
		t.Fatalf("expected recalculated table with 16 values, got %+v", calculated)
	}

	calculated.Table[0] = 99

	again, _ := channel.GetSeekTable(14, false)

	if again.Table[0] == 99 {
		t.Fatal("returned seek table aliases the cache")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	var channel = EncodeChannel(testSignal(300, 440, 9000))

	channel.AddLoopContext(100, 0x42, 1, 2)
	channel.AddSeekTable(50, []int16{1, 2, 3, 4})

	var clone = channel.Clone()

	supplied, err := clone.GetLoopContext(100, false)

	if err != nil {
		t.Fatal(err)
	}

	if supplied.IsSelfCalculated || supplied.PredScale != 0x42 {
		t.Fatalf("expected clone to keep the supplied context, got %+v", supplied)
	}

	if _, err := clone.GetLoopContext(100, true); err != nil {
		t.Fatal(err)
	}

	if _, err := clone.SetAlignment(64, 100, 250); err != nil {
		t.Fatal(err)
	}

	if channel.SampleCount() != 300 || channel.Alignment() != nil {
		t.Fatalf("realigning a clone changed the source: %d samples", channel.SampleCount())
	}

	if clone.SampleCount() != 278 {
		t.Fatalf("expected clone to have 278 aligned samples, got %d", clone.SampleCount())
	}

	original, _ := channel.GetLoopContext(100, false)

	if original.IsSelfCalculated {
		t.Fatal("recalculating on a clone replaced the source's supplied context")
	}

	var again = clone.Clone()

	if again.SampleCount() != 278 || len(again.GetAudioData()) != len(clone.GetAudioData()) {
		t.Fatal("expected a clone of an aligned channel to stay aligned")
	}
}
