package format

import "fmt"

const (
	DefaultPanning = 64
	DefaultVolume  = 127
)

// AudioTrack groups one or two channels that play together.
type AudioTrack struct {
	ChannelCount int
	ChannelLeft  int
	ChannelRight int
	Panning      int
	Volume       int
}

// DefaultTracks pairs channels 0/1, 2/3, ... as stereo tracks. An odd
// trailing channel becomes a mono track.
func DefaultTracks(channelCount int) []AudioTrack {
	var result []AudioTrack

	for left := 0; left < channelCount; left += 2 {
		var track = AudioTrack{
			ChannelCount: 1,
			ChannelLeft:  left,
			Panning:      DefaultPanning,
			Volume:       DefaultVolume,
		}

		if left+1 < channelCount {
			track.ChannelCount = 2
			track.ChannelRight = left + 1
		}

		result = append(result, track)
	}

	return result
}

func validateTracks(tracks []AudioTrack, channelCount int) error {
	for i, track := range tracks {
		if track.ChannelCount != 1 && track.ChannelCount != 2 {
			return fmt.Errorf("%w: track %d has %d channels", ErrInvalidTrack, i, track.ChannelCount)
		}

		if track.ChannelLeft < 0 || track.ChannelLeft >= channelCount {
			return fmt.Errorf("%w: track %d left channel %d", ErrInvalidTrack, i, track.ChannelLeft)
		}

		if track.ChannelCount == 2 && (track.ChannelRight < 0 || track.ChannelRight >= channelCount) {
			return fmt.Errorf("%w: track %d right channel %d", ErrInvalidTrack, i, track.ChannelRight)
		}
	}

	return nil
}
