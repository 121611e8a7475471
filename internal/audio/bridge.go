package audio

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrOddPayload is returned when a PCM16 payload has a trailing half sample.
var ErrOddPayload = errors.New("pcm16 payload length is not a multiple of 2")

// Bridge converts between room-side audio frames and the model's wire
// format: base64-encoded PCM16 mono at the model sample rate. It owns
// the resampling policy for both directions.
type Bridge struct {
	modelRate int
}

func NewBridge(modelRate int) *Bridge {
	return &Bridge{modelRate: modelRate}
}

func (b *Bridge) ModelRate() int {
	return b.modelRate
}

// FrameToModelPayload resamples a mono frame to the model rate and
// encodes it for an audio append event.
func (b *Bridge) FrameToModelPayload(f Frame) (string, error) {
	if len(f.Data)%2 != 0 {
		return "", ErrOddPayload
	}
	if f.Channels != 1 {
		return "", fmt.Errorf("expected mono frame, got %d channels", f.Channels)
	}

	data := f.Data
	if f.SampleRate != b.modelRate {
		samples := PCMBytesToInt16(data)
		samples = ResampleInt16(samples, f.SampleRate, b.modelRate)
		data = Int16ToPCMBytes(samples)
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

// ModelPayloadToFrame wraps decoded model audio bytes as a mono frame
// at the model rate. Odd-length payloads are rejected rather than
// silently truncated.
func (b *Bridge) ModelPayloadToFrame(pcm []byte) (Frame, error) {
	if len(pcm)%2 != 0 {
		return Frame{}, ErrOddPayload
	}
	return Frame{
		Data:       pcm,
		SampleRate: b.modelRate,
		Channels:   1,
	}, nil
}
