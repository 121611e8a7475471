package room

import (
	"context"

	"github.com/eleven-am/voice-relay/internal/audio"
)

// Adapter is the relay's view of a realtime media room. Implementations
// deliver participant audio and data messages through the callbacks
// bound at Connect and accept agent audio and data for publishing.
type Adapter interface {
	Connect(ctx context.Context, cb Callbacks) error

	// CaptureFrame queues agent audio for playout. It never blocks;
	// when playout falls behind, the oldest queued audio is dropped.
	CaptureFrame(f audio.Frame)

	// FlushPlayout discards any queued but unplayed agent audio.
	FlushPlayout()

	SendData(payload []byte, reliable bool) error

	Close() error
}

// Callbacks are bound once at Connect and never swapped afterward.
type Callbacks struct {
	// OnTrackAudio fires once per subscribed audio track. The stream's
	// frame channel closes when the track ends.
	OnTrackAudio func(ts TrackStream)

	OnData func(payload []byte)

	OnDisconnect func(reason string)
}

// TrackStream is a live feed of decoded PCM16 frames from one
// participant's audio track.
type TrackStream interface {
	Participant() string
	Frames() <-chan audio.Frame
}
