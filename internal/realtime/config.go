package realtime

const (
	DefaultURL   = "wss://api.openai.com/v1/realtime"
	DefaultModel = "gpt-4o-realtime-preview-2024-12-17"

	// SampleRate is the PCM16 rate the speech endpoint sends and expects.
	SampleRate = 24000
	Channels   = 1
)

type Config struct {
	URL    string
	APIKey string
	Model  string
}

type SessionOptions struct {
	Modalities         []string
	Voice              string
	Instructions       string
	TranscriptionModel string

	VADThreshold      float64
	PrefixPaddingMs   int
	SilenceDurationMs int
}

func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		Modalities:         []string{"text", "audio"},
		Voice:              "alloy",
		TranscriptionModel: "whisper-1",
		VADThreshold:       0.5,
		PrefixPaddingMs:    300,
		SilenceDurationMs:  500,
	}
}

// Callbacks are bound once at construction and never swapped afterward,
// so the read loop can invoke them without synchronization.
type Callbacks struct {
	OnAudioDelta        func(pcm []byte)
	OnTextDelta         func(text string)
	OnAgentResponse     func(text string)
	OnUserTranscription func(text string)
	OnError             func(err error)
}
