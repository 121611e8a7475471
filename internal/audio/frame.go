package audio

import "time"

// Frame is a chunk of interleaved PCM16 little-endian audio.
type Frame struct {
	Data       []byte
	SampleRate int
	Channels   int
}

func (f Frame) SamplesPerChannel() int {
	if f.Channels == 0 {
		return 0
	}
	return len(f.Data) / 2 / f.Channels
}

func (f Frame) Duration() time.Duration {
	if f.SampleRate == 0 {
		return 0
	}
	return time.Duration(f.SamplesPerChannel()) * time.Second / time.Duration(f.SampleRate)
}
