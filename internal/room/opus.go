package room

import (
	"gopkg.in/hraban/opus.v2"
)

const (
	// TrackSampleRate is the decode rate for opus audio from the room.
	TrackSampleRate = 48000
	TrackChannels   = 1

	// 120ms at 48kHz, the largest frame opus allows.
	maxFrameSamples = 5760
)

type opusDecoder struct {
	dec *opus.Decoder
}

func newOpusDecoder() (*opusDecoder, error) {
	dec, err := opus.NewDecoder(TrackSampleRate, TrackChannels)
	if err != nil {
		return nil, err
	}
	return &opusDecoder{dec: dec}, nil
}

func (d *opusDecoder) Decode(packet []byte) ([]int16, error) {
	pcm := make([]int16, maxFrameSamples*TrackChannels)
	n, err := d.dec.Decode(packet, pcm)
	if err != nil {
		return nil, err
	}
	return pcm[:n*TrackChannels], nil
}
