package room

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	media "github.com/livekit/media-sdk"
	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	lkmedia "github.com/livekit/server-sdk-go/v2/pkg/media"
	"github.com/pion/webrtc/v4"

	"github.com/eleven-am/voice-relay/internal/audio"
)

const (
	readDeadline      = 5 * time.Second
	trackStreamBuffer = 64
	agentTrackName    = "agent_voice"
)

type LiveKitConfig struct {
	URL       string
	APIKey    string
	APISecret string
	RoomName  string
	Identity  string

	// PlayoutRate is the sample rate of the published agent track.
	PlayoutRate int
	QueueDepth  int
}

// LiveKit connects to a LiveKit room as an agent participant. It
// publishes one PCM playout track fed by a bounded queue and starts a
// decoded audio stream for every subscribed participant track.
type LiveKit struct {
	cfg LiveKitConfig
	log *slog.Logger

	cb Callbacks

	mu       sync.Mutex
	roomConn *lksdk.Room
	audioOut *lkmedia.PCMLocalTrack

	queue  *audio.PlayoutQueue
	tracks *trackSet

	// per-track cancel funcs, keyed by track SID
	readers sync.Map

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closing   atomic.Bool
	closeOnce sync.Once
}

func NewLiveKit(cfg LiveKitConfig, log *slog.Logger) *LiveKit {
	if cfg.PlayoutRate <= 0 {
		cfg.PlayoutRate = 24000
	}
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &LiveKit{
		cfg:    cfg,
		log:    log.With("component", "room", "room", cfg.RoomName),
		queue:  audio.NewPlayoutQueue(cfg.QueueDepth),
		tracks: newTrackSet(),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (l *LiveKit) Connect(ctx context.Context, cb Callbacks) error {
	l.cb = cb

	roomConn, err := lksdk.ConnectToRoom(
		l.cfg.URL,
		lksdk.ConnectInfo{
			APIKey:              l.cfg.APIKey,
			APISecret:           l.cfg.APISecret,
			RoomName:            l.cfg.RoomName,
			ParticipantIdentity: l.cfg.Identity,
			ParticipantKind:     lksdk.ParticipantAgent,
		},
		l.roomCallback(),
		lksdk.WithAutoSubscribe(true),
	)
	if err != nil {
		return fmt.Errorf("connect to room %s: %w", l.cfg.RoomName, err)
	}

	l.mu.Lock()
	l.roomConn = roomConn
	l.mu.Unlock()

	if err := l.publishPlayoutTrack(); err != nil {
		roomConn.Disconnect()
		return err
	}

	l.wg.Add(1)
	go l.playoutLoop()

	// Participants already in the room published their tracks before we
	// joined, so the subscribe callback alone is not enough.
	for _, rp := range roomConn.GetRemoteParticipants() {
		l.subscribeParticipant(rp)
	}

	l.log.Info("connected to room", "identity", l.cfg.Identity)
	return nil
}

func (l *LiveKit) roomCallback() *lksdk.RoomCallback {
	return &lksdk.RoomCallback{
		ParticipantCallback: lksdk.ParticipantCallback{
			OnTrackSubscribed: func(track *webrtc.TrackRemote, pub *lksdk.RemoteTrackPublication, rp *lksdk.RemoteParticipant) {
				l.handleTrackSubscribed(track, pub, rp)
			},
			OnTrackUnsubscribed: func(track *webrtc.TrackRemote, pub *lksdk.RemoteTrackPublication, rp *lksdk.RemoteParticipant) {
				if cancel, ok := l.readers.LoadAndDelete(pub.SID()); ok {
					cancel.(context.CancelFunc)()
				}
			},
			OnDataPacket: func(data lksdk.DataPacket, params lksdk.DataReceiveParams) {
				l.handleDataPacket(data, params)
			},
		},
		OnParticipantConnected: func(rp *lksdk.RemoteParticipant) {
			l.subscribeParticipant(rp)
		},
		OnDisconnected: func() {
			if l.closing.Load() {
				return
			}
			if l.cb.OnDisconnect != nil {
				l.cb.OnDisconnect("room connection lost")
			}
		},
	}
}

func (l *LiveKit) publishPlayoutTrack() error {
	track, err := lkmedia.NewPCMLocalTrack(l.cfg.PlayoutRate, 1, nil)
	if err != nil {
		return fmt.Errorf("create playout track: %w", err)
	}

	l.mu.Lock()
	roomConn := l.roomConn
	l.audioOut = track
	l.mu.Unlock()

	_, err = roomConn.LocalParticipant.PublishTrack(track, &lksdk.TrackPublicationOptions{
		Name:   agentTrackName,
		Source: livekit.TrackSource_MICROPHONE,
	})
	if err != nil {
		return fmt.Errorf("publish playout track: %w", err)
	}
	return nil
}

// subscribeParticipant forces subscription to a participant's audio
// publications. Auto-subscribe covers tracks published after we join;
// this covers the rest.
func (l *LiveKit) subscribeParticipant(rp *lksdk.RemoteParticipant) {
	for _, pub := range rp.TrackPublications() {
		if pub.Kind() != lksdk.TrackKindAudio {
			continue
		}
		remotePub, ok := pub.(*lksdk.RemoteTrackPublication)
		if !ok || remotePub.IsSubscribed() {
			continue
		}
		if err := remotePub.SetSubscribed(true); err != nil {
			l.log.Error("subscribe to audio track failed",
				"participant", rp.Identity(), "track", remotePub.SID(), "error", err)
		}
	}
}

func (l *LiveKit) handleTrackSubscribed(track *webrtc.TrackRemote, pub *lksdk.RemoteTrackPublication, rp *lksdk.RemoteParticipant) {
	if track.Kind() != webrtc.RTPCodecTypeAudio {
		return
	}
	if !l.tracks.claim(pub.SID()) {
		return
	}

	dec, err := newOpusDecoder()
	if err != nil {
		l.tracks.release(pub.SID())
		l.log.Error("create opus decoder failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(l.ctx)
	l.readers.Store(pub.SID(), cancel)

	stream := &liveTrackStream{
		participant: rp.Identity(),
		frames:      make(chan audio.Frame, trackStreamBuffer),
	}
	if l.cb.OnTrackAudio != nil {
		l.cb.OnTrackAudio(stream)
	}

	l.log.Info("reading participant track",
		"participant", rp.Identity(), "track", pub.SID(), "codec", track.Codec().MimeType)

	l.wg.Add(1)
	go l.readTrack(ctx, track, pub.SID(), dec, stream)
}

func (l *LiveKit) readTrack(ctx context.Context, track *webrtc.TrackRemote, sid string, dec *opusDecoder, stream *liveTrackStream) {
	defer l.wg.Done()
	defer func() {
		close(stream.frames)
		l.readers.Delete(sid)
		l.tracks.release(sid)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := track.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
			return
		}
		pkt, _, err := track.ReadRTP()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if errors.Is(err, io.EOF) {
				return
			}
			l.log.Warn("track read error", "track", sid, "error", err)
			return
		}
		if pkt == nil || len(pkt.Payload) == 0 {
			continue
		}

		pcm, err := dec.Decode(pkt.Payload)
		if err != nil {
			l.log.Warn("opus decode error", "track", sid, "error", err)
			continue
		}

		frame := audio.Frame{
			Data:       audio.Int16ToPCMBytes(pcm),
			SampleRate: TrackSampleRate,
			Channels:   TrackChannels,
		}
		select {
		case stream.frames <- frame:
		case <-ctx.Done():
			return
		default:
			// Consumer fell behind, drop the frame.
		}
	}
}

func (l *LiveKit) handleDataPacket(data lksdk.DataPacket, params lksdk.DataReceiveParams) {
	payload := data.ToProto().GetUser().GetPayload()
	if len(payload) == 0 {
		return
	}
	if l.cb.OnData != nil {
		l.cb.OnData(payload)
	}
}

func (l *LiveKit) CaptureFrame(f audio.Frame) {
	l.queue.Push(f)
}

func (l *LiveKit) FlushPlayout() {
	dropped := l.queue.Drain()

	l.mu.Lock()
	track := l.audioOut
	l.mu.Unlock()
	if track != nil {
		track.ClearQueue()
	}

	if dropped > 0 {
		l.log.Debug("flushed playout queue", "frames", dropped)
	}
}

func (l *LiveKit) playoutLoop() {
	defer l.wg.Done()

	for frame := range l.queue.Frames() {
		l.mu.Lock()
		track := l.audioOut
		l.mu.Unlock()
		if track == nil {
			continue
		}

		sample := media.PCM16Sample(audio.PCMBytesToInt16(frame.Data))
		if err := track.WriteSample(sample); err != nil {
			l.log.Warn("playout write failed", "error", err)
		}
	}
}

func (l *LiveKit) SendData(payload []byte, reliable bool) error {
	l.mu.Lock()
	roomConn := l.roomConn
	l.mu.Unlock()
	if roomConn == nil {
		return fmt.Errorf("not connected")
	}

	return roomConn.LocalParticipant.PublishDataPacket(
		lksdk.UserData(payload),
		lksdk.WithDataPublishReliable(reliable),
	)
}

func (l *LiveKit) Close() error {
	l.closeOnce.Do(func() {
		l.closing.Store(true)
		l.cancel()

		l.readers.Range(func(key, value any) bool {
			value.(context.CancelFunc)()
			return true
		})

		l.queue.Close()

		l.mu.Lock()
		track := l.audioOut
		l.audioOut = nil
		roomConn := l.roomConn
		l.roomConn = nil
		l.mu.Unlock()

		if track != nil {
			track.Close()
		}

		l.wg.Wait()

		if roomConn != nil {
			roomConn.Disconnect()
		}
		l.log.Info("room connection closed")
	})
	return nil
}

type liveTrackStream struct {
	participant string
	frames      chan audio.Frame
}

func (s *liveTrackStream) Participant() string {
	return s.participant
}

func (s *liveTrackStream) Frames() <-chan audio.Frame {
	return s.frames
}
