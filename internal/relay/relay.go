package relay

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eleven-am/voice-relay/internal/audio"
	"github.com/eleven-am/voice-relay/internal/realtime"
	"github.com/eleven-am/voice-relay/internal/room"
)

const (
	defaultDrainTimeout = 5 * time.Second
	sinkWriteTimeout    = 5 * time.Second
)

// SessionContext identifies the conversation a relay serves.
type SessionContext struct {
	SessionID string
	RoomName  string
}

// ModelClient is the streaming speech endpoint as the relay sees it.
type ModelClient interface {
	Connect(ctx context.Context) error
	SendAudio(b64 string) error
	SendText(text string) error
	Run(ctx context.Context) error
	Close() error
}

// ModelFactory builds a model client with the relay's event callbacks
// bound at construction.
type ModelFactory func(cb realtime.Callbacks) ModelClient

// Sink receives finalized transcript lines on the durable path. Sink
// failures are logged and never interrupt the live audio path.
type Sink interface {
	Append(ctx context.Context, sessionID, speaker, text, source string) error
}

type Config struct {
	Session      SessionContext
	Room         room.Adapter
	NewModel     ModelFactory
	Bridge       *audio.Bridge
	Sink         Sink
	Logger       *slog.Logger
	DrainTimeout time.Duration
}

// Relay wires one room to one model session. Participant audio and
// typed text flow to the model; model audio, responses and user
// transcriptions flow back to the room, with every finalized line also
// written to the sink.
type Relay struct {
	sess   SessionContext
	room   room.Adapter
	model  ModelClient
	bridge *audio.Bridge
	sink   Sink
	log    *slog.Logger

	state  atomic.Int32
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	failCh       chan error
	done         chan struct{}
	shutdownOnce sync.Once
	drainTimeout time.Duration

	errMu   sync.Mutex
	lastErr error
}

func New(cfg Config) *Relay {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	drain := cfg.DrainTimeout
	if drain <= 0 {
		drain = defaultDrainTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Relay{
		sess:         cfg.Session,
		room:         cfg.Room,
		bridge:       cfg.Bridge,
		sink:         cfg.Sink,
		log:          log.With("session_id", cfg.Session.SessionID, "room", cfg.Session.RoomName),
		ctx:          ctx,
		cancel:       cancel,
		failCh:       make(chan error, 1),
		done:         make(chan struct{}),
		drainTimeout: drain,
	}
	r.state.Store(int32(StateIdle))

	r.model = cfg.NewModel(realtime.Callbacks{
		OnAudioDelta:        r.handleAudioDelta,
		OnTextDelta:         r.handleTextDelta,
		OnAgentResponse:     r.handleAgentResponse,
		OnUserTranscription: r.handleUserTranscription,
		OnError:             r.handleModelError,
	})

	return r
}

func (r *Relay) Session() SessionContext {
	return r.sess
}

func (r *Relay) State() State {
	return State(r.state.Load())
}

// Done closes once the relay has fully shut down, whatever the cause.
func (r *Relay) Done() <-chan struct{} {
	return r.done
}

func (r *Relay) Err() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.lastErr
}

// Start connects both sides and begins relaying. The context bounds
// connection establishment only; the relay itself runs until Shutdown
// or a fatal stream error.
func (r *Relay) Start(ctx context.Context) error {
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StateStarting)) {
		return ErrAlreadyStarted
	}

	err := r.room.Connect(ctx, room.Callbacks{
		OnTrackAudio: r.handleTrackAudio,
		OnData:       r.handleRoomData,
		OnDisconnect: r.handleRoomDisconnect,
	})
	if err != nil {
		return r.failStart(&ConnectError{Target: "room", Err: err})
	}

	if err := r.model.Connect(ctx); err != nil {
		r.room.Close()
		return r.failStart(&ConnectError{Target: "model", Err: err})
	}

	go func() {
		select {
		case err := <-r.failCh:
			if err != nil {
				r.recordErr(err)
				r.Shutdown("stream error: " + err.Error())
			} else {
				r.Shutdown("stream ended")
			}
		case <-r.ctx.Done():
		}
	}()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		err := r.model.Run(r.ctx)
		// A clean remote close still ends the session.
		r.fail(err)
	}()

	r.state.Store(int32(StateRunning))
	r.log.Info("relay running")
	return nil
}

func (r *Relay) failStart(err error) error {
	r.recordErr(err)
	r.shutdownOnce.Do(func() {
		r.state.Store(int32(StateFailed))
		r.cancel()
		close(r.done)
	})
	return err
}

func (r *Relay) recordErr(err error) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	if r.lastErr == nil {
		r.lastErr = err
	}
}

// fail hands a fatal stream error to the supervisor. Only the first
// failure matters; later ones are dropped.
func (r *Relay) fail(err error) {
	select {
	case r.failCh <- err:
	default:
	}
}

func (r *Relay) handleTrackAudio(ts room.TrackStream) {
	if r.ctx.Err() != nil {
		return
	}
	r.log.Info("forwarding participant audio", "participant", ts.Participant())

	r.wg.Add(1)
	go r.forwardTrack(ts)
}

func (r *Relay) forwardTrack(ts room.TrackStream) {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case f, ok := <-ts.Frames():
			if !ok {
				r.log.Info("participant track ended", "participant", ts.Participant())
				return
			}
			payload, err := r.bridge.FrameToModelPayload(f)
			if err != nil {
				r.log.Warn("dropping unusable audio frame",
					"participant", ts.Participant(), "error", err)
				continue
			}
			if err := r.model.SendAudio(payload); err != nil {
				r.fail(&SendError{Target: "model", Err: err})
				return
			}
		}
	}
}

func (r *Relay) handleRoomData(payload []byte) {
	text, ok := parseUserText(payload)
	if !ok {
		r.log.Debug("ignoring non-text data payload", "bytes", len(payload))
		return
	}

	if err := r.model.SendText(text); err != nil {
		r.fail(&SendError{Target: "model", Err: err})
	}
}

func (r *Relay) handleRoomDisconnect(reason string) {
	r.log.Info("room disconnected", "reason", reason)
	r.fail(nil)
}

func (r *Relay) handleAudioDelta(pcm []byte) {
	f, err := r.bridge.ModelPayloadToFrame(pcm)
	if err != nil {
		r.log.Warn("dropping malformed audio delta", "error", err, "bytes", len(pcm))
		return
	}
	r.room.CaptureFrame(f)
}

func (r *Relay) handleTextDelta(text string) {
	r.log.Debug("model text delta", "chars", len(text))
}

func (r *Relay) handleAgentResponse(text string) {
	r.deliver(SpeakerAgent, MessageTypeAgentResponse, text)
}

func (r *Relay) handleUserTranscription(text string) {
	r.deliver(SpeakerUser, MessageTypeUserTranscription, text)
}

func (r *Relay) handleModelError(err error) {
	r.log.Error("model session error", "error", err)
}

// deliver publishes a finalized transcript line to the room and writes
// it to the sink. The two paths are independent: a sink failure never
// blocks the room message, and vice versa.
func (r *Relay) deliver(speaker, msgType, text string) {
	if payload, err := encodeOutbound(msgType, text); err == nil {
		if err := r.room.SendData(payload, true); err != nil {
			r.fail(&SendError{Target: "room", Err: err})
		}
	}

	if r.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sinkWriteTimeout)
	defer cancel()
	if err := r.sink.Append(ctx, r.sess.SessionID, speaker, text, SourceFastPath); err != nil {
		r.log.Error("transcript write failed", "speaker", speaker, "error", err)
	}
}

// Shutdown stops the relay exactly once: producers are cancelled first,
// then the model stream closes, running tasks get a bounded drain, and
// the room connection closes last.
func (r *Relay) Shutdown(reason string) {
	r.shutdownOnce.Do(func() {
		r.state.Store(int32(StateShuttingDown))
		r.log.Info("relay shutting down", "reason", reason)

		r.cancel()

		if err := r.model.Close(); err != nil {
			r.log.Warn("model close failed", "error", err)
		}

		drained := make(chan struct{})
		go func() {
			r.wg.Wait()
			close(drained)
		}()
		select {
		case <-drained:
		case <-time.After(r.drainTimeout):
			r.log.Warn("relay tasks did not drain in time", "timeout", r.drainTimeout)
		}

		if err := r.room.Close(); err != nil {
			r.log.Warn("room close failed", "error", err)
		}

		if r.Err() != nil {
			r.state.Store(int32(StateFailed))
		} else {
			r.state.Store(int32(StateStopped))
		}
		close(r.done)
		r.log.Info("relay stopped", "state", r.State().String())
	})
}
