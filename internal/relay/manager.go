package relay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/eleven-am/voice-relay/internal/audio"
	"github.com/eleven-am/voice-relay/internal/realtime"
	"github.com/eleven-am/voice-relay/internal/room"
)

// RoomFactory builds the room adapter for a session. Overridable for
// tests; the default dials LiveKit.
type RoomFactory func(sess SessionContext, identity string) room.Adapter

type ManagerConfig struct {
	LiveKit      room.LiveKitConfig
	Realtime     realtime.Config
	SessionOpts  realtime.SessionOptions
	Sink         Sink
	Logger       *slog.Logger
	DrainTimeout time.Duration

	NewRoom  RoomFactory
	NewModel ModelFactory
}

// Manager owns the set of running relays, at most one per session.
type Manager struct {
	cfg ManagerConfig
	log *slog.Logger

	mu     sync.Mutex
	relays map[string]*Relay
}

func NewManager(cfg ManagerConfig) *Manager {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{
		cfg:    cfg,
		log:    log.With("component", "relay_manager"),
		relays: make(map[string]*Relay),
	}
	if m.cfg.NewRoom == nil {
		m.cfg.NewRoom = m.dialLiveKit
	}
	if m.cfg.NewModel == nil {
		m.cfg.NewModel = func(cb realtime.Callbacks) ModelClient {
			return realtime.NewClient(m.cfg.Realtime, m.cfg.SessionOpts, cb, log)
		}
	}
	return m
}

func (m *Manager) dialLiveKit(sess SessionContext, identity string) room.Adapter {
	cfg := m.cfg.LiveKit
	cfg.RoomName = sess.RoomName
	cfg.Identity = identity
	cfg.PlayoutRate = realtime.SampleRate
	return room.NewLiveKit(cfg, m.log)
}

// StartRelay creates and starts a relay for the session. A second call
// for the same session fails with ErrRelayExists until the first relay
// stops.
func (m *Manager) StartRelay(ctx context.Context, sess SessionContext) (*Relay, error) {
	identity := "agent_" + sess.SessionID

	r := New(Config{
		Session:      sess,
		Room:         m.cfg.NewRoom(sess, identity),
		NewModel:     m.cfg.NewModel,
		Bridge:       audio.NewBridge(realtime.SampleRate),
		Sink:         m.cfg.Sink,
		Logger:       m.log,
		DrainTimeout: m.cfg.DrainTimeout,
	})

	m.mu.Lock()
	if _, exists := m.relays[sess.SessionID]; exists {
		m.mu.Unlock()
		return nil, ErrRelayExists
	}
	m.relays[sess.SessionID] = r
	m.mu.Unlock()

	if err := r.Start(ctx); err != nil {
		m.remove(sess.SessionID, r)
		return nil, err
	}

	go func() {
		<-r.Done()
		m.remove(sess.SessionID, r)
	}()

	m.log.Info("relay started", "session_id", sess.SessionID, "room", sess.RoomName)
	return r, nil
}

// StopRelay shuts the session's relay down and waits for it to finish.
func (m *Manager) StopRelay(sessionID, reason string) error {
	m.mu.Lock()
	r, ok := m.relays[sessionID]
	m.mu.Unlock()
	if !ok {
		return ErrRelayNotFound
	}

	r.Shutdown(reason)
	<-r.Done()
	return nil
}

func (m *Manager) Get(sessionID string) (*Relay, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.relays[sessionID]
	return r, ok
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.relays)
}

func (m *Manager) ListSessions() []SessionContext {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SessionContext, 0, len(m.relays))
	for _, r := range m.relays {
		out = append(out, r.Session())
	}
	return out
}

func (m *Manager) remove(sessionID string, r *Relay) {
	m.mu.Lock()
	if current, ok := m.relays[sessionID]; ok && current == r {
		delete(m.relays, sessionID)
	}
	m.mu.Unlock()
}

// Close shuts down every running relay. Used during server shutdown.
func (m *Manager) Close() error {
	m.mu.Lock()
	relays := make([]*Relay, 0, len(m.relays))
	for _, r := range m.relays {
		relays = append(relays, r)
	}
	m.mu.Unlock()

	for _, r := range relays {
		r.Shutdown("server shutting down")
		<-r.Done()
	}
	return nil
}
