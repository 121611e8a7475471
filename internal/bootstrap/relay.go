package bootstrap

import (
	"context"
	"log/slog"

	"github.com/eleven-am/voice-relay/internal/realtime"
	"github.com/eleven-am/voice-relay/internal/relay"
	"github.com/eleven-am/voice-relay/internal/room"
	"github.com/eleven-am/voice-relay/internal/transcript"
	"go.uber.org/fx"
)

func ProvideRelayManager(cfg *Config, sink *transcript.Store, logger *slog.Logger) *relay.Manager {
	opts := realtime.DefaultSessionOptions()
	opts.Voice = cfg.AgentVoice
	opts.Instructions = cfg.AgentInstructions

	return relay.NewManager(relay.ManagerConfig{
		LiveKit: room.LiveKitConfig{
			URL:       cfg.LiveKitURL,
			APIKey:    cfg.LiveKitAPIKey,
			APISecret: cfg.LiveKitAPISecret,
		},
		Realtime: realtime.Config{
			URL:    cfg.OpenAIURL,
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		},
		SessionOpts: opts,
		Sink:        sink,
		Logger:      logger,
	})
}

func StopRelaysOnShutdown(lc fx.Lifecycle, mgr *relay.Manager) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return mgr.Close()
		},
	})
}

var RelayModule = fx.Options(
	fx.Provide(ProvideRelayManager),
	fx.Invoke(StopRelaysOnShutdown),
)
