package bootstrap

import (
	"log/slog"
	"os"

	"github.com/eleven-am/voice-relay/internal/auth"
	"github.com/eleven-am/voice-relay/internal/relay"
	"github.com/eleven-am/voice-relay/internal/session"
	"github.com/eleven-am/voice-relay/internal/transcript"
	"github.com/eleven-am/voice-relay/internal/user"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func ProvideJWTValidator(cfg *Config) *auth.JWTValidator {
	return auth.NewJWTValidator(cfg.HMACKey, cfg.JWTIssuer)
}

func ProvideJWTMiddleware(validator *auth.JWTValidator) *auth.Middleware {
	return auth.NewMiddleware(validator)
}

func ProvideTokenService(cfg *Config) *auth.TokenService {
	return auth.NewTokenService(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, cfg.LiveKitURL)
}

func ProvideSessionHandler(
	store *session.Store,
	cache *session.Cache,
	userStore *user.Store,
	relays *relay.Manager,
	logger *slog.Logger,
) *session.Handler {
	return session.NewHandler(store, cache, userStore, relays, logger.With("handler", "session"))
}

func ProvideTranscriptHandler(store *transcript.Store, logger *slog.Logger) *transcript.Handler {
	return transcript.NewHandler(store, logger.With("handler", "transcript"))
}

func ProvideAuthHandler(
	tokens *auth.TokenService,
	sessions *session.Store,
	users *user.Store,
	logger *slog.Logger,
) *auth.Handler {
	return auth.NewHandler(tokens, sessions, users, logger.With("handler", "auth"))
}

type HandlerParams struct {
	fx.In

	SessionHandler    *session.Handler
	TranscriptHandler *transcript.Handler
	AuthHandler       *auth.Handler
	JWTMiddleware     *auth.Middleware
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/v1")

	sessionGroup := api.Group("/session")
	sessionGroup.Use(params.JWTMiddleware.OptionalAuthenticate)
	params.SessionHandler.RegisterRoutes(sessionGroup)

	params.TranscriptHandler.RegisterRoutes(api.Group("/report"))
	params.AuthHandler.RegisterRoutes(api.Group("/livekit"))
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideJWTValidator,
		ProvideJWTMiddleware,
		ProvideTokenService,
		ProvideSessionHandler,
		ProvideTranscriptHandler,
		ProvideAuthHandler,
	),
	fx.Invoke(RegisterRoutes),
)
