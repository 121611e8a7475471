package bootstrap

import (
	"github.com/eleven-am/voice-relay/internal/session"
	"github.com/eleven-am/voice-relay/internal/transcript"
	"github.com/eleven-am/voice-relay/internal/user"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideUserStore(db *gorm.DB) *user.Store {
	return user.NewStore(db)
}

func ProvideSessionStore(db *gorm.DB) *session.Store {
	return session.NewStore(db)
}

func ProvideSessionCache(redisClient *redis.Client) *session.Cache {
	return session.NewCache(redisClient)
}

func ProvideTranscriptStore(db *gorm.DB) *transcript.Store {
	return transcript.NewStore(db)
}

func RunMigrations(userStore *user.Store, sessionStore *session.Store, transcriptStore *transcript.Store) error {
	if err := userStore.Migrate(); err != nil {
		return err
	}
	if err := sessionStore.Migrate(); err != nil {
		return err
	}
	return transcriptStore.Migrate()
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvideUserStore,
		ProvideSessionStore,
		ProvideSessionCache,
		ProvideTranscriptStore,
	),
	fx.Invoke(RunMigrations),
)
