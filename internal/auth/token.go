package auth

import (
	"time"

	lkauth "github.com/livekit/protocol/auth"
)

const tokenValidity = 24 * time.Hour

// TokenService mints LiveKit join tokens scoped to a single room.
type TokenService struct {
	apiKey    string
	apiSecret string
	url       string
}

func NewTokenService(apiKey, apiSecret, url string) *TokenService {
	return &TokenService{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		url:       url,
	}
}

func (s *TokenService) URL() string {
	return s.url
}

func (s *TokenService) GenerateToken(identity, room string) (string, error) {
	at := lkauth.NewAccessToken(s.apiKey, s.apiSecret)

	canPublish := true
	canSubscribe := true
	grant := &lkauth.VideoGrant{
		RoomJoin:     true,
		Room:         room,
		CanPublish:   &canPublish,
		CanSubscribe: &canSubscribe,
	}

	at.SetIdentity(identity).
		SetValidFor(tokenValidity).
		SetVideoGrant(grant)

	return at.ToJWT()
}
