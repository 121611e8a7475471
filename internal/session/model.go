package session

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

type Session struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	UserID    string     `gorm:"not null;index" json:"user_id"`
	Title     string     `json:"title,omitempty"`
	RoomName  string     `gorm:"not null;uniqueIndex" json:"room_name"`
	IsActive  bool       `gorm:"default:true;index" json:"is_active"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (s *Session) RedisKey() string {
	return "session:" + s.ID
}

// NewRoomName returns a room name like room_7f3a9c12. Room names are
// what LiveKit scopes tracks and join tokens to, so they must be unique.
func NewRoomName() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return "room_" + hex.EncodeToString(b)
}
