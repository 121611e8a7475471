package session

import (
	"context"
	"errors"
	"time"

	"github.com/eleven-am/voice-relay/internal/shared"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Session{})
}

func (s *Store) Create(ctx context.Context, sess *Session) error {
	if sess.ID == "" {
		sess.ID = shared.NewID("sess_")
	}
	if sess.RoomName == "" {
		sess.RoomName = NewRoomName()
	}
	sess.IsActive = true
	sess.StartedAt = time.Now()
	return s.db.WithContext(ctx).Create(sess).Error
}

func (s *Store) GetByID(ctx context.Context, id string) (*Session, error) {
	var sess Session
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &sess, err
}

func (s *Store) GetByRoomName(ctx context.Context, roomName string) (*Session, error) {
	var sess Session
	err := s.db.WithContext(ctx).Where("room_name = ?", roomName).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &sess, err
}

// End marks a session inactive. Ending an already ended session is a no-op
// that still reports success.
func (s *Store) End(ctx context.Context, id string) (*Session, error) {
	sess, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.IsActive {
		return sess, nil
	}

	now := time.Now()
	sess.IsActive = false
	sess.EndedAt = &now
	if err := s.db.WithContext(ctx).Save(sess).Error; err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	var sessions []Session
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (s *Store) ListActive(ctx context.Context) ([]Session, error) {
	var sessions []Session
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("started_at DESC").
		Find(&sessions).Error
	return sessions, err
}
