package transcript

import (
	"context"
	"errors"

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
	return s.db.AutoMigrate(&Transcript{}, &Conversation{})
}

// Append persists one transcript line. It satisfies the relay's sink
// contract, so failures here must never propagate into the audio path.
func (s *Store) Append(ctx context.Context, sessionID, speaker, text, source string) error {
	t := &Transcript{
		ID:        shared.NewID("tr_"),
		SessionID: sessionID,
		Speaker:   speaker,
		Text:      text,
		Source:    source,
	}
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]Transcript, error) {
	var lines []Transcript
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, err
}

func (s *Store) AddConversation(ctx context.Context, c *Conversation) error {
	if c.ID == "" {
		c.ID = shared.NewID("conv_")
	}
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *Store) ListConversations(ctx context.Context, sessionID string) ([]Conversation, error) {
	var convs []Conversation
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&convs).Error
	return convs, err
}

func (s *Store) Summarize(ctx context.Context, sessionID string) (*Summary, error) {
	lines, err := s.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, shared.ErrNotFound
	}

	sum := &Summary{
		SessionID:  sessionID,
		TotalLines: int64(len(lines)),
		FirstLine:  lines[0].CreatedAt,
		LastLine:   lines[len(lines)-1].CreatedAt,
	}
	for _, l := range lines {
		switch l.Speaker {
		case SpeakerUser:
			sum.UserLines++
		case SpeakerAgent:
			sum.AgentLines++
		}
	}
	return sum, nil
}

func (s *Store) DeleteBySession(ctx context.Context, sessionID string) error {
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&Transcript{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
