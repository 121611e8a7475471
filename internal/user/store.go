package user

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
	return s.db.AutoMigrate(&User{})
}

func (s *Store) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = shared.NewID("user_")
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &u, err
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &u, err
}

// FindOrCreateGuest returns the shared guest account, creating it on first use.
// Anonymous session creation and quick tokens run through this account.
func (s *Store) FindOrCreateGuest(ctx context.Context) (*User, error) {
	u, err := s.GetByUsername(ctx, GuestUsername)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	u = &User{
		ID:       shared.NewID("user_"),
		Username: GuestUsername,
		Role:     RoleStudent,
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}
