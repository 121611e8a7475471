package dto

import "time"

type CreateSessionRequest struct {
	Title  string `json:"title,omitempty" example:"Biology tutoring"`
	UserID string `json:"user_id,omitempty" example:"user_abc123"`
}

type SessionResponse struct {
	ID        string     `json:"id" example:"sess_abc123"`
	UserID    string     `json:"user_id" example:"user_abc123"`
	Title     string     `json:"title,omitempty" example:"Biology tutoring"`
	RoomName  string     `json:"room_name" example:"room_7f3a9c12"`
	IsActive  bool       `json:"is_active" example:"true"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

type RelayStatusResponse struct {
	SessionID string `json:"session_id" example:"sess_abc123"`
	RoomName  string `json:"room_name" example:"room_7f3a9c12"`
	Status    string `json:"status" example:"running"`
}
