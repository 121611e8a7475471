package dto

type TokenRequest struct {
	SessionID string `json:"session_id" example:"sess_abc123"`
	Identity  string `json:"identity,omitempty" example:"student_1"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	URL       string `json:"url" example:"wss://livekit.example.com"`
	RoomName  string `json:"room_name" example:"room_7f3a9c12"`
	Identity  string `json:"identity" example:"student_1"`
	SessionID string `json:"session_id" example:"sess_abc123"`
}
