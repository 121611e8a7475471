package transcript

import "time"

const (
	SpeakerUser  = "user"
	SpeakerAgent = "agent"

	SourceFastPath = "fast_path"
	SourceSlowPath = "slow_path"
)

// Transcript is one finalized line of the conversation, attributed to a
// speaker and tagged with the path that produced it.
type Transcript struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	SessionID  string    `gorm:"not null;index" json:"session_id"`
	Speaker    string    `gorm:"not null;size:20" json:"speaker"`
	Text       string    `gorm:"not null;type:text" json:"text"`
	Source     string    `gorm:"size:20;default:fast_path" json:"source"`
	DurationMs *int      `json:"duration_ms,omitempty"`
	AudioURL   string    `json:"audio_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Conversation pairs a user message with the agent's reply, used for
// turn-level reporting on top of the raw transcript lines.
type Conversation struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	SessionID     string    `gorm:"not null;index" json:"session_id"`
	UserMessage   string    `gorm:"type:text" json:"user_message"`
	AgentResponse string    `gorm:"type:text" json:"agent_response"`
	CreatedAt     time.Time `json:"created_at"`
}

// Summary aggregates a session's transcript for the report endpoint.
type Summary struct {
	SessionID  string    `json:"session_id"`
	TotalLines int64     `json:"total_lines"`
	UserLines  int64     `json:"user_lines"`
	AgentLines int64     `json:"agent_lines"`
	FirstLine  time.Time `json:"first_line,omitempty"`
	LastLine   time.Time `json:"last_line,omitempty"`
}
