package relay

import "encoding/json"

const (
	MessageTypeUserTextInput     = "user_text_input"
	MessageTypeAgentResponse     = "agent_response"
	MessageTypeUserTranscription = "user_transcription"
)

const (
	SpeakerUser  = "user"
	SpeakerAgent = "agent"

	SourceFastPath = "fast_path"
)

// StructuredMessage is the JSON envelope exchanged over the room's data
// channel. Inbound messages may also use the bare {"message": ...}
// shape sent by older clients.
type StructuredMessage struct {
	Type    string `json:"type,omitempty"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

// parseUserText extracts typed user input from a data payload. Returns
// false for payloads that are not text input.
func parseUserText(payload []byte) (string, bool) {
	var msg StructuredMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return "", false
	}

	if msg.Type == MessageTypeUserTextInput && msg.Text != "" {
		return msg.Text, true
	}
	if msg.Type == "" && msg.Message != "" {
		return msg.Message, true
	}
	return "", false
}

func encodeOutbound(msgType, text string) ([]byte, error) {
	return json.Marshal(StructuredMessage{Type: msgType, Text: text})
}
