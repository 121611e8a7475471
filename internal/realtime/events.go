package realtime

import "encoding/json"

const (
	eventSessionUpdate      = "session.update"
	eventInputAudioAppend   = "input_audio_buffer.append"
	eventItemCreate         = "conversation.item.create"
	eventResponseCreate     = "response.create"

	eventAudioDelta             = "response.audio.delta"
	eventTextDelta              = "response.text.delta"
	eventInputTranscriptionDone = "conversation.item.input_audio_transcription.completed"
	eventOutputItemDone         = "response.output_item.done"
	eventServerError            = "error"
)

type sessionUpdateEvent struct {
	Type    string        `json:"type"`
	Session sessionConfig `json:"session"`
}

type sessionConfig struct {
	Modalities              []string            `json:"modalities"`
	Voice                   string              `json:"voice,omitempty"`
	Instructions            string              `json:"instructions,omitempty"`
	InputAudioFormat        string              `json:"input_audio_format"`
	OutputAudioFormat       string              `json:"output_audio_format"`
	InputAudioTranscription *transcriptionCfg   `json:"input_audio_transcription,omitempty"`
	TurnDetection           *turnDetectionCfg   `json:"turn_detection,omitempty"`
}

type transcriptionCfg struct {
	Model string `json:"model"`
}

type turnDetectionCfg struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold,omitempty"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms,omitempty"`
	SilenceDurationMs int     `json:"silence_duration_ms,omitempty"`
}

type audioAppendEvent struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

type itemCreateEvent struct {
	Type string          `json:"type"`
	Item conversationItem `json:"item"`
}

type conversationItem struct {
	Type    string        `json:"type"`
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type responseCreateEvent struct {
	Type string `json:"type"`
}

type contentPart struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

type serverEvent struct {
	Type       string       `json:"type"`
	Delta      string       `json:"delta,omitempty"`
	Transcript string       `json:"transcript,omitempty"`
	Item       *serverItem  `json:"item,omitempty"`
	Error      *serverError `json:"error,omitempty"`
}

type serverItem struct {
	Content []contentPart `json:"content"`
}

type serverError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeServerEvent(data []byte) (serverEvent, error) {
	var evt serverEvent
	err := json.Unmarshal(data, &evt)
	return evt, err
}

// itemTranscript pulls the spoken transcript out of a completed output
// item. Audio items carry the text in the content part's transcript
// field rather than the text field.
func (e serverEvent) itemTranscript() (string, bool) {
	if e.Item == nil {
		return "", false
	}
	for _, part := range e.Item.Content {
		if part.Transcript != "" {
			return part.Transcript, true
		}
		if part.Type == "text" && part.Text != "" {
			return part.Text, true
		}
	}
	return "", false
}
