package realtime

import "testing"

func TestDecodeServerEvent(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		wantErr bool
	}{
		{
			name:    "audio delta",
			payload: `{"type":"response.audio.delta","delta":"AAAA"}`,
			want:    eventAudioDelta,
		},
		{
			name:    "text delta",
			payload: `{"type":"response.text.delta","delta":"hi"}`,
			want:    eventTextDelta,
		},
		{
			name:    "unknown type",
			payload: `{"type":"response.audio_transcript.delta","delta":"x"}`,
			want:    "response.audio_transcript.delta",
		},
		{
			name:    "malformed json",
			payload: `{"type":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := decodeServerEvent([]byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if evt.Type != tt.want {
				t.Errorf("expected type %q, got %q", tt.want, evt.Type)
			}
		})
	}
}

func TestServerEvent_ItemTranscript(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		wantOK  bool
	}{
		{
			name:    "audio content with transcript",
			payload: `{"type":"response.output_item.done","item":{"content":[{"type":"audio","transcript":"hello there"}]}}`,
			want:    "hello there",
			wantOK:  true,
		},
		{
			name:    "text content",
			payload: `{"type":"response.output_item.done","item":{"content":[{"type":"text","text":"typed reply"}]}}`,
			want:    "typed reply",
			wantOK:  true,
		},
		{
			name:    "transcript preferred over later text",
			payload: `{"type":"response.output_item.done","item":{"content":[{"type":"audio","transcript":"spoken"},{"type":"text","text":"written"}]}}`,
			want:    "spoken",
			wantOK:  true,
		},
		{
			name:    "no item",
			payload: `{"type":"response.output_item.done"}`,
			wantOK:  false,
		},
		{
			name:    "empty content",
			payload: `{"type":"response.output_item.done","item":{"content":[]}}`,
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := decodeServerEvent([]byte(tt.payload))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, ok := evt.itemTranscript()
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
