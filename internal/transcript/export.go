package transcript

import (
	"fmt"
	"strings"
)

const (
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

func speakerLabel(speaker string) string {
	switch speaker {
	case SpeakerUser:
		return "User"
	case SpeakerAgent:
		return "Agent"
	default:
		return speaker
	}
}

// RenderMarkdown formats a session transcript as a markdown document.
func RenderMarkdown(sessionID string, lines []Transcript) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Session Transcript\n\n")
	fmt.Fprintf(&b, "Session: `%s`\n\n", sessionID)

	if len(lines) == 0 {
		b.WriteString("_No transcript recorded._\n")
		return b.String()
	}

	for _, l := range lines {
		fmt.Fprintf(&b, "**%s** (%s): %s\n\n",
			speakerLabel(l.Speaker),
			l.CreatedAt.Format("15:04:05"),
			l.Text)
	}
	return b.String()
}

// RenderText formats a session transcript as plain text.
func RenderText(sessionID string, lines []Transcript) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session transcript: %s\n\n", sessionID)

	if len(lines) == 0 {
		b.WriteString("No transcript recorded.\n")
		return b.String()
	}

	for _, l := range lines {
		fmt.Fprintf(&b, "[%s] %s: %s\n",
			l.CreatedAt.Format("15:04:05"),
			speakerLabel(l.Speaker),
			l.Text)
	}
	return b.String()
}
