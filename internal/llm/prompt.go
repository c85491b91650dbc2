package llm

import (
	"strings"

	"neptune-ai/backend/internal/model"
)

// AssistantCue is appended to every prompt so the model continues as the assistant.
const AssistantCue = "Assistant: "

// FramePrompt renders a conversation into the single linear prompt fed to a
// codec. Each turn becomes "<Label>: <content>\n" in order, followed by
// AssistantCue. An empty conversation yields just the cue.
func FramePrompt(conv model.Conversation) string {
	var b strings.Builder
	for _, turn := range conv {
		b.WriteString(roleLabel(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteByte('\n')
	}
	b.WriteString(AssistantCue)
	return b.String()
}

func roleLabel(r model.Role) string {
	if r == model.RoleUser {
		return "User"
	}
	return "Assistant"
}
