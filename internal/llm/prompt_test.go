package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"neptune-ai/backend/internal/model"
)

func TestFramePrompt(t *testing.T) {
	testCases := []struct {
		name string
		conv model.Conversation
		want string
	}{
		{
			name: "single user turn",
			conv: model.Conversation{{Role: model.RoleUser, Content: "Hi"}},
			want: "User: Hi\nAssistant: ",
		},
		{
			name: "turns keep their order",
			conv: model.Conversation{
				{Role: model.RoleUser, Content: "Hi"},
				{Role: model.RoleAssistant, Content: "Hello!"},
				{Role: model.RoleUser, Content: "How are you?"},
			},
			want: "User: Hi\nAssistant: Hello!\nUser: How are you?\nAssistant: ",
		},
		{
			name: "empty content still gets a line",
			conv: model.Conversation{{Role: model.RoleUser, Content: ""}},
			want: "User: \nAssistant: ",
		},
		{
			name: "empty conversation is just the cue",
			conv: nil,
			want: AssistantCue,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FramePrompt(tc.conv)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, FramePrompt(tc.conv))
		})
	}
}
