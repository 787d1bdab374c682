package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "markdown fence", in: "```json\n{\"score\": 7}\n```", want: `{"score": 7}`},
		{name: "prose around object", in: `Sure! {"a": {"b": 1}} Hope this helps.`, want: `{"a": {"b": 1}}`},
		{name: "array", in: `result: ["x", "y"]`, want: `["x", "y"]`},
		{name: "no json", in: "no json here", want: "no json here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestPromptBuilder(t *testing.T) {
	pb := NewPromptBuilder()

	eval := pb.BuildAnswerEvaluationPrompt("Tell me about a conflict.", "I talked to them.")
	require.Contains(t, eval, "Tell me about a conflict.")
	require.Contains(t, eval, "I talked to them.")
	require.Contains(t, eval, `"improved_answer_snippet"`)

	followUp := pb.BuildFollowUpPrompt("Q?", "A.")
	require.Contains(t, followUp, "ONE brief follow-up question")
}
