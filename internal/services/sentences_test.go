package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "terminators kept",
			in:   "We build things. Do you? Join us!",
			want: []string{"We build things.", "Do you?", "Join us!"},
		},
		{
			name: "dots inside words",
			in:   "Experience with Node.js and v1.2 APIs. Remote.",
			want: []string{"Experience with Node.js and v1.2 APIs.", "Remote."},
		},
		{
			name: "trailing fragment",
			in:   "First.  second without end",
			want: []string{"First.", "second without end"},
		},
		{
			name: "empty",
			in:   "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SplitSentences(tt.in))
		})
	}
}
