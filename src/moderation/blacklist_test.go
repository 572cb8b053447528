package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWord(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Spam", "spam"},
		{"  CASINO  ", "casino"},
		{"free\tmoney", "free money"},
		{"Free   Money", "free money"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeWord(tc.in), "input %q", tc.in)
	}
}

func TestIsSensitive(t *testing.T) {
	assert.True(t, IsSensitive("engagement_tracking"))
	assert.False(t, IsSensitive("slow_mode"))
	assert.False(t, IsSensitive(""))
}
