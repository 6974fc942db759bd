package anthropic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithTimeout(t *testing.T) {
	t.Parallel()

	var co clientOptions
	WithTimeout(45 * time.Second)(&co)
	assert.Equal(t, 45*time.Second, co.timeout)
}

func TestNewClientAcceptsOptions(t *testing.T) {
	t.Parallel()

	c := NewClient("key", WithTimeout(10*time.Second))
	assert.NotNil(t, c)
}

func TestEstimateCost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		usage TokenUsage
		model string
		want  float64
	}{
		{
			name:  "sonnet pricing",
			usage: TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000},
			model: "claude-sonnet-4-5-20250929",
			want:  18.00,
		},
		{
			name:  "haiku pricing",
			usage: TokenUsage{InputTokens: 2_000_000, OutputTokens: 500_000},
			model: "claude-haiku-4-5-20251001",
			want:  3.60,
		},
		{
			name:  "unknown model returns zero",
			usage: TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000},
			model: "some-other-model",
			want:  0,
		},
		{
			name:  "zero usage",
			usage: TokenUsage{},
			model: "claude-sonnet-4-5-20250929",
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, tt.usage.EstimateCost(tt.model), 1e-9)
		})
	}
}
