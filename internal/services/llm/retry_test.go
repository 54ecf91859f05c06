package llm

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsTransientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", fmt.Errorf("googleapi: Error 429: RESOURCE_EXHAUSTED"), true},
		{"overloaded", fmt.Errorf("529 overloaded_error: Overloaded"), true},
		{"quota", fmt.Errorf("quota exceeded for model"), true},
		{"auth failure", fmt.Errorf("401 unauthorized"), false},
		{"network", fmt.Errorf("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransientError(tt.err))
		})
	}
}

func TestExtractRetryDelay(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want time.Duration
	}{
		{"nil", nil, 0},
		{"please retry", fmt.Errorf("429: Please retry in 7s"), 7 * time.Second},
		{"retryDelay field", fmt.Errorf(`RESOURCE_EXHAUSTED retryDelay: 2.5s`), 2500 * time.Millisecond},
		{"no delay present", fmt.Errorf("429 too many requests"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRetryDelay(tt.err))
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	config := NewDefaultRetryConfig()

	assert.Equal(t, 2*time.Second, config.CalculateBackoff(0, 0))
	assert.Equal(t, 4*time.Second, config.CalculateBackoff(1, 0))
	assert.Equal(t, 8*time.Second, config.CalculateBackoff(2, 0))

	// API-provided delay becomes the base, padded by a second.
	assert.Equal(t, 6*time.Second, config.CalculateBackoff(0, 5*time.Second))

	// Capped at MaxBackoff.
	assert.Equal(t, config.MaxBackoff, config.CalculateBackoff(10, 0))
}
