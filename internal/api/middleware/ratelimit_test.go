package middleware

import (
	"io"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	m.Run()
}

func TestNewRateLimiterClampsWindow(t *testing.T) {
	tests := []struct {
		window time.Duration
		want   time.Duration
	}{
		{0, time.Minute},
		{-time.Second, time.Minute},
		{500 * time.Millisecond, time.Minute},
		{time.Second, time.Second},
		{time.Minute, time.Minute},
	}
	for _, tt := range tests {
		rl := NewRateLimiter(nil, 10, tt.window)
		if rl.window != tt.want {
			t.Errorf("window %v clamped to %v, want %v", tt.window, rl.window, tt.want)
		}
	}
}
