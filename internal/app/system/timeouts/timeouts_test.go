package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/krcapps/orderdash/internal/app/system/timeouts"
	"go.uber.org/zap"
)

func TestDefaults(t *testing.T) {
	timeouts.Reset()

	if got := timeouts.Ping(); got != timeouts.DefaultPing {
		t.Errorf("Ping() = %v, want %v", got, timeouts.DefaultPing)
	}
	if got := timeouts.Short(); got != timeouts.DefaultShort {
		t.Errorf("Short() = %v, want %v", got, timeouts.DefaultShort)
	}
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("Medium() = %v, want %v", got, timeouts.DefaultMedium)
	}
	if got := timeouts.Long(); got != timeouts.DefaultLong {
		t.Errorf("Long() = %v, want %v", got, timeouts.DefaultLong)
	}
}

func TestConfigureOverridesAndReset(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{Short: 1 * time.Second, Long: 2 * time.Minute})

	if got := timeouts.Short(); got != 1*time.Second {
		t.Errorf("Short() after Configure = %v, want 1s", got)
	}
	if got := timeouts.Long(); got != 2*time.Minute {
		t.Errorf("Long() after Configure = %v, want 2m", got)
	}
	// Zero values keep the current setting.
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("Medium() after partial Configure = %v, want %v", got, timeouts.DefaultMedium)
	}

	timeouts.Reset()
	if got := timeouts.Short(); got != timeouts.DefaultShort {
		t.Errorf("Short() after Reset = %v, want %v", got, timeouts.DefaultShort)
	}
}

func TestWithTimeoutExpires(t *testing.T) {
	ctx, cancel := timeouts.WithTimeout(context.Background(), 10*time.Millisecond, zap.NewNop(), "test op")
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context did not expire")
	}
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
}

func TestWithTimeoutCancelBeforeDeadline(t *testing.T) {
	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Minute, zap.NewNop(), "test op")
	cancel()

	if ctx.Err() != context.Canceled {
		t.Errorf("ctx.Err() = %v, want Canceled", ctx.Err())
	}
}
