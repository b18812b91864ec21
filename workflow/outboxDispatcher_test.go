package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestRetryBackoff_DoublesAndCaps(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 5 * time.Second},
		{2, 10 * time.Second},
		{3, 20 * time.Second},
		{5, 80 * time.Second},
		{8, 10 * time.Minute},
		{50, 10 * time.Minute},
	}
	for _, tc := range cases {
		if got := retryBackoff(5*time.Second, tc.attempt); got != tc.want {
			t.Fatalf("attempt %d: expected %s, got %s", tc.attempt, tc.want, got)
		}
	}
}

func TestNewOutboxDispatcher_Defaults(t *testing.T) {
	d := NewOutboxDispatcher(nil, logrus.New())
	if d.BatchSize != 50 {
		t.Fatalf("expected batch size 50, got %d", d.BatchSize)
	}
	if d.MaxAttempts != 20 {
		t.Fatalf("expected max attempts 20, got %d", d.MaxAttempts)
	}
	if d.LockTimeout != 30*time.Second {
		t.Fatalf("expected 30s lock timeout, got %s", d.LockTimeout)
	}
	if d.InitialBackoff != 5*time.Second {
		t.Fatalf("expected 5s initial backoff, got %s", d.InitialBackoff)
	}
	if d.DispatcherID == "" {
		t.Fatalf("expected a dispatcher id")
	}
}

func TestDispatchOnce_NilDB(t *testing.T) {
	d := NewOutboxDispatcher(nil, logrus.New())
	if got := d.DispatchOnce(context.Background()); got != 0 {
		t.Fatalf("expected no publishes without a database, got %d", got)
	}
}
