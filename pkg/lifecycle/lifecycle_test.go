package lifecycle_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/invoicer/pkg/lifecycle"
)

func TestReadyAfterStartupHooks(t *testing.T) {
	lc := lifecycle.New()
	if lc.Ready() {
		t.Fatal("should not be ready before WaitForStartup")
	}

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() {
			count.Add(1)
		})
	}

	lc.WaitForStartup()

	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks: got %d, want 3", got)
	}
	if !lc.Ready() {
		t.Error("should be ready after WaitForStartup")
	}
}

func TestShutdown(t *testing.T) {
	tests := []struct {
		name    string
		hook    time.Duration
		timeout time.Duration
		wantErr bool
	}{
		{"hooks finish", 0, 5 * time.Second, false},
		{"hooks overrun", 500 * time.Millisecond, 50 * time.Millisecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := lifecycle.New()

			var cleaned atomic.Bool
			lc.OnShutdown(func() {
				<-lc.Context().Done()
				time.Sleep(tt.hook)
				cleaned.Store(true)
			})
			lc.WaitForStartup()

			err := lc.Shutdown(tt.timeout)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Shutdown() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !cleaned.Load() {
				t.Error("shutdown hook did not execute")
			}

			select {
			case <-lc.Context().Done():
			default:
				t.Error("context should be cancelled after shutdown")
			}
		})
	}
}

func TestCheck(t *testing.T) {
	lc := lifecycle.New()
	down := errors.New("connection refused")

	lc.Register("database", func(context.Context) error { return nil })
	lc.Register("docstore", func(context.Context) error { return down })
	lc.Register("lease", func(ctx context.Context) error { return ctx.Err() })

	failures := lc.Check(context.Background())
	if len(failures) != 1 {
		t.Fatalf("failures = %v, want only docstore", failures)
	}
	if !errors.Is(failures["docstore"], down) {
		t.Errorf("docstore failure = %v", failures["docstore"])
	}

	lc.Register("docstore", func(context.Context) error { return nil })
	if failures := lc.Check(context.Background()); len(failures) != 0 {
		t.Errorf("failures after replace = %v", failures)
	}
}
