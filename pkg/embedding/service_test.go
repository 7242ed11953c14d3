package embedding

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestServiceLazyDoubleCheckedInit(t *testing.T) {
	var builds int32
	svc := NewService(func() Encoder {
		atomic.AddInt32(&builds, 1)
		return NewLocalEncoder(16)
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Embed(context.Background(), "concurrent init")
		}()
	}
	wg.Wait()

	if builds != 1 {
		t.Errorf("expected encoder to be built exactly once, built %d times", builds)
	}
}

func TestServiceShutdownIsIdempotent(t *testing.T) {
	svc := NewService(func() Encoder { return NewLocalEncoder(16) })
	svc.Embed(context.Background(), "warm up")

	if err := svc.Shutdown(); err != nil {
		t.Fatalf("unexpected error on shutdown: %v", err)
	}
	if err := svc.Shutdown(); err != nil {
		t.Fatalf("unexpected error on second shutdown: %v", err)
	}
}

func TestServiceRebuildsEncoderAfterShutdown(t *testing.T) {
	var builds int32
	svc := NewService(func() Encoder {
		atomic.AddInt32(&builds, 1)
		return NewLocalEncoder(16)
	})

	svc.Embed(context.Background(), "first")
	svc.Shutdown()
	svc.Embed(context.Background(), "second")

	if builds != 2 {
		t.Errorf("expected 2 builds across shutdown boundary, got %d", builds)
	}
}
