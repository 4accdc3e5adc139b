// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLibrary_InitOnce(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	lib := NewLibrary("test", func(ctx context.Context) error {
		calls.Add(1)
		<-release
		return nil
	})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- lib.Init(context.Background())
		}()
	}

	// let every caller join the in-flight attempt
	deadline := time.Now().Add(2 * time.Second)
	for {
		if st, _ := lib.State(); st == Initializing || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Init() error = %v, want nil", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("initialiser ran %d times, want 1", got)
	}

	if st, err := lib.State(); st != Ready || err != nil {
		t.Errorf("State() = %v, %v, want ready, nil", st, err)
	}

	// Ready short-circuits.
	if err := lib.Init(context.Background()); err != nil {
		t.Errorf("Init() after ready error = %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("initialiser ran %d times after ready, want 1", got)
	}
}

func TestLibrary_FailureThenRetry(t *testing.T) {
	t.Parallel()

	boom := errors.New("dlopen failed")
	var calls atomic.Int32
	lib := NewLibrary("native", func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			return boom
		}
		return nil
	})

	err := lib.Init(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Init() error = %v, want %v", err, boom)
	}

	st, stErr := lib.State()
	if st != Failed || !errors.Is(stErr, boom) {
		t.Errorf("State() = %v, %v, want failed", st, stErr)
	}

	if err := lib.Init(context.Background()); err != nil {
		t.Errorf("second Init() error = %v, want nil", err)
	}
	if st, _ := lib.State(); st != Ready {
		t.Errorf("State() = %v, want ready", st)
	}
}

func TestLibrary_ContextCancelled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	lib := NewLibrary("slow", func(ctx context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := lib.Init(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Init() error = %v, want context.Canceled", err)
	}
}

func TestInitState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s    InitState
		want string
	}{
		{Uninitialized, "uninitialized"},
		{Initializing, "initializing"},
		{Ready, "ready"},
		{Failed, "failed"},
		{InitState(9), "InitState(9)"},
	}

	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("InitState(%d).String() = %q, want %q", int32(tt.s), got, tt.want)
		}
	}
}
