// SPDX-License-Identifier: EPL-2.0

package player

import (
	"sync"
	"testing"
)

func TestObservable_SubscribeGetsCurrentValue(t *testing.T) {
	t.Parallel()

	o := newObservable(3)
	ch, cancel := o.Subscribe()
	defer cancel()

	if got := <-ch; got != 3 {
		t.Errorf("first value = %d, want 3", got)
	}
}

func TestObservable_Conflates(t *testing.T) {
	t.Parallel()

	o := newObservable(0)
	ch, cancel := o.Subscribe()
	defer cancel()

	for i := 1; i <= 100; i++ {
		o.set(i)
	}

	if got := <-ch; got != 100 {
		t.Errorf("slow subscriber got %d, want latest 100", got)
	}
	select {
	case v := <-ch:
		t.Errorf("unexpected extra value %d", v)
	default:
	}
	if o.Value() != 100 {
		t.Errorf("Value() = %d, want 100", o.Value())
	}
}

func TestObservable_Cancel(t *testing.T) {
	t.Parallel()

	o := newObservable("a")
	ch, cancel := o.Subscribe()
	<-ch

	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("channel still open after cancel")
	}
	// publishing after cancel must not block or panic
	o.set("b")
}

func TestObservable_ConcurrentSetters(t *testing.T) {
	t.Parallel()

	o := newObservable(0)
	subs := make([]<-chan int, 4)
	for i := range subs {
		ch, cancel := o.Subscribe()
		defer cancel()
		subs[i] = ch
	}

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Go(func() {
			for i := range 500 {
				o.set(w*1000 + i)
			}
		})
	}
	wg.Wait()

	o.set(-1)
	for i, ch := range subs {
		if got := <-ch; got != -1 {
			t.Errorf("subscriber %d got %d, want -1", i, got)
		}
	}
}

func BenchmarkObservable_Set(b *testing.B) {
	o := newObservable(0.0)
	_, cancel := o.Subscribe()
	defer cancel()

	b.ReportAllocs()
	for b.Loop() {
		o.set(1.5)
	}
}
