// SPDX-License-Identifier: EPL-2.0

package player

import "sync"

// Observable holds a value and fans out changes to subscribers. Delivery
// conflates: a subscriber that falls behind only receives the latest value.
type Observable[T any] struct {
	mtx   sync.Mutex
	value T
	subs  map[int]chan T
	next  int
}

func newObservable[T any](v T) *Observable[T] {
	return &Observable[T]{value: v, subs: make(map[int]chan T)}
}

// Value returns the current value.
func (o *Observable[T]) Value() T {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	return o.value
}

// Subscribe returns a channel that immediately holds the current value
// and then receives every later one. cancel closes the channel.
func (o *Observable[T]) Subscribe() (<-chan T, func()) {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	ch := make(chan T, 1)
	ch <- o.value

	id := o.next
	o.next++
	o.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			o.mtx.Lock()
			defer o.mtx.Unlock()

			delete(o.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (o *Observable[T]) set(v T) {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	o.value = v
	for _, ch := range o.subs {
		select {
		case ch <- v:
		default:
			// drop the stale value; only set sends, so the retry cannot block
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}
