// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// InitState is the lifecycle of a process-wide Library.
type InitState int32

const (
	Uninitialized InitState = iota
	Initializing
	Ready
	Failed
)

func (s InitState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("InitState(%d)", int32(s))
	}
}

// Library guards a one-time, process-wide initialisation.
type Library struct {
	name string
	init func(ctx context.Context) error

	group singleflight.Group

	mtx   sync.Mutex
	state InitState
	err   error
}

func NewLibrary(name string, init func(ctx context.Context) error) *Library {
	return &Library{name: name, init: init}
}

func (l *Library) Name() string { return l.name }

// State returns the current lifecycle state and the last failure.
func (l *Library) State() (InitState, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return l.state, l.err
}

// Init runs the initialiser unless the library is already Ready. Callers
// arriving while an attempt is in flight wait for that attempt. ctx only
// bounds the caller's wait; the attempt itself keeps running.
func (l *Library) Init(ctx context.Context) error {
	l.mtx.Lock()
	if l.state == Ready {
		l.mtx.Unlock()
		return nil
	}
	l.mtx.Unlock()

	ch := l.group.DoChan(l.name, func() (any, error) {
		l.mtx.Lock()
		if l.state == Ready {
			l.mtx.Unlock()
			return nil, nil
		}
		l.state = Initializing
		l.err = nil
		l.mtx.Unlock()

		err := l.init(context.WithoutCancel(ctx))

		l.mtx.Lock()
		defer l.mtx.Unlock()
		if err != nil {
			l.state = Failed
			l.err = fmt.Errorf("%s: %w", l.name, err)
			return nil, l.err
		}
		l.state = Ready
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", l.name, ctx.Err())
	}
}
