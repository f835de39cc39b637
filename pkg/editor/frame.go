package editor

import (
	"sync"

	"github.com/go-drift/pagebuilder/pkg/errors"
)

// frameOwner queues work for the UI thread. Dispatched callbacks may come
// from any goroutine; deferred callbacks run after the dispatched ones of
// the same frame.
type frameOwner struct {
	mu       sync.Mutex
	queue    []func()
	deferred []func()

	// onNeedsFrame is called when work is queued, signalling that Flush
	// should run.
	onNeedsFrame func()
}

func (f *frameOwner) dispatch(fn func()) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	f.queue = append(f.queue, fn)
	f.mu.Unlock()
	f.requestFrame()
}

func (f *frameOwner) schedule(fn func()) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	f.deferred = append(f.deferred, fn)
	f.mu.Unlock()
	f.requestFrame()
}

func (f *frameOwner) requestFrame() {
	if f.onNeedsFrame != nil {
		f.onNeedsFrame()
	}
}

func (f *frameOwner) drainQueue() []func() {
	f.mu.Lock()
	callbacks := f.queue
	f.queue = nil
	f.mu.Unlock()
	return callbacks
}

func (f *frameOwner) drainDeferred() []func() {
	f.mu.Lock()
	callbacks := f.deferred
	f.deferred = nil
	f.mu.Unlock()
	return callbacks
}

// needsWork reports whether any callback is pending.
func (f *frameOwner) needsWork() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue) > 0 || len(f.deferred) > 0
}

// runAll runs callbacks, recovering and reporting panics one by one.
func runAll(op string, callbacks []func()) {
	for _, cb := range callbacks {
		func() {
			defer errors.Recover(op)
			cb()
		}()
	}
}
