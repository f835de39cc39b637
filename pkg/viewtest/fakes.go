package viewtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-drift/pagebuilder/pkg/errors"
	"github.com/go-drift/pagebuilder/pkg/view"
)

// Scheduler is a manual view.Scheduler. Posted callbacks and deferred
// callbacks are held until the test runs them.
type Scheduler struct {
	mu       sync.Mutex
	posted   []func()
	deferred []func()
	notify   chan struct{}
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{notify: make(chan struct{}, 1)}
}

// Dispatch queues fn. Safe for concurrent use.
func (s *Scheduler) Dispatch(fn func()) {
	s.mu.Lock()
	s.posted = append(s.posted, fn)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Defer queues fn for the end of the frame.
func (s *Scheduler) Defer(fn func()) {
	s.mu.Lock()
	s.deferred = append(s.deferred, fn)
	s.mu.Unlock()
}

// RunPosted runs the callbacks posted so far and returns how many ran.
func (s *Scheduler) RunPosted() int {
	s.mu.Lock()
	queue := s.posted
	s.posted = nil
	s.mu.Unlock()
	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// EndFrame runs the deferred callbacks and returns how many ran.
func (s *Scheduler) EndFrame() int {
	s.mu.Lock()
	queue := s.deferred
	s.deferred = nil
	s.mu.Unlock()
	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// Pending returns the number of posted and deferred callbacks.
func (s *Scheduler) Pending() (posted, deferred int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posted), len(s.deferred)
}

// WaitPosted blocks until at least one callback is posted or timeout
// elapses. It reports whether a callback is available.
func (s *Scheduler) WaitPosted(timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		if posted, _ := s.Pending(); posted > 0 {
			return true
		}
		select {
		case <-s.notify:
		case <-deadline.C:
			posted, _ := s.Pending()
			return posted > 0
		}
	}
}

// Remote is a view.RemoteBackend that records requests and answers them
// only when told to.
type Remote struct {
	mu       sync.Mutex
	requests []view.RemoteRequest
	results  []chan view.RemoteResult
}

// Render records req and returns a channel answered by Respond or Fail.
func (r *Remote) Render(ctx context.Context, req view.RemoteRequest) <-chan view.RemoteResult {
	ch := make(chan view.RemoteResult, 1)
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.results = append(r.results, ch)
	r.mu.Unlock()
	return ch
}

// Requests returns a copy of the recorded requests.
func (r *Remote) Requests() []view.RemoteRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]view.RemoteRequest(nil), r.requests...)
}

// Respond answers request i with markup.
func (r *Remote) Respond(i int, markup string) {
	r.answer(i, view.RemoteResult{Markup: markup})
}

// Fail answers request i with err.
func (r *Remote) Fail(i int, err error) {
	r.answer(i, view.RemoteResult{Err: err})
}

func (r *Remote) answer(i int, res view.RemoteResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.results) {
		panic(fmt.Sprintf("viewtest: no remote request %d", i))
	}
	r.results[i] <- res
}

// Templates is a view.TemplateRenderer returning fixed markup.
type Templates struct {
	Markup string
	Err    error
	// Fn, when set, overrides Markup and Err.
	Fn    func(*view.Element) (string, error)
	Calls int
}

// Render implements view.TemplateRenderer.
func (t *Templates) Render(ctx context.Context, e *view.Element) (string, error) {
	t.Calls++
	if t.Fn != nil {
		return t.Fn(e)
	}
	return t.Markup, t.Err
}

// Fonts records enqueued font families.
type Fonts struct {
	mu       sync.Mutex
	families []string
}

// Enqueue implements fonts.Loader.
func (f *Fonts) Enqueue(family string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.families = append(f.families, family)
}

// Families returns the families in enqueue order, duplicates included.
func (f *Fonts) Families() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.families...)
}

// ErrorRecorder is an errors.ErrorHandler keeping every report.
type ErrorRecorder struct {
	mu     sync.Mutex
	errs   []*errors.ViewError
	panics []*errors.PanicError
}

// HandleError implements errors.ErrorHandler.
func (r *ErrorRecorder) HandleError(err *errors.ViewError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

// HandlePanic implements errors.ErrorHandler.
func (r *ErrorRecorder) HandlePanic(err *errors.PanicError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panics = append(r.panics, err)
}

// Errors returns the reported errors.
func (r *ErrorRecorder) Errors() []*errors.ViewError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.ViewError(nil), r.errs...)
}

// Panics returns the reported panics.
func (r *ErrorRecorder) Panics() []*errors.PanicError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.PanicError(nil), r.panics...)
}

// Kinds returns the kinds of the reported errors in order.
func (r *ErrorRecorder) Kinds() []errors.ErrorKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]errors.ErrorKind, len(r.errs))
	for i, e := range r.errs {
		kinds[i] = e.Kind
	}
	return kinds
}
