// Package errors provides structured error handling for the page builder core.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindUnknownControl indicates a changed setting without a control definition.
	// It is recovered locally by forcing a render and never returned to callers.
	KindUnknownControl
	// KindMissingStylesheetTarget indicates style generation ran before the
	// element's stylesheet container existed.
	KindMissingStylesheetTarget
	// KindRemoteRender indicates the remote render back end failed.
	KindRemoteRender
	// KindTemplate indicates a local template render failure.
	KindTemplate
	// KindSchema indicates an invalid control schema.
	KindSchema
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnknownControl:
		return "unknown_control"
	case KindMissingStylesheetTarget:
		return "missing_stylesheet_target"
	case KindRemoteRender:
		return "remote_render"
	case KindTemplate:
		return "template"
	case KindSchema:
		return "schema"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// ErrMissingStylesheetTarget is wrapped by every MissingStylesheetTarget error.
var ErrMissingStylesheetTarget = stderrors.New("stylesheet container does not exist")

// ErrElementDestroyed is returned when an operation targets a destroyed element.
var ErrElementDestroyed = stderrors.New("element destroyed")

// ViewError represents a structured error raised while updating an element view.
type ViewError struct {
	// Op is the operation that failed (e.g., "view.Dispatcher.Apply").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// ElementID is the element the error belongs to, if any.
	ElementID string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ViewError) Error() string {
	if e.ElementID != "" {
		return fmt.Sprintf("%s [%s] element=%s: %v", e.Op, e.Kind, e.ElementID, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *ViewError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "editor.Flush").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// RemoteRenderError describes a failed remote render request.
type RemoteRenderError struct {
	// ElementID is the element whose markup was requested.
	ElementID string
	// Request is the sequence number of the failed request.
	Request uint64
	// Err is the back end error.
	Err error
}

func (e *RemoteRenderError) Error() string {
	return fmt.Sprintf("remote render of %s (request %d) failed: %v", e.ElementID, e.Request, e.Err)
}

func (e *RemoteRenderError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a ViewError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ve *ViewError
	if stderrors.As(err, &ve) {
		return ve.Kind == kind
	}
	return false
}

// ErrorHandler receives errors reported by the page builder core.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *ViewError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
