package errors

import (
	"os"

	"pkt.systems/pslog"
)

// LogHandler is an ErrorHandler that writes errors to a structured logger.
type LogHandler struct {
	// Logger receives the entries. When nil, a logger configured from the
	// environment and writing to stderr is created on first use.
	Logger pslog.Logger
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

func (h *LogHandler) logger() pslog.Logger {
	if h.Logger == nil {
		h.Logger = pslog.LoggerFromEnv(pslog.WithEnvWriter(os.Stderr))
	}
	return h.Logger
}

// HandleError logs a ViewError.
func (h *LogHandler) HandleError(err *ViewError) {
	if err == nil {
		return
	}
	log := h.logger().With("op", err.Op, "kind", err.Kind.String())
	if err.ElementID != "" {
		log = log.With("element", err.ElementID)
	}
	if h.Verbose && err.StackTrace != "" {
		log = log.With("stack", err.StackTrace)
	}
	log.Error("view error", "err", err.Err)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	log := h.logger()
	if err.Op != "" {
		log = log.With("op", err.Op)
	}
	if h.Verbose && err.StackTrace != "" {
		log = log.With("stack", err.StackTrace)
	}
	log.Error("view panic", "value", err.Value)
}
