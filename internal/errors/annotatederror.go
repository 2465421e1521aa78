// Package errors decorates errors with structured [slog.Attr] annotations and the source location where the
// error was created or wrapped. The annotations are emitted with [SlogError].
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
)

type annotatedError struct {
	msg    string
	err    error
	attrs  []slog.Attr
	source string
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// NewSentinel creates a plain error without annotations meant to be declared as a package level variable and
// compared with [Is].
func NewSentinel(msg string) error {
	return stderrors.New(msg) //nolint:err113 // this is the sentinel constructor.
}

// New creates an error annotated with attrs and the caller's source location.
func New(msg string, attrs ...slog.Attr) error {
	return &annotatedError{
		msg:    msg,
		err:    nil,
		attrs:  attrs,
		source: callerSource(),
	}
}

// Wrap wraps err with msg, attrs, and the caller's source location. Wrapping a nil error returns nil.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return &annotatedError{
		msg:    msg,
		err:    err,
		attrs:  attrs,
		source: callerSource(),
	}
}

// DecoratePanic converts a recovered panic value into an error pointing at the line that panicked.
func DecoratePanic(v any) error {
	if v == nil {
		return nil
	}
	decorated := &annotatedError{
		msg:    fmt.Sprintf("panic: %v", v),
		err:    nil,
		attrs:  nil,
		source: panicSource(),
	}
	if err, ok := v.(error); ok {
		decorated.msg = "panic"
		decorated.err = err
	}
	return decorated
}

// SlogError returns an "error" group attribute containing the error message, the annotations collected from the
// whole error chain, and the source location of the innermost annotated error.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	var (
		annotations []any
		source      string
	)
	walk(err, func(ae *annotatedError) {
		for _, attr := range ae.attrs {
			annotations = append(annotations, attr)
		}
		source = ae.source
	})
	attrs := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Group("annotations", annotations...))
	}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	return slog.Group("error", attrs...)
}

// walk visits the annotated errors in the chain from outermost to innermost.
func walk(err error, visit func(*annotatedError)) {
	for err != nil {
		if ae, ok := err.(*annotatedError); ok { //nolint:errorlint // walking the chain manually.
			visit(ae)
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok { //nolint:errorlint // same as above.
			for _, e := range joined.Unwrap() {
				walk(e, visit)
			}
			return
		}
		err = stderrors.Unwrap(err)
	}
}

func callerSource() string {
	var pcs [1]uintptr
	// Skip runtime.Callers, callerSource, and the exported constructor.
	if runtime.Callers(3, pcs[:]) == 0 { //nolint:mnd // see above.
		return ""
	}
	frame, _ := runtime.CallersFrames(pcs[:]).Next()
	return fmt.Sprintf("%s:%d", frame.File, frame.Line)
}

// panicSource finds the frame that called runtime.gopanic when invoked from a deferred recover.
func panicSource() string {
	var pcs [64]uintptr
	n := runtime.Callers(2, pcs[:]) //nolint:mnd // skip runtime.Callers and panicSource.
	frames := runtime.CallersFrames(pcs[:n])
	var (
		fallback   string
		sawGoPanic bool
	)
	for i := 0; ; i++ {
		frame, more := frames.Next()
		if sawGoPanic {
			return fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
		// Frame 0 is DecoratePanic, frame 1 the deferred function that recovered.
		if i == 1 {
			fallback = fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
		if frame.Function == "runtime.gopanic" {
			sawGoPanic = true
		}
		if !more {
			return fallback
		}
	}
}

// Is reports whether any error in err's tree matches target. See [errors.Is].
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target. See [errors.As].
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err. See [errors.Unwrap].
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Join returns an error that wraps the given errors. See [errors.Join].
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
