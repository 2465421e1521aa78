package errors_test

import (
	"bytes"
	"fmt"
	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/fitplan/internal/errors"
	"github.com/myrjola/fitplan/internal/testhelpers"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestAnnotatedError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "simple error",
			err:  errors.NewSentinel("simple error"),
			want: "simple error",
		},
		{
			name: "annotated error",
			err:  errors.Wrap(errors.NewSentinel("root cause"), "context", slog.String("key", "value")),
			want: "context: root cause",
		},
		{
			name: "nested annotated error",
			err: errors.Wrap(
				errors.Wrap(errors.NewSentinel("root cause"), "inner context"),
				"outer context",
			),
			want: "outer context: inner context: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	rootErr := errors.NewSentinel("root error")
	wrappedErr := fmt.Errorf("context: %w", rootErr)

	if unwrapped := errors.Unwrap(wrappedErr); !errors.Is(unwrapped, rootErr) {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, rootErr)
	}

	if unwrapped := errors.Unwrap(rootErr); unwrapped != nil {
		t.Errorf("Unwrap() = %v, want nil", unwrapped)
	}
}

func TestIs(t *testing.T) {
	rootErr := errors.NewSentinel("root error")
	wrappedErr := errors.Wrap(rootErr, "context")

	if !errors.Is(wrappedErr, rootErr) {
		t.Errorf("Is() = false, want true for wrapped error")
	}

	if errors.Is(wrappedErr, errors.NewSentinel("different error")) {
		t.Errorf("Is() = true, want false for different error")
	}
}

func TestAs(t *testing.T) {
	rootErr := &customError{"custom error"}
	wrappedErr := errors.Wrap(rootErr, "context")

	var target *customError
	if !errors.As(wrappedErr, &target) {
		t.Errorf("As() = false, want true")
	}

	if target != rootErr {
		t.Errorf("As() target = %v, want %v", target, rootErr)
	}

	var wrongTarget *wrongError
	if errors.As(wrappedErr, &wrongTarget) {
		t.Errorf("As() = true, want false for wrong error type")
	}
}

func TestSlogError(t *testing.T) {
	err := errors.Wrap(errors.NewSentinel("root cause"), "context",
		slog.String("key", "value"), slog.Duration("duration", time.Second))
	var buf bytes.Buffer
	l := testhelpers.NewLogger(&buf)
	l.Info("test", errors.SlogError(err))
	logLine := buf.String()
	expectedContent := []string{
		"error.annotations.key=value",
		"error.annotations.duration=1s",
		"annotatederror_test.go:96",
	}
	for _, content := range expectedContent {
		if !strings.Contains(logLine, content) {
			t.Errorf("expected log line %s to contain %s", logLine, content)
		}
	}

	// Assert we didn't mess up the stack trace skips.
	if strings.Contains(logLine, "annotatederror.go") {
		t.Fatal("expected annotatederror.go NOT to be in log line")
	}

	// Try to break things by passing a nil error and other wonkiness.
	errors.SlogError(errors.Join(nil, nil, errors.NewSentinel("sentinel"), errors.New("test")))
	errors.SlogError(nil)
	errors.SlogError(fmt.Errorf("test: %w", errors.NewSentinel("sentinel")))
	errors.SlogError(errors.Join(errors.NewSentinel("sentinel1"), errors.NewSentinel("sentinel2")))
	errors.SlogError(errors.Wrap(nil, "wrap error"))
	errors.SlogError(errors.Wrap(errors.Join(nil, nil), "wrap error"))
	_ = errors.Unwrap(errors.Wrap(errors.NewSentinel("sentinel"), "wrap error"))
}

type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}

type wrongError struct{}

func (e *wrongError) Error() string {
	return "wrong error"
}

func TestDecoratePanic(t *testing.T) {
	defer func() {
		excp := recover()
		err := errors.DecoratePanic(excp)
		if err == nil {
			t.Fatal("expected error")
		}
		if got, want := err.Error(), "panic: test"; got != want {
			t.Errorf("err.Error(): got %q, want %q", got, want)
		}
		attr := errors.SlogError(err)
		if got, contains := attr.String(), "annotatederror_test.go:157"; !strings.Contains(got, contains) {
			t.Errorf("attr.String(): expected %q to contain %q", got, contains)
		}
	}()
	panic("test")
}

// annotations returns the annotations group of an SlogError attribute as strings.
func annotations(attr slog.Attr) map[string]string {
	got := make(map[string]string)
	for _, a := range attr.Value.Group() {
		if a.Key != "annotations" {
			continue
		}
		for _, annotation := range a.Value.Group() {
			got[annotation.Key] = annotation.Value.String()
		}
	}
	return got
}

func TestSlogError_annotationChain(t *testing.T) {
	errMalformed := errors.NewSentinel("malformed catalog document")
	errInvalidPolicy := errors.NewSentinel("invalid policy")

	tests := []struct {
		name        string
		err         error
		wantMessage string
		want        map[string]string
		wantIs      error
	}{
		{
			name: "annotations from every wrap",
			err: errors.Wrap(
				errors.Wrap(
					errors.Wrap(fmt.Errorf("%w: unexpected end of stream", errMalformed), "decode catalog document"),
					"parse catalog file", slog.String("path", "catalog.yaml")),
				"activate catalog", slog.String("version", "core-1"), slog.Int("exercises", 12)),
			wantMessage: "activate catalog: parse catalog file: decode catalog document: " +
				"malformed catalog document: unexpected end of stream",
			want:   map[string]string{"version": "core-1", "exercises": "12", "path": "catalog.yaml"},
			wantIs: errMalformed,
		},
		{
			name: "annotations inside joined errors",
			err: errors.Wrap(errors.Join(
				errors.New("sets decrease", slog.String("level", "advanced")),
				fmt.Errorf("%w: tolerance lower factor 1.5", errInvalidPolicy),
			), "load policy file", slog.String("path", "policy.yaml")),
			wantMessage: "load policy file: sets decrease\ninvalid policy: tolerance lower factor 1.5",
			want:        map[string]string{"path": "policy.yaml", "level": "advanced"},
			wantIs:      errInvalidPolicy,
		},
		{
			name:        "plain errors carry no annotations",
			err:         fmt.Errorf("generate plan: %w", errInvalidPolicy),
			wantMessage: "generate plan: invalid policy",
			want:        map[string]string{},
			wantIs:      errInvalidPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := errors.SlogError(tt.err)
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
			if diff := cmp.Diff(tt.want, annotations(attr)); diff != "" {
				t.Errorf("annotations mismatch (-want +got):\n%s", diff)
			}
			if !errors.Is(tt.err, tt.wantIs) {
				t.Errorf("Is(%v) = false, want true", tt.wantIs)
			}
		})
	}
}
