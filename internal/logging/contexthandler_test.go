package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/myrjola/fitplan/internal/logging"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil))).With(slog.String("app", "fitplan"))

	parent := logging.WithAttrs(context.Background(), slog.String("trace_id", "abc"))
	first := logging.WithAttrs(parent, slog.String("profile", "first"))
	second := logging.WithAttrs(parent, slog.String("profile", "second"))

	tests := []struct {
		name    string
		ctx     context.Context
		want    []string
		notWant []string
	}{
		{name: "no attrs", ctx: context.Background(), want: []string{"app=fitplan"}, notWant: []string{"trace_id"}},
		{name: "parent", ctx: parent, want: []string{"trace_id=abc"}, notWant: []string{"profile="}},
		{name: "first child", ctx: first, want: []string{"trace_id=abc", "profile=first"}, notWant: []string{"second"}},
		{name: "second child", ctx: second, want: []string{"trace_id=abc", "profile=second"}, notWant: []string{"first"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			logger.InfoContext(tt.ctx, "hello")
			line := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(line, w) {
					t.Errorf("expected %q to contain %q", line, w)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(line, nw) {
					t.Errorf("expected %q not to contain %q", line, nw)
				}
			}
		})
	}
}
