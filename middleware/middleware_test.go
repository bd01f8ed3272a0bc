package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	mw "github.com/xraph/hookq/middleware"

	"github.com/xraph/hookq/hook"
)

func newTestInvocation() *mw.Invocation {
	h := hook.New("user.created", map[string]any{"to": "alice"})
	return &mw.Invocation{Hook: h, Action: "mailer.send", Index: 0}
}

func TestChain_Order(t *testing.T) {
	var order []string

	tag := func(name string) mw.Middleware {
		return func(ctx context.Context, _ *mw.Invocation, next mw.Handler) (any, error) {
			order = append(order, name+":before")
			out, err := next(ctx)
			order = append(order, name+":after")
			return out, err
		}
	}

	chained := mw.Chain(tag("outer"), tag("inner"))
	_, err := chained(context.Background(), newTestInvocation(), func(_ context.Context) (any, error) {
		order = append(order, "handler")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("chain: %v", err)
	}

	want := []string{"outer:before", "inner:before", "handler", "inner:after", "outer:after"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestChain_Empty(t *testing.T) {
	chained := mw.Chain()
	out, err := chained(context.Background(), newTestInvocation(), func(_ context.Context) (any, error) {
		return "direct", nil
	})
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if out != "direct" {
		t.Errorf("out = %v, want direct", out)
	}
}

func TestChain_ErrorPropagates(t *testing.T) {
	passthrough := func(ctx context.Context, _ *mw.Invocation, next mw.Handler) (any, error) {
		return next(ctx)
	}

	wantErr := errors.New("boom")
	chained := mw.Chain(passthrough)
	_, err := chained(context.Background(), newTestInvocation(), func(_ context.Context) (any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestLogging_LogsStartAndCompletion(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	m := mw.Logging(logger)
	_, err := m(context.Background(), newTestInvocation(), func(_ context.Context) (any, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatalf("logging middleware: %v", err)
	}

	logs := buf.String()
	if !strings.Contains(logs, "action started") {
		t.Error("missing start log")
	}
	if !strings.Contains(logs, "action completed") {
		t.Error("missing completion log")
	}
	if !strings.Contains(logs, "mailer.send") {
		t.Error("missing action identifier in logs")
	}
}

func TestLogging_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	m := mw.Logging(logger)
	_, _ = m(context.Background(), newTestInvocation(), func(_ context.Context) (any, error) {
		return nil, errors.New("smtp unavailable")
	})

	logs := buf.String()
	if !strings.Contains(logs, "action failed") {
		t.Error("missing failure log")
	}
	if !strings.Contains(logs, "smtp unavailable") {
		t.Error("missing error message in logs")
	}
}
