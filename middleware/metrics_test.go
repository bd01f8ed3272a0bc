package middleware_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	mw "github.com/xraph/hookq/middleware"
)

func setupTestMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return reader, mp
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestMetrics_RecordsDuration(t *testing.T) {
	reader, mp := setupTestMeter()
	m := mw.MetricsWithMeter(mp.Meter("test"))

	_, _ = m(context.Background(), newTestInvocation(), func(_ context.Context) (any, error) {
		return nil, nil
	})

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "hookq.action.duration")
	if metric == nil {
		t.Fatal("hookq.action.duration metric not found")
	}

	hist, ok := metric.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("expected Histogram[float64] data type")
	}
	if len(hist.DataPoints) == 0 {
		t.Fatal("no data points recorded for duration")
	}
	if hist.DataPoints[0].Count != 1 {
		t.Errorf("expected count=1, got %d", hist.DataPoints[0].Count)
	}
}

func TestMetrics_RecordsExecutions(t *testing.T) {
	reader, mp := setupTestMeter()
	m := mw.MetricsWithMeter(mp.Meter("test"))

	_, _ = m(context.Background(), newTestInvocation(), func(_ context.Context) (any, error) {
		return nil, nil
	})

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "hookq.action.executions")
	if metric == nil {
		t.Fatal("hookq.action.executions metric not found")
	}

	sum, ok := metric.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("expected Sum[int64] data type")
	}
	if len(sum.DataPoints) == 0 {
		t.Fatal("no data points recorded")
	}
	if sum.DataPoints[0].Value != 1 {
		t.Errorf("expected value=1, got %d", sum.DataPoints[0].Value)
	}
}

func TestMetrics_StatusAttribute(t *testing.T) {
	cases := []struct {
		name       string
		handlerErr error
		wantStatus string
	}{
		{"success", nil, "ok"},
		{"failure", errors.New("boom"), "error"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			reader, mp := setupTestMeter()
			m := mw.MetricsWithMeter(mp.Meter("test"))

			_, _ = m(context.Background(), newTestInvocation(), func(_ context.Context) (any, error) {
				return nil, c.handlerErr
			})

			rm := collectMetrics(t, reader)
			metric := findMetric(rm, "hookq.action.executions")
			if metric == nil {
				t.Fatal("hookq.action.executions metric not found")
			}

			sum, ok := metric.Data.(metricdata.Sum[int64])
			if !ok || len(sum.DataPoints) == 0 {
				t.Fatal("no counter data points")
			}

			found := false
			for _, attr := range sum.DataPoints[0].Attributes.ToSlice() {
				if string(attr.Key) == "status" && attr.Value.AsString() == c.wantStatus {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected status=%s attribute on executions counter", c.wantStatus)
			}
		})
	}
}

func TestMetrics_HookAttributes(t *testing.T) {
	reader, mp := setupTestMeter()
	m := mw.MetricsWithMeter(mp.Meter("test"))

	_, _ = m(context.Background(), newTestInvocation(), func(_ context.Context) (any, error) {
		return nil, nil
	})

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "hookq.action.executions")
	if metric == nil {
		t.Fatal("hookq.action.executions metric not found")
	}
	sum := metric.Data.(metricdata.Sum[int64])

	attrMap := make(map[string]string)
	for _, a := range sum.DataPoints[0].Attributes.ToSlice() {
		if a.Value.Type() == attribute.STRING {
			attrMap[string(a.Key)] = a.Value.AsString()
		}
	}

	if attrMap["hook_name"] != "user.created" {
		t.Errorf("hook_name = %q, want user.created", attrMap["hook_name"])
	}
	if attrMap["action"] != "mailer.send" {
		t.Errorf("action = %q, want mailer.send", attrMap["action"])
	}
}

func TestMetrics_DefaultNoopSafe(t *testing.T) {
	// Calling Metrics() without a global provider should not panic.
	m := mw.Metrics()

	called := false
	_, err := m(context.Background(), newTestInvocation(), func(_ context.Context) (any, error) {
		called = true
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("handler was not called")
	}
}
