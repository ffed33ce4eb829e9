package tracing

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"datacrunch-hq/relay/pkg/config"
)

func newRecordingTracer(t *testing.T, sampler string) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tr, err := New(&config.TracingConfig{
		Enabled:     true,
		Sampler:     sampler,
		SampleRatio: 1,
		ServiceName: "relay-test",
	}, WithSpanProcessor(rec), WithVersion("test"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { tr.Shutdown(context.Background()) })
	return tr, rec
}

func attr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.TracingConfig
		wantErr bool
		enabled bool
	}{
		{name: "nil config", cfg: nil, wantErr: true},
		{name: "disabled", cfg: &config.TracingConfig{Enabled: false}},
		{name: "unknown sampler", cfg: &config.TracingConfig{Enabled: true, Sampler: "sometimes"}, wantErr: true},
		{name: "ratio out of range", cfg: &config.TracingConfig{Enabled: true, Sampler: "ratio", SampleRatio: 2}, wantErr: true},
		{name: "ratio", cfg: &config.TracingConfig{Enabled: true, Sampler: "ratio", SampleRatio: 0.5}, enabled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(tt.cfg, WithSpanProcessor(tracetest.NewSpanRecorder()))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			defer tr.Shutdown(context.Background())
			if tr.Enabled() != tt.enabled {
				t.Errorf("Enabled() = %v, want %v", tr.Enabled(), tt.enabled)
			}
		})
	}
}

func TestTracer_RecordsSpans(t *testing.T) {
	tr, rec := newRecordingTracer(t, SamplerAlways)

	ctx, span := tr.Start(context.Background(), "dispatch")
	SetProviderAttributes(span, "openai", "gpt-4")
	SetUsageAttributes(span, 10, 5, 15, "0.000600")
	if TraceID(ctx) == "" || SpanID(ctx) == "" {
		t.Error("recording span should expose trace and span ids")
	}
	span.End()

	ended := rec.Ended()
	if len(ended) != 1 {
		t.Fatalf("got %d spans, want 1", len(ended))
	}
	got := ended[0]
	if got.Name() != "dispatch" {
		t.Errorf("Name() = %q", got.Name())
	}
	if v, _ := attr(got, AttrProvider); v.AsString() != "openai" {
		t.Errorf("%s = %q", AttrProvider, v.AsString())
	}
	if v, _ := attr(got, AttrTokensTotal); v.AsInt64() != 15 {
		t.Errorf("%s = %d", AttrTokensTotal, v.AsInt64())
	}
	if v, _ := attr(got, AttrCost); v.AsString() != "0.000600" {
		t.Errorf("%s = %q", AttrCost, v.AsString())
	}
}

func TestSetFailure(t *testing.T) {
	tr, rec := newRecordingTracer(t, SamplerAlways)

	_, span := tr.Start(context.Background(), "dispatch")
	SetFailure(span, "quota_exceeded", "quota exhausted", false)
	span.End()

	got := rec.Ended()[0]
	if got.Status().Code != codes.Error || got.Status().Description != "quota exhausted" {
		t.Errorf("Status() = %+v", got.Status())
	}
	if v, _ := attr(got, AttrErrorType); v.AsString() != "quota_exceeded" {
		t.Errorf("%s = %q", AttrErrorType, v.AsString())
	}
	if v, ok := attr(got, AttrErrorRetryable); !ok || v.AsBool() {
		t.Errorf("%s = %v", AttrErrorRetryable, v.AsBool())
	}
}

func TestSetHTTPAttributes(t *testing.T) {
	tr, rec := newRecordingTracer(t, SamplerAlways)

	for _, status := range []int{http.StatusOK, http.StatusServiceUnavailable} {
		_, span := tr.Start(context.Background(), "GET /health")
		SetHTTPAttributes(span, http.MethodGet, "GET /health", status)
		span.End()
	}

	ended := rec.Ended()
	if ended[0].Status().Code == codes.Error {
		t.Error("200 should not mark the span as failed")
	}
	if ended[1].Status().Code != codes.Error {
		t.Error("503 should mark the span as failed")
	}
	if v, _ := attr(ended[0], AttrHTTPRoute); v.AsString() != "GET /health" {
		t.Errorf("%s = %q", AttrHTTPRoute, v.AsString())
	}
}

func TestNeverSampler(t *testing.T) {
	tr, rec := newRecordingTracer(t, SamplerNever)

	_, span := tr.Start(context.Background(), "dispatch")
	if span.IsRecording() {
		t.Error("never sampler should produce non-recording spans")
	}
	span.End()

	if n := len(rec.Ended()); n != 0 {
		t.Errorf("got %d exported spans, want 0", n)
	}
}

func TestDisabledAndNilTracer(t *testing.T) {
	disabled, err := New(&config.TracingConfig{})
	if err != nil {
		t.Fatal(err)
	}

	for name, tr := range map[string]*Tracer{"disabled": disabled, "nil": nil} {
		t.Run(name, func(t *testing.T) {
			ctx, span := tr.Start(context.Background(), "dispatch")
			defer span.End()
			if span.IsRecording() {
				t.Error("span should not record")
			}
			if TraceID(ctx) != "" {
				t.Error("no trace id expected without a parent")
			}
			if tr.Enabled() {
				t.Error("Enabled() should be false")
			}
			if err := tr.Shutdown(context.Background()); err != nil {
				t.Errorf("Shutdown() = %v", err)
			}
		})
	}
}

func TestPropagation(t *testing.T) {
	tr, rec := newRecordingTracer(t, SamplerNever)

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	in := http.Header{}
	in.Set("traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")

	ctx := Extract(context.Background(), in)
	ctx, span := tr.Start(ctx, "child")
	if !span.IsRecording() {
		t.Error("a sampled parent should override the never sampler")
	}
	if got := TraceID(ctx); got != traceID {
		t.Errorf("TraceID() = %q, want %q", got, traceID)
	}

	out := http.Header{}
	Inject(ctx, out)
	if tp := out.Get("traceparent"); !strings.Contains(tp, traceID) || strings.Contains(tp, "00f067aa0ba902b7") {
		t.Errorf("injected traceparent = %q", tp)
	}
	span.End()

	if len(rec.Ended()) != 1 {
		t.Errorf("got %d spans, want 1", len(rec.Ended()))
	}
}
