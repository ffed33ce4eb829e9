package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type httpObservation struct {
	method, route string
	status        int
	duration      time.Duration
}

type recordingRecorder struct {
	mu  sync.Mutex
	obs []httpObservation
}

func (r *recordingRecorder) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, httpObservation{method, route, status, d})
}

func TestLoggingMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("GET /api/v1/models/{id}", Route(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetStartTime(r.Context()).IsZero() {
			t.Error("start time missing from context")
		}
		w.WriteHeader(http.StatusNotFound)
	})))
	mux.Handle("POST /api/v1/ai/process", Route(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})))

	tests := []struct {
		name       string
		method     string
		path       string
		wantRoute  string
		wantStatus int
	}{
		{"pattern label", http.MethodGet, "/api/v1/models/gpt-4", "GET /api/v1/models/{id}", http.StatusNotFound},
		{"implicit 200", http.MethodPost, "/api/v1/ai/process", "POST /api/v1/ai/process", http.StatusOK},
		{"unmatched", http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingRecorder{}
			handler := LoggingMiddleware(rec)(RequestIDMiddleware(mux))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if len(rec.obs) != 1 {
				t.Fatalf("recorded %d observations, want 1", len(rec.obs))
			}
			got := rec.obs[0]
			if got.method != tt.method || got.route != tt.wantRoute || got.status != tt.wantStatus {
				t.Errorf("observation = %+v", got)
			}
		})
	}
}

func TestLoggingMiddleware_NilRecorder(t *testing.T) {
	handler := LoggingMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d", w.Code)
	}
}

func TestStatusWriter(t *testing.T) {
	sw := newStatusWriter(httptest.NewRecorder())
	if sw.Status() != http.StatusOK {
		t.Errorf("unwritten status = %d, want 200", sw.Status())
	}

	sw.WriteHeader(http.StatusCreated)
	sw.WriteHeader(http.StatusInternalServerError)
	_, _ = sw.Write([]byte("created"))

	if sw.Status() != http.StatusCreated {
		t.Errorf("status = %d, want the first one written", sw.Status())
	}
	if sw.bytes != len("created") {
		t.Errorf("bytes = %d", sw.bytes)
	}
}

func TestLevelFor(t *testing.T) {
	tests := map[int]slog.Level{
		http.StatusOK:                  slog.LevelInfo,
		http.StatusNotFound:            slog.LevelWarn,
		http.StatusTooManyRequests:     slog.LevelWarn,
		http.StatusServiceUnavailable:  slog.LevelError,
		http.StatusInternalServerError: slog.LevelError,
	}
	for status, want := range tests {
		if got := levelFor(status); got != want {
			t.Errorf("levelFor(%d) = %v, want %v", status, got, want)
		}
	}
}
