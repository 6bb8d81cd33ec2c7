package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusRecorderCapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}

	sr.WriteHeader(http.StatusTeapot)
	if sr.status != http.StatusTeapot {
		t.Errorf("status: got %d, want %d", sr.status, http.StatusTeapot)
	}

	// A second WriteHeader must not overwrite the recorded status.
	sr.WriteHeader(http.StatusOK)
	if sr.status != http.StatusTeapot {
		t.Errorf("status after second write: got %d", sr.status)
	}
}

func TestStatusRecorderDefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec}

	sr.Write([]byte("ok"))
	if sr.status != http.StatusOK {
		t.Errorf("status: got %d, want %d", sr.status, http.StatusOK)
	}
	if sr.bytes != 2 {
		t.Errorf("bytes: got %d, want 2", sr.bytes)
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("done"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/admin/categories", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusCreated)
	}
	if rec.Body.String() != "done" {
		t.Errorf("body: got %q", rec.Body.String())
	}
}
