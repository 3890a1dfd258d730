package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHttpStatusRecorder_CapturesStatus(t *testing.T) {
	underlying := httptest.NewRecorder()
	rec := &HttpStatusRecorder{ResponseWriter: underlying, Status: 200}

	//handlers only see the interface, so the override must intercept there
	var w http.ResponseWriter = rec
	w.WriteHeader(http.StatusNotFound)

	if rec.Status != http.StatusNotFound {
		t.Errorf("got status %d, want 404", rec.Status)
	}
	if underlying.Code != http.StatusNotFound {
		t.Errorf("underlying writer got %d, want 404", underlying.Code)
	}
}

func TestHttpStatusRecorder_DefaultsTo200(t *testing.T) {
	underlying := httptest.NewRecorder()
	rec := &HttpStatusRecorder{ResponseWriter: underlying, Status: 200}

	if _, err := rec.Write([]byte("ok")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != http.StatusOK {
		t.Errorf("got status %d, want 200", rec.Status)
	}
}
