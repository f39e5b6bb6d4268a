package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecoveryMiddleware(t *testing.T) {
	t.Parallel()

	logs, logger := newLogCapture()
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("database password is hunter2")
	})

	w := httptest.NewRecorder()
	NewRecoveryMiddleware(newResponder(), logger)(next).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mcp", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"error_code":"internal_error"`) {
		t.Errorf("body = %s, want internal_error", body)
	}
	if strings.Contains(body, "hunter2") {
		t.Errorf("panic value leaked to client: %s", body)
	}

	var sawPanic bool
	for _, e := range logs.entries(t) {
		if e["msg"] == "panic recovered" {
			sawPanic = true
			if _, ok := e["stack"]; !ok {
				t.Error("stack missing from panic log")
			}
		}
	}
	if !sawPanic {
		t.Error("panic was not logged")
	}
}

func TestRecoveryMiddleware_NoPanic(t *testing.T) {
	t.Parallel()

	var reached bool
	w := httptest.NewRecorder()
	NewRecoveryMiddleware(newResponder(), nil)(okHandler(&reached)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if !reached || w.Code != http.StatusOK {
		t.Errorf("reached = %v, status = %d", reached, w.Code)
	}
}

func TestRecoveryMiddleware_AbortHandlerPropagates(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	})

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", rec)
		}
	}()
	NewRecoveryMiddleware(newResponder(), nil)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
