package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		BodyString("test").
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Errorf("HX-Trigger should be absent without triggers")
	}
}

func TestHTMXResponseBuilder_TriggerAlert(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerAlert("Unable to perform search. Please try again.", "second").
		Write(w)

	var triggers map[string]string
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	want := "Unable to perform search. Please try again.\nsecond"
	if triggers[AlertEvent] != want {
		t.Errorf("alert = %q, want %q", triggers[AlertEvent], want)
	}
}

func TestHTMXResponseBuilder_NoAlertWithoutMessages(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().TriggerAlert().Write(w)
	if w.Header().Get("HX-Trigger") != "" {
		t.Errorf("HX-Trigger = %q, want empty", w.Header().Get("HX-Trigger"))
	}
}

func TestHTMXResponseBuilder_HTMLAndRefresh(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Refresh().
		Header("X-Custom", "value").
		BodyHTML(`<p id="x" hx-swap-oob="true">1</p>`).
		Write(w)

	if w.Header().Get("HX-Refresh") != "true" {
		t.Error("HX-Refresh not set")
	}
	if w.Header().Get("X-Custom") != "value" {
		t.Error("Custom header not set")
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *HTMXResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bad request",
			builder:    BadRequestError("Invalid page"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `<div class="error">Invalid page</div>`,
		},
		{
			name:       "internal server error",
			builder:    InternalServerError("Something broke"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `<div class="error">Something broke</div>`,
		},
		{
			name:       "not found",
			builder:    NotFoundError("Unknown section"),
			wantStatus: http.StatusNotFound,
			wantBody:   `<div class="error">Unknown section</div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()

	BadRequestError("<script>alert('xss')</script>").Write(w)

	body := w.Body.String()
	if strings.Contains(body, "<script>") {
		t.Error("Error response did not escape HTML")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Error("Error response did not properly escape HTML entities")
	}
}
