package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPageIndex(t *testing.T) {
	h := NewPageHandler(fixedLanguage("en"), "/api/v1", 2*time.Second)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Index(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{`lang="en"`, `id="current-tick"`, `id="epoch-progress"`, "2000"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestNewPageHandler_DefaultRefresh(t *testing.T) {
	h := NewPageHandler(fixedLanguage("zh-tw"), "/api/v1", 0)
	if h.refresh != 5*time.Second {
		t.Errorf("refresh = %v, want 5s", h.refresh)
	}
}
