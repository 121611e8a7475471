package transcript

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T) *Handler {
	store := setupTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(store, logger)
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()
	g := e.Group("/report")

	h.RegisterRoutes(g)

	routePaths := make(map[string]bool)
	for _, r := range e.Routes() {
		routePaths[r.Path] = true
	}
	for _, path := range []string{"/report/:id/transcript", "/report/:id/summary"} {
		if !routePaths[path] {
			t.Errorf("expected route %s to be registered", path)
		}
	}
}

func TestHandler_Export_NotFound(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/report/sess_missing/transcript", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("sess_missing")

	err := h.Export(c)
	if err == nil {
		t.Fatal("expected error for missing transcript")
	}
	httpErr := err.(*echo.HTTPError)
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, httpErr.Code)
	}
}

func TestHandler_Export_JSON(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()
	h.store.Append(ctx, "sess_1", SpeakerUser, "hello", SourceFastPath)
	h.store.Append(ctx, "sess_1", SpeakerAgent, "hi", SourceFastPath)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/report/sess_1/transcript", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("sess_1")

	if err := h.Export(c); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var lines []Transcript
	if err := json.Unmarshal(rec.Body.Bytes(), &lines); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(lines) != 2 || lines[0].Text != "hello" {
		t.Errorf("unexpected response: %+v", lines)
	}
}

func TestHandler_Export_Markdown(t *testing.T) {
	h := newTestHandler(t)
	h.store.Append(context.Background(), "sess_1", SpeakerUser, "hello", SourceFastPath)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/report/sess_1/transcript?format=markdown", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("sess_1")

	if err := h.Export(c); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("expected markdown content type, got %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "**User**") {
		t.Errorf("expected markdown body, got: %q", rec.Body.String())
	}
}

func TestHandler_Export_Text(t *testing.T) {
	h := newTestHandler(t)
	h.store.Append(context.Background(), "sess_1", SpeakerAgent, "hi", SourceFastPath)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/report/sess_1/transcript?format=txt", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("sess_1")

	if err := h.Export(c); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected plain text content type, got %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "Agent: hi") {
		t.Errorf("expected text body, got: %q", rec.Body.String())
	}
}

func TestHandler_Summary(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()
	h.store.Append(ctx, "sess_1", SpeakerUser, "one", SourceFastPath)
	h.store.Append(ctx, "sess_1", SpeakerAgent, "two", SourceFastPath)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/report/sess_1/summary", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("sess_1")

	if err := h.Summary(c); err != nil {
		t.Fatalf("summary failed: %v", err)
	}

	var sum Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if sum.TotalLines != 2 || sum.UserLines != 1 || sum.AgentLines != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestHandler_Summary_NotFound(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/report/sess_missing/summary", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("sess_missing")

	err := h.Summary(c)
	if err == nil {
		t.Fatal("expected error for missing summary")
	}
	httpErr := err.(*echo.HTTPError)
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, httpErr.Code)
	}
}
