package session

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/eleven-am/voice-relay/internal/dto"
	"github.com/eleven-am/voice-relay/internal/realtime"
	"github.com/eleven-am/voice-relay/internal/relay"
	"github.com/eleven-am/voice-relay/internal/user"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeRelays struct {
	mu       sync.Mutex
	started  []relay.SessionContext
	stopped  []string
	startErr error
	stopErr  error
}

func idleRelay(sess relay.SessionContext) *relay.Relay {
	return relay.New(relay.Config{
		Session:  sess,
		NewModel: func(realtime.Callbacks) relay.ModelClient { return nil },
	})
}

func (f *fakeRelays) StartRelay(ctx context.Context, sess relay.SessionContext) (*relay.Relay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.started = append(f.started, sess)
	return idleRelay(sess), nil
}

func (f *fakeRelays) StopRelay(sessionID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, sessionID)
	return f.stopErr
}

func (f *fakeRelays) Get(sessionID string) (*relay.Relay, bool) {
	return nil, false
}

func newTestSessionHandler(t *testing.T) (*Handler, *fakeRelays, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	userStore := user.NewStore(db)
	if err := userStore.Migrate(); err != nil {
		t.Fatalf("user migration failed: %v", err)
	}
	sessionStore := NewStore(db)
	if err := sessionStore.Migrate(); err != nil {
		t.Fatalf("session migration failed: %v", err)
	}

	relays := &fakeRelays{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(sessionStore, NewCache(redisClient), userStore, relays, logger)
	return h, relays, mr
}

func doRequest(t *testing.T, h *Handler, method, target, body string, paramID string, fn func(echo.Context) error) *httptest.ResponseRecorder {
	e := echo.New()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if paramID != "" {
		c.SetParamNames("id")
		c.SetParamValues(paramID)
	}

	if err := fn(c); err != nil {
		if httpErr, ok := err.(*echo.HTTPError); ok {
			rec.Code = httpErr.Code
			return rec
		}
		t.Fatalf("handler failed: %v", err)
	}
	return rec
}

func TestHandler_Create_GuestFallback(t *testing.T) {
	h, _, _ := newTestSessionHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/session", `{"title":"tutoring"}`, "", h.Create)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	var resp dto.SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.HasPrefix(resp.ID, "sess_") {
		t.Errorf("expected session id, got %s", resp.ID)
	}
	if !strings.HasPrefix(resp.RoomName, "room_") {
		t.Errorf("expected room name, got %s", resp.RoomName)
	}
	if resp.Title != "tutoring" || !resp.IsActive {
		t.Errorf("unexpected response: %+v", resp)
	}

	guest, err := h.userStore.GetByUsername(context.Background(), user.GuestUsername)
	if err != nil {
		t.Fatalf("expected guest user to exist: %v", err)
	}
	if resp.UserID != guest.ID {
		t.Errorf("expected session owned by guest, got %s", resp.UserID)
	}
}

func TestHandler_Create_UnknownUser(t *testing.T) {
	h, _, _ := newTestSessionHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/session", `{"user_id":"user_missing"}`, "", h.Create)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestHandler_Get_ServedFromCache(t *testing.T) {
	h, _, _ := newTestSessionHandler(t)
	ctx := context.Background()

	sess := &Session{UserID: "user_1", Title: "cached"}
	h.store.Create(ctx, sess)
	h.cache.Put(ctx, sess)

	rec := doRequest(t, h, http.MethodGet, "/session/"+sess.ID, "", sess.ID, h.Get)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp dto.SessionResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Title != "cached" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHandler_Get_BackfillsCache(t *testing.T) {
	h, _, _ := newTestSessionHandler(t)
	ctx := context.Background()

	sess := &Session{UserID: "user_1"}
	h.store.Create(ctx, sess)

	rec := doRequest(t, h, http.MethodGet, "/session/"+sess.ID, "", sess.ID, h.Get)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	if _, err := h.cache.Get(ctx, sess.ID); err != nil {
		t.Errorf("expected session to be cached after read: %v", err)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, _, _ := newTestSessionHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/session/sess_missing", "", "sess_missing", h.Get)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestHandler_End_StopsRelayAndEvicts(t *testing.T) {
	h, relays, _ := newTestSessionHandler(t)
	ctx := context.Background()

	sess := &Session{UserID: "user_1"}
	h.store.Create(ctx, sess)
	h.cache.Put(ctx, sess)

	rec := doRequest(t, h, http.MethodPost, "/session/"+sess.ID+"/end", "", sess.ID, h.End)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp dto.SessionResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.IsActive || resp.EndedAt == nil {
		t.Errorf("expected ended session, got %+v", resp)
	}

	if len(relays.stopped) != 1 || relays.stopped[0] != sess.ID {
		t.Errorf("expected relay stop for %s, got %v", sess.ID, relays.stopped)
	}
	if _, err := h.cache.Get(ctx, sess.ID); err == nil {
		t.Error("expected cache entry to be evicted")
	}
}

func TestHandler_End_NotFound(t *testing.T) {
	h, _, _ := newTestSessionHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/session/sess_missing/end", "", "sess_missing", h.End)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestHandler_StartRelay(t *testing.T) {
	h, relays, _ := newTestSessionHandler(t)
	ctx := context.Background()

	sess := &Session{UserID: "user_1"}
	h.store.Create(ctx, sess)

	rec := doRequest(t, h, http.MethodPost, "/session/"+sess.ID+"/relay", "", sess.ID, h.StartRelay)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}

	var resp dto.RelayStatusResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.SessionID != sess.ID || resp.RoomName != sess.RoomName {
		t.Errorf("unexpected response: %+v", resp)
	}

	if len(relays.started) != 1 || relays.started[0].RoomName != sess.RoomName {
		t.Errorf("expected relay start for %s, got %v", sess.RoomName, relays.started)
	}
}

func TestHandler_StartRelay_EndedSession(t *testing.T) {
	h, relays, _ := newTestSessionHandler(t)
	ctx := context.Background()

	sess := &Session{UserID: "user_1"}
	h.store.Create(ctx, sess)
	h.store.End(ctx, sess.ID)

	rec := doRequest(t, h, http.MethodPost, "/session/"+sess.ID+"/relay", "", sess.ID, h.StartRelay)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rec.Code)
	}
	if len(relays.started) != 0 {
		t.Error("expected no relay start for ended session")
	}
}

func TestHandler_StartRelay_Duplicate(t *testing.T) {
	h, relays, _ := newTestSessionHandler(t)
	relays.startErr = relay.ErrRelayExists
	ctx := context.Background()

	sess := &Session{UserID: "user_1"}
	h.store.Create(ctx, sess)

	rec := doRequest(t, h, http.MethodPost, "/session/"+sess.ID+"/relay", "", sess.ID, h.StartRelay)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rec.Code)
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, _, _ := newTestSessionHandler(t)
	e := echo.New()
	g := e.Group("/session")

	h.RegisterRoutes(g)

	routePaths := make(map[string]bool)
	for _, r := range e.Routes() {
		routePaths[r.Method+" "+r.Path] = true
	}
	for _, route := range []string{
		"POST /session",
		"GET /session/:id",
		"POST /session/:id/end",
		"POST /session/:id/relay",
	} {
		if !routePaths[route] {
			t.Errorf("expected route %s to be registered", route)
		}
	}
}
