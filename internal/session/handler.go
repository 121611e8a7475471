package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/eleven-am/voice-relay/internal/dto"
	"github.com/eleven-am/voice-relay/internal/relay"
	"github.com/eleven-am/voice-relay/internal/shared"
	"github.com/eleven-am/voice-relay/internal/user"
	"github.com/labstack/echo/v4"
)

// RelayController is the slice of relay.Manager the session handler needs.
type RelayController interface {
	StartRelay(ctx context.Context, sess relay.SessionContext) (*relay.Relay, error)
	StopRelay(sessionID, reason string) error
	Get(sessionID string) (*relay.Relay, bool)
}

type Handler struct {
	store     *Store
	cache     *Cache
	userStore *user.Store
	relays    RelayController
	logger    *slog.Logger
}

func NewHandler(store *Store, cache *Cache, userStore *user.Store, relays RelayController, logger *slog.Logger) *Handler {
	return &Handler{
		store:     store,
		cache:     cache,
		userStore: userStore,
		relays:    relays,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.POST("/:id/end", h.End)
	g.POST("/:id/relay", h.StartRelay)
}

func sessionToResponse(s *Session) dto.SessionResponse {
	return dto.SessionResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Title:     s.Title,
		RoomName:  s.RoomName,
		IsActive:  s.IsActive,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
	}
}

// @Summary      Create session
// @Description  Creates a voice session with a fresh room. Falls back to the guest account when no user is given
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        request  body  dto.CreateSessionRequest  false  "Session options"
// @Success      201  {object}  dto.SessionResponse
// @Failure      500  {object}  shared.APIError
// @Router       /session [post]
func (h *Handler) Create(c echo.Context) error {
	var req dto.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}

	ctx := c.Request().Context()

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		guest, err := h.userStore.FindOrCreateGuest(ctx)
		if err != nil {
			h.logger.Error("failed to resolve guest user", "error", err)
			return shared.InternalError("guest_failed", "failed to resolve guest user")
		}
		userID = guest.ID
	} else if _, err := h.userStore.GetByID(ctx, userID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("user_not_found", "user not found")
		}
		h.logger.Error("failed to look up user", "error", err, "user_id", userID)
		return shared.InternalError("user_lookup_failed", "failed to look up user")
	}

	sess := &Session{
		UserID: userID,
		Title:  req.Title,
	}
	if err := h.store.Create(ctx, sess); err != nil {
		h.logger.Error("failed to create session", "error", err)
		return shared.InternalError("create_failed", "failed to create session")
	}

	if err := h.cache.Put(ctx, sess); err != nil {
		h.logger.Warn("failed to cache session", "error", err, "session_id", sess.ID)
	}

	return c.JSON(http.StatusCreated, sessionToResponse(sess))
}

// @Summary      Get session
// @Description  Returns a session by id, served from cache when possible
// @Tags         session
// @Produce      json
// @Param        id  path  string  true  "Session ID"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  shared.APIError
// @Router       /session/{id} [get]
func (h *Handler) Get(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	if sess, err := h.cache.Get(ctx, id); err == nil {
		return c.JSON(http.StatusOK, sessionToResponse(sess))
	}

	sess, err := h.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("session_not_found", "session not found")
		}
		h.logger.Error("failed to get session", "error", err, "session_id", id)
		return shared.InternalError("get_failed", "failed to get session")
	}

	if sess.IsActive {
		if err := h.cache.Put(ctx, sess); err != nil {
			h.logger.Warn("failed to cache session", "error", err, "session_id", id)
		}
	}

	return c.JSON(http.StatusOK, sessionToResponse(sess))
}

// @Summary      End session
// @Description  Marks the session ended, stops any live relay and evicts the cache entry
// @Tags         session
// @Produce      json
// @Param        id  path  string  true  "Session ID"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  shared.APIError
// @Router       /session/{id}/end [post]
func (h *Handler) End(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	sess, err := h.store.End(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("session_not_found", "session not found")
		}
		h.logger.Error("failed to end session", "error", err, "session_id", id)
		return shared.InternalError("end_failed", "failed to end session")
	}

	if err := h.relays.StopRelay(id, "session ended"); err != nil && !errors.Is(err, relay.ErrRelayNotFound) {
		h.logger.Warn("failed to stop relay", "error", err, "session_id", id)
	}

	if err := h.cache.Evict(ctx, id); err != nil {
		h.logger.Warn("failed to evict cached session", "error", err, "session_id", id)
	}

	return c.JSON(http.StatusOK, sessionToResponse(sess))
}

// @Summary      Start relay
// @Description  Connects the voice agent to the session's room and begins relaying audio
// @Tags         session
// @Produce      json
// @Param        id  path  string  true  "Session ID"
// @Success      202  {object}  dto.RelayStatusResponse
// @Failure      404  {object}  shared.APIError
// @Failure      409  {object}  shared.APIError
// @Router       /session/{id}/relay [post]
func (h *Handler) StartRelay(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	sess, err := h.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("session_not_found", "session not found")
		}
		h.logger.Error("failed to get session", "error", err, "session_id", id)
		return shared.InternalError("get_failed", "failed to get session")
	}
	if !sess.IsActive {
		return shared.Conflict("session_ended", "session has already ended")
	}

	r, err := h.relays.StartRelay(ctx, relay.SessionContext{
		SessionID: sess.ID,
		RoomName:  sess.RoomName,
	})
	if err != nil {
		if errors.Is(err, relay.ErrRelayExists) {
			return shared.Conflict("relay_exists", "a relay is already running for this session")
		}
		h.logger.Error("failed to start relay", "error", err, "session_id", id)
		return shared.InternalError("relay_failed", "failed to start relay")
	}

	return c.JSON(http.StatusAccepted, dto.RelayStatusResponse{
		SessionID: sess.ID,
		RoomName:  sess.RoomName,
		Status:    r.State().String(),
	})
}
