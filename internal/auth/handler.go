package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/eleven-am/voice-relay/internal/dto"
	"github.com/eleven-am/voice-relay/internal/session"
	"github.com/eleven-am/voice-relay/internal/shared"
	"github.com/eleven-am/voice-relay/internal/user"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	tokens   *TokenService
	sessions *session.Store
	users    *user.Store
	logger   *slog.Logger
}

func NewHandler(tokens *TokenService, sessions *session.Store, users *user.Store, logger *slog.Logger) *Handler {
	return &Handler{
		tokens:   tokens,
		sessions: sessions,
		users:    users,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/token", h.Token)
	g.POST("/quick_token", h.QuickToken)
}

// @Summary      Mint room token
// @Description  Mints a LiveKit join token for an existing session's room
// @Tags         livekit
// @Accept       json
// @Produce      json
// @Param        request  body  dto.TokenRequest  true  "Token request"
// @Success      200  {object}  dto.TokenResponse
// @Failure      404  {object}  shared.APIError
// @Failure      409  {object}  shared.APIError
// @Router       /livekit/token [post]
func (h *Handler) Token(c echo.Context) error {
	var req dto.TokenRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return shared.BadRequest("missing_session", "session_id is required")
	}

	ctx := c.Request().Context()
	sess, err := h.sessions.GetByID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("session_not_found", "session not found")
		}
		h.logger.Error("failed to get session", "error", err, "session_id", req.SessionID)
		return shared.InternalError("get_failed", "failed to get session")
	}
	if !sess.IsActive {
		return shared.Conflict("session_ended", "session has already ended")
	}

	identity := strings.TrimSpace(req.Identity)
	if identity == "" {
		identity = sess.UserID
	}

	token, err := h.tokens.GenerateToken(identity, sess.RoomName)
	if err != nil {
		h.logger.Error("failed to mint token", "error", err, "session_id", sess.ID)
		return shared.InternalError("token_failed", "failed to mint token")
	}

	return c.JSON(http.StatusOK, dto.TokenResponse{
		Token:     token,
		URL:       h.tokens.URL(),
		RoomName:  sess.RoomName,
		Identity:  identity,
		SessionID: sess.ID,
	})
}

// @Summary      Quick guest token
// @Description  Creates a guest session and mints a join token for it in one call
// @Tags         livekit
// @Produce      json
// @Success      201  {object}  dto.TokenResponse
// @Failure      500  {object}  shared.APIError
// @Router       /livekit/quick_token [post]
func (h *Handler) QuickToken(c echo.Context) error {
	ctx := c.Request().Context()

	guest, err := h.users.FindOrCreateGuest(ctx)
	if err != nil {
		h.logger.Error("failed to resolve guest user", "error", err)
		return shared.InternalError("guest_failed", "failed to resolve guest user")
	}

	sess := &session.Session{UserID: guest.ID, Title: "Guest session"}
	if err := h.sessions.Create(ctx, sess); err != nil {
		h.logger.Error("failed to create guest session", "error", err)
		return shared.InternalError("create_failed", "failed to create session")
	}

	identity := guest.Username + "_" + sess.ID
	token, err := h.tokens.GenerateToken(identity, sess.RoomName)
	if err != nil {
		h.logger.Error("failed to mint token", "error", err, "session_id", sess.ID)
		return shared.InternalError("token_failed", "failed to mint token")
	}

	return c.JSON(http.StatusCreated, dto.TokenResponse{
		Token:     token,
		URL:       h.tokens.URL(),
		RoomName:  sess.RoomName,
		Identity:  identity,
		SessionID: sess.ID,
	})
}
