package transcript

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/eleven-am/voice-relay/internal/shared"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/:id/transcript", h.Export)
	g.GET("/:id/summary", h.Summary)
}

// @Summary      Export session transcript
// @Description  Returns the full transcript for a session as json, markdown or plain text
// @Tags         report
// @Produce      json
// @Param        id      path   string  true   "Session ID"
// @Param        format  query  string  false  "Export format: json, markdown or txt"
// @Success      200  {array}  Transcript
// @Failure      404  {object}  shared.APIError
// @Router       /report/{id}/transcript [get]
func (h *Handler) Export(c echo.Context) error {
	sessionID := c.Param("id")

	lines, err := h.store.ListBySession(c.Request().Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to list transcript", "error", err, "session_id", sessionID)
		return shared.InternalError("transcript_query_failed", "failed to load transcript")
	}
	if len(lines) == 0 {
		return shared.NotFound("transcript_not_found", "no transcript for session")
	}

	switch c.QueryParam("format") {
	case FormatMarkdown:
		return c.Blob(http.StatusOK, "text/markdown; charset=utf-8",
			[]byte(RenderMarkdown(sessionID, lines)))
	case FormatText:
		return c.Blob(http.StatusOK, "text/plain; charset=utf-8",
			[]byte(RenderText(sessionID, lines)))
	default:
		return c.JSON(http.StatusOK, lines)
	}
}

// @Summary      Session transcript summary
// @Description  Returns line counts and time bounds for a session's transcript
// @Tags         report
// @Produce      json
// @Param        id  path  string  true  "Session ID"
// @Success      200  {object}  Summary
// @Failure      404  {object}  shared.APIError
// @Router       /report/{id}/summary [get]
func (h *Handler) Summary(c echo.Context) error {
	sessionID := c.Param("id")

	sum, err := h.store.Summarize(c.Request().Context(), sessionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("transcript_not_found", "no transcript for session")
		}
		h.logger.Error("failed to summarize transcript", "error", err, "session_id", sessionID)
		return shared.InternalError("summary_failed", "failed to summarize transcript")
	}

	return c.JSON(http.StatusOK, sum)
}
