package v1

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v5"
	"github.com/pkg/errors"

	"github.com/useattune/attune/plugin/inference"
	"github.com/useattune/attune/plugin/safety"
)

// maxChatMessageRunes caps one user message. The terminal client enforces the
// same boundary before sending; this is the server-side backstop.
const maxChatMessageRunes = 5000

// crisisRedirect is the proxy-side refusal text for declined messages. The
// client renders it verbatim, alongside the persona's own safety line.
const crisisRedirect = "This isn't something I can help with here. If you're in crisis, please reach out to local emergency services or a crisis line."

// ─────────────────────────────────────────────────────────────────────────────
// Request / Response types
// ─────────────────────────────────────────────────────────────────────────────

type chatRequest struct {
	Message   string `json:"message"`
	PersonaID string `json:"personaId"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// chatErrorResponse is the {error, code} shape chat clients classify on.
type chatErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func chatError(c *echo.Context, status int, code, message string) error {
	return c.JSON(status, chatErrorResponse{Error: message, Code: code})
}

// ─────────────────────────────────────────────────────────────────────────────
// Daily quota
// ─────────────────────────────────────────────────────────────────────────────

// chatQuota counts assistant turns per user per UTC day. Counts live in
// memory only; a restart forgives the day.
type chatQuota struct {
	mu    sync.Mutex
	limit int
	day   string
	used  map[int32]int
}

func newChatQuota(limit int) *chatQuota {
	return &chatQuota{limit: limit, used: make(map[int32]int)}
}

// allow consumes one turn for userID and reports whether it fit the quota.
// A limit of zero disables the cap.
func (q *chatQuota) allow(userID int32, now time.Time) bool {
	if q.limit <= 0 {
		return true
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	day := now.UTC().Format("2006-01-02")
	if day != q.day {
		q.day = day
		q.used = make(map[int32]int)
	}
	if q.used[userID] >= q.limit {
		return false
	}
	q.used[userID]++
	return true
}

// ─────────────────────────────────────────────────────────────────────────────
// Route registration
// ─────────────────────────────────────────────────────────────────────────────

func (s *APIV1Service) registerChatRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.POST("/chat", s.handleChat)
}

// ─────────────────────────────────────────────────────────────────────────────
// Handler
// ─────────────────────────────────────────────────────────────────────────────

func (s *APIV1Service) handleChat(c *echo.Context) error {
	if s.Completer == nil || s.Profile.InferenceBaseURL == "" {
		return chatError(c, http.StatusServiceUnavailable, "not_configured",
			"chat is not configured (missing ATTUNE_INFERENCE_BASE_URL)")
	}

	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return chatError(c, http.StatusBadRequest, "invalid_request", "malformed request body")
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return chatError(c, http.StatusBadRequest, "invalid_request", "message required")
	}
	if utf8.RuneCountInString(message) > maxChatMessageRunes {
		return chatError(c, http.StatusBadRequest, "invalid_request",
			fmt.Sprintf("message exceeds %d characters", maxChatMessageRunes))
	}
	p := s.Personas.Get(req.PersonaID)
	if p == nil {
		return chatError(c, http.StatusBadRequest, "unknown_persona", "unknown persona")
	}

	if screened := safety.Screen(message); screened.Flagged {
		slog.Info("chat message declined by safety screen", "user", user.ID, "topic", screened.Topic)
		return chatError(c, http.StatusBadRequest, "content_safety", crisisRedirect)
	}

	if !s.quota.allow(user.ID, time.Now()) {
		return chatError(c, http.StatusTooManyRequests, "rate_limited",
			"daily chat limit reached, back tomorrow")
	}

	reply, err := s.Completer.Complete(c.Request().Context(), p.SystemPrompt, message)
	if err != nil {
		if errors.Is(err, inference.ErrContentFiltered) {
			return chatError(c, http.StatusBadRequest, "content_safety", crisisRedirect)
		}
		// Upstream trouble stays invisible to the user: answer in the
		// persona's voice instead of surfacing a 5xx.
		slog.Warn("inference call failed, serving fallback", "persona", p.ID, "err", err)
		return c.JSON(http.StatusOK, chatResponse{Response: p.Fallbacks.General})
	}
	return c.JSON(http.StatusOK, chatResponse{Response: reply})
}
