// Package v1 implements the attune HTTP API under /api/v1: accounts and
// tokens, the onboarding profile, routines, daily check-ins, the persona
// registry, and the chat proxy in front of the inference backend.
package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/useattune/attune/plugin/inference"
	"github.com/useattune/attune/plugin/persona"
	"github.com/useattune/attune/server/auth"
	"github.com/useattune/attune/server/profile"
	"github.com/useattune/attune/store"
)

// APIV1Service bundles the dependencies of the /api/v1 handlers.
type APIV1Service struct {
	Secret    string
	Profile   *profile.Profile
	Store     *store.Store
	Personas  *persona.Registry
	Completer inference.Completer

	quota *chatQuota
}

// NewAPIV1Service creates the service. Completer may be nil when no inference
// backend is configured; the chat route then answers 503.
func NewAPIV1Service(secret string, prof *profile.Profile, st *store.Store, personas *persona.Registry, completer inference.Completer) *APIV1Service {
	return &APIV1Service{
		Secret:    secret,
		Profile:   prof,
		Store:     st,
		Personas:  personas,
		Completer: completer,
		quota:     newChatQuota(prof.ChatDailyQuota),
	}
}

// Register mounts every /api/v1 route on e.
func (s *APIV1Service) Register(e *echo.Echo) {
	s.registerAuthRoutes(e)
	s.registerProfileRoutes(e)
	s.registerRoutineRoutes(e)
	s.registerCheckInRoutes(e)
	s.registerPersonaRoutes(e)
	s.registerChatRoutes(e)
}

// ─────────────────────────────────────────────────────────────────────────────
// Helper: requireAuth
// ─────────────────────────────────────────────────────────────────────────────

func (s *APIV1Service) requireAuth(c *echo.Context) (*store.User, error) {
	authHeader := c.Request().Header.Get("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" || token == authHeader {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	userID, err := auth.VerifyAccessToken(token, s.Secret)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := s.Store.GetUser(c.Request().Context(), &store.FindUser{ID: &userID})
	if err != nil || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return user, nil
}
