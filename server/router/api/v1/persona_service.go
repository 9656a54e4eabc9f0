package v1

import (
	"net/http"

	"github.com/labstack/echo/v5"
)

// personaResponse is the client-safe view of a persona. The system prompt
// stays server-side.
type personaResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Tagline  string `json:"tagline"`
	Greeting string `json:"greeting"`
}

func (s *APIV1Service) registerPersonaRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/personas", s.listPersonas)
}

func (s *APIV1Service) listPersonas(c *echo.Context) error {
	if _, err := s.requireAuth(c); err != nil {
		return err
	}
	personas := s.Personas.All()
	resp := make([]personaResponse, 0, len(personas))
	for _, p := range personas {
		resp = append(resp, personaResponse{
			ID:       p.ID,
			Name:     p.Name,
			Tagline:  p.Tagline,
			Greeting: p.Greeting,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
