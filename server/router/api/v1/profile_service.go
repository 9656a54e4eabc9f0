package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/useattune/attune/store"
)

// focusAreas is the closed set of wellness areas offered during onboarding.
var focusAreas = map[string]bool{
	"sleep":       true,
	"stress":      true,
	"movement":    true,
	"nutrition":   true,
	"mindfulness": true,
}

// ─────────────────────────────────────────────────────────────────────────────
// Request / Response types
// ─────────────────────────────────────────────────────────────────────────────

type profileResponse struct {
	DisplayName     string   `json:"displayName"`
	FocusAreas      []string `json:"focusAreas"`
	WakeTime        string   `json:"wakeTime"`
	SleepTime       string   `json:"sleepTime"`
	ReminderEnabled bool     `json:"reminderEnabled"`
	Onboarded       bool     `json:"onboarded"`
	UpdatedTs       int64    `json:"updatedTs"`
}

type updateProfileRequest struct {
	DisplayName     *string   `json:"displayName"`
	FocusAreas      *[]string `json:"focusAreas"`
	WakeTime        *string   `json:"wakeTime"`
	SleepTime       *string   `json:"sleepTime"`
	ReminderEnabled *bool     `json:"reminderEnabled"`
	Onboarded       *bool     `json:"onboarded"`
}

func toProfileResponse(p *store.Profile) profileResponse {
	areas := p.FocusAreas
	if areas == nil {
		areas = []string{}
	}
	return profileResponse{
		DisplayName:     p.DisplayName,
		FocusAreas:      areas,
		WakeTime:        p.WakeTime,
		SleepTime:       p.SleepTime,
		ReminderEnabled: p.ReminderEnabled,
		Onboarded:       p.Onboarded,
		UpdatedTs:       p.UpdatedTs,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Route registration
// ─────────────────────────────────────────────────────────────────────────────

func (s *APIV1Service) registerProfileRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/profile", s.getMyProfile)
	g.PATCH("/profile", s.updateMyProfile)
}

// ─────────────────────────────────────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────────────────────────────────────

func (s *APIV1Service) getMyProfile(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	p, err := s.Store.GetProfile(c.Request().Context(), &store.FindProfile{UserID: user.ID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if p == nil {
		// Accounts start with an empty, not-yet-onboarded profile.
		p = &store.Profile{UserID: user.ID, DisplayName: user.Nickname}
	}
	return c.JSON(http.StatusOK, toProfileResponse(p))
}

func (s *APIV1Service) updateMyProfile(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.FocusAreas != nil {
		for _, area := range *req.FocusAreas {
			if !focusAreas[area] {
				return echo.NewHTTPError(http.StatusBadRequest, "unknown focus area "+area)
			}
		}
	}
	for _, t := range []*string{req.WakeTime, req.SleepTime} {
		if t == nil || *t == "" {
			continue
		}
		if _, err := time.Parse("15:04", *t); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "times must be HH:MM")
		}
	}

	ctx := c.Request().Context()
	current, err := s.Store.GetProfile(ctx, &store.FindProfile{UserID: user.ID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if current == nil {
		current = &store.Profile{UserID: user.ID, DisplayName: user.Nickname}
	}
	if req.DisplayName != nil {
		current.DisplayName = *req.DisplayName
	}
	if req.FocusAreas != nil {
		current.FocusAreas = *req.FocusAreas
	}
	if req.WakeTime != nil {
		current.WakeTime = *req.WakeTime
	}
	if req.SleepTime != nil {
		current.SleepTime = *req.SleepTime
	}
	if req.ReminderEnabled != nil {
		current.ReminderEnabled = *req.ReminderEnabled
	}
	if req.Onboarded != nil {
		current.Onboarded = *req.Onboarded
	}

	saved, err := s.Store.UpsertProfile(ctx, current)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toProfileResponse(saved))
}
