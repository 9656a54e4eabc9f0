package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"
	"github.com/lithammer/shortuuid/v4"

	"github.com/useattune/attune/store"
)

var timesOfDay = map[string]bool{
	"morning": true,
	"midday":  true,
	"evening": true,
	"anytime": true,
}

var weekdayNames = map[string]bool{
	"mon": true, "tue": true, "wed": true, "thu": true,
	"fri": true, "sat": true, "sun": true,
}

// ─────────────────────────────────────────────────────────────────────────────
// Request / Response types
// ─────────────────────────────────────────────────────────────────────────────

type createRoutineRequest struct {
	Title     string   `json:"title"`
	Emoji     string   `json:"emoji"`
	TimeOfDay string   `json:"timeOfDay"`
	Weekdays  []string `json:"weekdays"`
}

type updateRoutineRequest struct {
	Title     *string   `json:"title"`
	Emoji     *string   `json:"emoji"`
	TimeOfDay *string   `json:"timeOfDay"`
	Weekdays  *[]string `json:"weekdays"`
	Position  *int32    `json:"position"`
	Archived  *bool     `json:"archived"`
}

type routineResponse struct {
	UID       string   `json:"uid"`
	Title     string   `json:"title"`
	Emoji     string   `json:"emoji"`
	TimeOfDay string   `json:"timeOfDay"`
	Weekdays  []string `json:"weekdays"`
	Position  int32    `json:"position"`
	Archived  bool     `json:"archived"`
	CreatedTs int64    `json:"createdTs"`
	UpdatedTs int64    `json:"updatedTs"`
}

func toRoutineResponse(r *store.Routine) routineResponse {
	weekdays := r.Weekdays
	if weekdays == nil {
		weekdays = []string{}
	}
	return routineResponse{
		UID:       r.UID,
		Title:     r.Title,
		Emoji:     r.Emoji,
		TimeOfDay: r.TimeOfDay,
		Weekdays:  weekdays,
		Position:  r.Position,
		Archived:  r.Archived,
		CreatedTs: r.CreatedTs,
		UpdatedTs: r.UpdatedTs,
	}
}

func validWeekdays(days []string) bool {
	for _, d := range days {
		if !weekdayNames[d] {
			return false
		}
	}
	return true
}

// ─────────────────────────────────────────────────────────────────────────────
// Route registration
// ─────────────────────────────────────────────────────────────────────────────

func (s *APIV1Service) registerRoutineRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/routines", s.listRoutines)
	g.POST("/routines", s.createRoutine)
	g.PATCH("/routines/:uid", s.updateRoutine)
	g.DELETE("/routines/:uid", s.deleteRoutine)
}

// ─────────────────────────────────────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────────────────────────────────────

func (s *APIV1Service) listRoutines(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	routines, err := s.Store.ListRoutines(c.Request().Context(), &store.FindRoutine{
		CreatorID: &user.ID,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]routineResponse, 0, len(routines))
	for _, r := range routines {
		resp = append(resp, toRoutineResponse(r))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) createRoutine(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	var req createRoutineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title required")
	}
	if req.TimeOfDay == "" {
		req.TimeOfDay = "anytime"
	}
	if !timesOfDay[req.TimeOfDay] {
		return echo.NewHTTPError(http.StatusBadRequest, "timeOfDay must be morning, midday, evening or anytime")
	}
	if !validWeekdays(req.Weekdays) {
		return echo.NewHTTPError(http.StatusBadRequest, "weekdays must be three-letter day names")
	}

	ctx := c.Request().Context()
	// New routines land at the end of the plan.
	existing, err := s.Store.ListRoutines(ctx, &store.FindRoutine{CreatorID: &user.ID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	position := int32(0)
	for _, r := range existing {
		if r.Position >= position {
			position = r.Position + 1
		}
	}

	routine, err := s.Store.CreateRoutine(ctx, &store.Routine{
		UID:       shortuuid.New(),
		CreatorID: user.ID,
		Title:     req.Title,
		Emoji:     req.Emoji,
		TimeOfDay: req.TimeOfDay,
		Weekdays:  req.Weekdays,
		Position:  position,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, toRoutineResponse(routine))
}

func (s *APIV1Service) updateRoutine(c *echo.Context) error {
	uid := c.Param("uid")
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	routine, err := s.Store.GetRoutine(c.Request().Context(), &store.FindRoutine{UID: &uid})
	if err != nil || routine == nil || routine.CreatorID != user.ID {
		return echo.NewHTTPError(http.StatusNotFound, "routine not found")
	}

	var req updateRoutineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "title required")
		}
		req.Title = &trimmed
	}
	if req.TimeOfDay != nil && !timesOfDay[*req.TimeOfDay] {
		return echo.NewHTTPError(http.StatusBadRequest, "timeOfDay must be morning, midday, evening or anytime")
	}
	if req.Weekdays != nil && !validWeekdays(*req.Weekdays) {
		return echo.NewHTTPError(http.StatusBadRequest, "weekdays must be three-letter day names")
	}

	updated, err := s.Store.UpdateRoutine(c.Request().Context(), &store.UpdateRoutine{
		UID:       uid,
		Title:     req.Title,
		Emoji:     req.Emoji,
		TimeOfDay: req.TimeOfDay,
		Weekdays:  req.Weekdays,
		Position:  req.Position,
		Archived:  req.Archived,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toRoutineResponse(updated))
}

func (s *APIV1Service) deleteRoutine(c *echo.Context) error {
	uid := c.Param("uid")
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	routine, err := s.Store.GetRoutine(c.Request().Context(), &store.FindRoutine{UID: &uid})
	if err != nil || routine == nil || routine.CreatorID != user.ID {
		return echo.NewHTTPError(http.StatusNotFound, "routine not found")
	}
	if err := s.Store.DeleteRoutine(c.Request().Context(), uid); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
