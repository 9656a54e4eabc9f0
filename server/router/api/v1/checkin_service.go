package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/lithammer/shortuuid/v4"

	"github.com/useattune/attune/store"
)

// ─────────────────────────────────────────────────────────────────────────────
// Request / Response types
// ─────────────────────────────────────────────────────────────────────────────

type submitCheckInRequest struct {
	Date              string   `json:"date"`
	Mood              int32    `json:"mood"`
	Energy            int32    `json:"energy"`
	Note              string   `json:"note"`
	CompletedRoutines []string `json:"completedRoutines"`
}

type checkInResponse struct {
	UID               string   `json:"uid"`
	Date              string   `json:"date"`
	Mood              int32    `json:"mood"`
	Energy            int32    `json:"energy"`
	Note              string   `json:"note"`
	CompletedRoutines []string `json:"completedRoutines"`
	CreatedTs         int64    `json:"createdTs"`
	UpdatedTs         int64    `json:"updatedTs"`
}

func toCheckInResponse(ci *store.CheckIn) checkInResponse {
	completed := ci.CompletedRoutines
	if completed == nil {
		completed = []string{}
	}
	return checkInResponse{
		UID:               ci.UID,
		Date:              ci.Date,
		Mood:              ci.Mood,
		Energy:            ci.Energy,
		Note:              ci.Note,
		CompletedRoutines: completed,
		CreatedTs:         ci.CreatedTs,
		UpdatedTs:         ci.UpdatedTs,
	}
}

func validDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Route registration
// ─────────────────────────────────────────────────────────────────────────────

func (s *APIV1Service) registerCheckInRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/checkins", s.listCheckIns)
	g.POST("/checkins", s.submitCheckIn)
	g.GET("/checkins/:date", s.getCheckIn)
}

// ─────────────────────────────────────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────────────────────────────────────

func (s *APIV1Service) listCheckIns(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	find := &store.FindCheckIn{CreatorID: &user.ID}
	if from := c.QueryParam("from"); from != "" {
		if !validDate(from) {
			return echo.NewHTTPError(http.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		find.DateFrom = &from
	}
	if to := c.QueryParam("to"); to != "" {
		if !validDate(to) {
			return echo.NewHTTPError(http.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		find.DateTo = &to
	}
	checkIns, err := s.Store.ListCheckIns(c.Request().Context(), find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]checkInResponse, 0, len(checkIns))
	for _, ci := range checkIns {
		resp = append(resp, toCheckInResponse(ci))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) submitCheckIn(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	var req submitCheckInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	}
	if !validDate(req.Date) {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	if req.Mood < 1 || req.Mood > 5 || req.Energy < 1 || req.Energy > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "mood and energy must be between 1 and 5")
	}

	// Saving twice on the same date overwrites; the row keeps its identity.
	checkIn, err := s.Store.UpsertCheckIn(c.Request().Context(), &store.CheckIn{
		UID:               shortuuid.New(),
		CreatorID:         user.ID,
		Date:              req.Date,
		Mood:              req.Mood,
		Energy:            req.Energy,
		Note:              req.Note,
		CompletedRoutines: req.CompletedRoutines,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toCheckInResponse(checkIn))
}

func (s *APIV1Service) getCheckIn(c *echo.Context) error {
	date := c.Param("date")
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	if !validDate(date) {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	checkIn, err := s.Store.GetCheckIn(c.Request().Context(), &store.FindCheckIn{
		CreatorID: &user.ID,
		Date:      &date,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if checkIn == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no check-in for that date")
	}
	return c.JSON(http.StatusOK, toCheckInResponse(checkIn))
}
