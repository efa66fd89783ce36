package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academy"
)

func (api *academyAPI) registerAttendance(g *echo.Group) {
	ag := g.Group("/attendance")
	ag.GET("/students", api.cohortRoster)
	ag.POST("/mark", api.markAttendance)
	ag.GET("/session/:session_id", api.sessionAttendance)
	ag.DELETE("/session/:session_id/all", api.clearAttendance)
	ag.PUT("/session/:session_id/user/:user_id", api.setAttendance)
	ag.DELETE("/session/:session_id/user/:user_id", api.deleteAttendance)
}

func (api *academyAPI) cohortRoster(ctx echo.Context) error {
	cohortID, err := queryID(ctx, "cohort_id")
	if err != nil {
		return err
	}
	if cohortID == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "cohort_id", Error: "this field is required"})
	}
	roster, err := api.repo.CohortRoster(cohortID)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, roster)
}

func (api *academyAPI) sessionAttendance(ctx echo.Context) error {
	sessionID, err := pathID(ctx, "session_id")
	if err != nil {
		return err
	}
	sheet, err := api.repo.SessionAttendance(sessionID)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, sheet)
}

func (api *academyAPI) markAttendance(ctx echo.Context) error {
	var data academy.MarkAttendance
	if err := api.bind(ctx, &data); err != nil {
		return err
	}
	if err := api.repo.MarkAttendance(data); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, nil)
}

func (api *academyAPI) setAttendance(ctx echo.Context) error {
	sessionID, err := pathID(ctx, "session_id")
	if err != nil {
		return err
	}
	userID, err := pathID(ctx, "user_id")
	if err != nil {
		return err
	}
	var data academy.AttendanceStatus
	if err = api.bind(ctx, &data); err != nil {
		return err
	}
	if err = api.repo.SetAttendance(sessionID, userID, data.Status); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, nil)
}

func (api *academyAPI) deleteAttendance(ctx echo.Context) error {
	sessionID, err := pathID(ctx, "session_id")
	if err != nil {
		return err
	}
	userID, err := pathID(ctx, "user_id")
	if err != nil {
		return err
	}
	if err = api.repo.DeleteAttendance(sessionID, userID); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, nil)
}

func (api *academyAPI) clearAttendance(ctx echo.Context) error {
	sessionID, err := pathID(ctx, "session_id")
	if err != nil {
		return err
	}
	if err = api.repo.ClearAttendance(sessionID); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, nil)
}
