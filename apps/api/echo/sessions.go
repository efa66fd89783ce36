package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academy"
)

func (api *academyAPI) registerSessions(g *echo.Group) {
	sg := g.Group("/sessions")
	sg.GET("", listByHandler("cohort_id", api.repo.ListSessions))
	sg.POST("", api.createSession)
	sg.PUT("/:id", updateHandler(api, api.repo.UpdateSession))
	sg.DELETE("/:id", deleteHandler(api.repo.DeleteSession))
}

// createSession accepts the cohort either in the body or as the cohort_id query parameter.
func (api *academyAPI) createSession(ctx echo.Context) error {
	var data academy.SessionDraft
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SessionDraft")
	}
	if data.CohortID == 0 {
		id, err := queryID(ctx, "cohort_id")
		if err != nil {
			return err
		}
		data.CohortID = id
	}
	if err := core.ValidateStruct(api.validate, api.translator, &data); err != nil {
		return err
	}

	s, err := api.repo.CreateSession(data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, s)
}
