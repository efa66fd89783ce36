package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (api *academyAPI) registerStreams(g *echo.Group) {
	sg := g.Group("/streams")
	sg.GET("", api.listStreams)
	sg.POST("", createHandler(api, api.repo.CreateStream))
	sg.PUT("/:id", updateHandler(api, api.repo.UpdateStream))
	sg.DELETE("/:id", deleteHandler(api.repo.DeleteStream))

	cg := g.Group("/cohorts")
	cg.GET("", listByHandler("stream_id", api.repo.ListCohorts))
	cg.POST("", createHandler(api, api.repo.CreateCohort))
	cg.PUT("/:id", updateHandler(api, api.repo.UpdateCohort))
	cg.DELETE("/:id", deleteHandler(api.repo.DeleteCohort))
}

func (api *academyAPI) listStreams(ctx echo.Context) error {
	streams, err := api.repo.ListStreams()
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, streams)
}
