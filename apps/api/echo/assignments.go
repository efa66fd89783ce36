package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/academia/core/academy"
)

func (api *academyAPI) registerAssignments(g *echo.Group) {
	ag := g.Group("/assignments")
	ag.GET("", listByHandler("cohort_id", api.repo.ListAssignments))
	ag.POST("", createHandler(api, api.repo.CreateAssignment))
	ag.PUT("/:id", updateHandler(api, api.repo.UpdateAssignment))
	ag.DELETE("/:id", deleteHandler(api.repo.DeleteAssignment))
	ag.GET("/:id/students", api.assignmentStudents)
	ag.POST("/:id/grade-bulk", api.gradeBulk)
}

func (api *academyAPI) assignmentStudents(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	rows, err := api.repo.AssignmentGrades(id)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, rows)
}

func (api *academyAPI) gradeBulk(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data academy.BulkGrade
	if err = api.bind(ctx, &data); err != nil {
		return err
	}
	n, err := api.repo.GradeBulk(id, data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, academy.GradeBulkResult{GradedCount: n})
}

func (api *academyAPI) gradeSubmission(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data academy.SubmissionGrade
	if err = api.bind(ctx, &data); err != nil {
		return err
	}
	if err = api.repo.GradeSubmission(id, data); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, nil)
}
