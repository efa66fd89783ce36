package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/academia/core/academy"
)

func (api *academyAPI) registerPeople(g *echo.Group) {
	sg := g.Group("/students")
	sg.GET("", api.listStudents)
	sg.POST("", createHandler(api, api.repo.CreateStudent))
	sg.PUT("/:id", updateHandler(api, api.repo.UpdateStudent))
	sg.DELETE("/:id", deleteHandler(api.repo.DeleteStudent))

	ug := g.Group("/users")
	ug.GET("", api.listUsers)
	ug.PUT("/:id", updateHandler(api, api.repo.UpdateInstructor))
	ug.DELETE("/:id", api.deleteUser)

	cg := g.Group("/certificates")
	cg.GET("", api.listCertificates)
	cg.POST("/issue", createHandler(api, api.repo.IssueCertificate))
	cg.POST("/revoke", api.revokeCertificate)
	cg.DELETE("/:id", deleteHandler(api.repo.DeleteCertificate))
}

// listStudents answers with a page rather than a bare array.
func (api *academyAPI) listStudents(ctx echo.Context) error {
	cohortID, err := queryID(ctx, "cohort_id")
	if err != nil {
		return err
	}
	students, err := api.repo.ListStudents(cohortID)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, academy.Page[academy.Student]{Items: students, Total: len(students)})
}

func (api *academyAPI) listUsers(ctx echo.Context) error {
	users, err := api.repo.ListUsers(ctx.QueryParam("role"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, users)
}

func (api *academyAPI) deleteUser(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	usr, err := api.getContextUser(ctx)
	if err != nil {
		return err
	}
	if usr.ID == id {
		return academy.Conflict("you cannot delete your own account")
	}
	if err = api.repo.DeleteUser(id); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, nil)
}

func (api *academyAPI) listCertificates(ctx echo.Context) error {
	certs, err := api.repo.ListCertificates()
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, certs)
}

func (api *academyAPI) revokeCertificate(ctx echo.Context) error {
	var data academy.RevokeCertificate
	if err := api.bind(ctx, &data); err != nil {
		return err
	}
	cert, err := api.repo.RevokeCertificate(data.CertificateID)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, cert)
}
