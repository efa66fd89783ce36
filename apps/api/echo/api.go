package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academy"
)

type academyAPI struct {
	conf       *core.Config
	repo       academy.Repository
	mailSvc    core.EmailService
	validate   *validator.Validate
	translator ut.Translator
}

// bind decodes the request body into data, then cleans and validates it.
func (api *academyAPI) bind(ctx echo.Context, data interface{}) error {
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding request")
	}
	return core.ValidateStruct(api.validate, api.translator, data)
}

func respond(ctx echo.Context, code int, data interface{}) error {
	return ctx.JSON(code, academy.OK(data))
}

// pathID parses the path parameter name. Malformed IDs never match a record.
func pathID(ctx echo.Context, name string) (academy.ID, error) {
	id, err := academy.ParseID(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// queryID parses the optional query parameter name; 0 means absent.
func queryID(ctx echo.Context, name string) (academy.ID, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return 0, nil
	}
	id, err := academy.ParseID(val)
	if err != nil {
		return 0, core.NewValidationError(nil, core.FieldError{Field: name, Error: name + " must be an integer"})
	}
	return id, nil
}

// generic CRUD handlers

func createHandler[D any, E any](api *academyAPI, create func(D) (E, error)) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var data D
		if err := api.bind(ctx, &data); err != nil {
			return err
		}
		e, err := create(data)
		if err != nil {
			return err
		}
		return respond(ctx, http.StatusCreated, e)
	}
}

func updateHandler[D any, E any](api *academyAPI, update func(academy.ID, D) (E, error)) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := pathID(ctx, "id")
		if err != nil {
			return err
		}
		var data D
		if err = api.bind(ctx, &data); err != nil {
			return err
		}
		e, err := update(id, data)
		if err != nil {
			return err
		}
		return respond(ctx, http.StatusOK, e)
	}
}

func deleteHandler(destroy func(academy.ID) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := pathID(ctx, "id")
		if err != nil {
			return err
		}
		if err = destroy(id); err != nil {
			return err
		}
		return respond(ctx, http.StatusOK, nil)
	}
}

// listByHandler lists the records matching the optional ID query parameter param.
func listByHandler[E any](param string, list func(academy.ID) ([]E, error)) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := queryID(ctx, param)
		if err != nil {
			return err
		}
		rows, err := list(id)
		if err != nil {
			return err
		}
		return respond(ctx, http.StatusOK, rows)
	}
}
