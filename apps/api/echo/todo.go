package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lenswise/coachdesk/core"
	"github.com/lenswise/coachdesk/core/todo"
)

type todoApi struct {
	svc *todo.Service
}

func registerTodoAPI(g *echo.Group, svc *todo.Service) {
	api := todoApi{svc: svc}

	tg := g.Group("/todos")
	tg.POST("", api.create)
	tg.GET("", api.query)
	tg.DELETE("", api.destroyMultiple)
	tg.GET("/overdue", api.overdue)

	dg := tg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

type createTodoRequest struct {
	AssignedBy string `json:"assigned_by"`
	todo.NewTodo
}

func (api *todoApi) create(ctx echo.Context) error {
	var data createTodoRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTodo")
	}
	if data.AssignedBy = core.CleanString(data.AssignedBy); data.AssignedBy == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "assigned_by", Error: "this field is required"})
	}

	td, err := api.svc.Create(data.AssignedBy, data.NewTodo)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, td)
}

func (api *todoApi) query(ctx echo.Context) error {
	filter := new(todo.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []todo.Todo{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	tds, err := api.svc.Filter(*filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying todos")
	}
	if tds == nil {
		tds = []todo.Todo{}
	}
	return ctx.JSON(http.StatusOK, tds)
}

func (api *todoApi) overdue(ctx echo.Context) error {
	userID := core.CleanString(ctx.QueryParam("user_id"))
	if userID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "user_id", Error: "this field is required"})
	}

	tds, err := api.svc.Overdue(userID)
	if err != nil {
		return errors.Wrap(err, "querying overdue todos")
	}
	if tds == nil {
		tds = []todo.Todo{}
	}
	return ctx.JSON(http.StatusOK, tds)
}

func (api *todoApi) retrieve(ctx echo.Context) error {
	td, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, td)
}

func (api *todoApi) update(ctx echo.Context) error {
	var data todo.UpdateTodo
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTodo")
	}

	td, err := api.svc.Update(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, td)
}

func (api *todoApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting todo")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *todoApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(query.IDs...); err != nil {
		return errors.Wrap(err, "deleting todos")
	}
	return ctx.NoContent(http.StatusNoContent)
}
