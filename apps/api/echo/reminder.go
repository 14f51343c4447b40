package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lenswise/coachdesk/core"
	"github.com/lenswise/coachdesk/core/reminder"
)

type reminderApi struct {
	svc *reminder.Service
}

func registerReminderAPI(g *echo.Group, svc *reminder.Service) {
	api := reminderApi{svc: svc}

	rg := g.Group("/reminders")
	rg.POST("", api.create)
	rg.GET("", api.query)
	rg.DELETE("", api.destroyMultiple)
	rg.GET("/due", api.due)
	rg.POST("/process", api.process)
	rg.GET("/stats", api.stats)

	dg := rg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

type createReminderRequest struct {
	UserID string `json:"user_id"`
	reminder.NewReminder
}

func (api *reminderApi) create(ctx echo.Context) error {
	var data createReminderRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReminder")
	}
	if data.UserID = core.CleanString(data.UserID); data.UserID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "user_id", Error: "this field is required"})
	}

	rem, err := api.svc.Create(data.UserID, data.NewReminder)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rem)
}

func (api *reminderApi) query(ctx echo.Context) error {
	filter := new(reminder.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []reminder.Reminder{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	rems, err := api.svc.Filter(*filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying reminders")
	}
	if rems == nil {
		rems = []reminder.Reminder{}
	}
	return ctx.JSON(http.StatusOK, rems)
}

func (api *reminderApi) due(ctx echo.Context) error {
	var windows []time.Duration
	if raw := ctx.QueryParam("window"); raw != "" {
		win, err := time.ParseDuration(raw)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "window", Error: "invalid duration"})
		}
		windows = append(windows, win)
	}

	rems, err := api.svc.Due(windows...)
	if err != nil {
		return errors.Wrap(err, "querying due reminders")
	}
	if rems == nil {
		rems = []reminder.Reminder{}
	}
	return ctx.JSON(http.StatusOK, rems)
}

func (api *reminderApi) process(ctx echo.Context) error {
	res, err := api.svc.ProcessDue()
	if err != nil {
		return errors.Wrap(err, "processing due reminders")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *reminderApi) stats(ctx echo.Context) error {
	userID := core.CleanString(ctx.QueryParam("user_id"))
	if userID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "user_id", Error: "this field is required"})
	}

	stats, err := api.svc.Stats(userID)
	if err != nil {
		return errors.Wrap(err, "computing reminder stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *reminderApi) retrieve(ctx echo.Context) error {
	rem, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rem)
}

func (api *reminderApi) update(ctx echo.Context) error {
	var data reminder.UpdateReminder
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateReminder")
	}

	rem, err := api.svc.Update(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rem)
}

func (api *reminderApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting reminder")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *reminderApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(query.IDs...); err != nil {
		return errors.Wrap(err, "deleting reminders")
	}
	return ctx.NoContent(http.StatusNoContent)
}
