package scheduling

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentalops/dentalops/internal/platform/apperr"
	"github.com/dentalops/dentalops/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments", h.ListAppointments)
	api.GET("/appointments/today", h.TodayAppointments)
	api.GET("/appointments/:id", h.GetAppointment)
	api.GET("/appointments/:id/conflicts", h.AppointmentConflicts)
	api.GET("/appointments/:id/window", h.AppointmentWindow)

	write := api.Group("", auth.RequireRole(auth.RoleReception, auth.RoleDentist))
	write.POST("/appointments", h.BookAppointment)
	write.PATCH("/appointments/:id", h.EditAppointment)
	write.PUT("/appointments/:id", h.EditAppointment)
	write.POST("/appointments/:id/cancel", h.CancelAppointment)
	write.POST("/appointments/:id/archive", h.ArchiveAppointment)
}

func appointmentID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func emptyIfNil(v []*AppointmentView) []*AppointmentView {
	if v == nil {
		return []*AppointmentView{}
	}
	return v
}

func (h *Handler) BookAppointment(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.Book(c.Request().Context(), owner, req)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	id, err := appointmentID(c)
	if err != nil {
		return err
	}
	v, err := h.svc.Get(c.Request().Context(), owner, id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	includeClosed, _ := strconv.ParseBool(c.QueryParam("include_closed"))
	items, err := h.svc.List(c.Request().Context(), owner, includeClosed)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, emptyIfNil(items))
}

func (h *Handler) TodayAppointments(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	items, err := h.svc.Today(c.Request().Context(), owner)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, emptyIfNil(items))
}

func (h *Handler) EditAppointment(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	id, err := appointmentID(c)
	if err != nil {
		return err
	}
	var p Patch
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.Edit(c.Request().Context(), owner, id, p)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) CancelAppointment(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	id, err := appointmentID(c)
	if err != nil {
		return err
	}
	v, err := h.svc.Cancel(c.Request().Context(), owner, id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) ArchiveAppointment(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	id, err := appointmentID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Archive(c.Request().Context(), owner, id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AppointmentConflicts(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	id, err := appointmentID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.Conflicts(c.Request().Context(), owner, id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, emptyIfNil(items))
}

func (h *Handler) AppointmentWindow(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	id, err := appointmentID(c)
	if err != nil {
		return err
	}
	v, err := h.svc.Get(c.Request().Context(), owner, id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, EffectiveWindow(&v.Appointment))
}
