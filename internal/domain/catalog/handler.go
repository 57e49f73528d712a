package catalog

import (
	"net/http"

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
	api.GET("/treatments", h.ListTreatments)
	api.GET("/treatments/:id", h.GetTreatment)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/treatments", h.CreateTreatment)
	admin.PUT("/treatments/:id", h.UpdateTreatment)
	admin.DELETE("/treatments/:id", h.DeleteTreatment)
}

func (h *Handler) CreateTreatment(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	var t Treatment
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateTreatment(c.Request().Context(), owner, &t); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetTreatment(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := h.svc.GetTreatment(c.Request().Context(), owner, id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ListTreatments(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListTreatments(c.Request().Context(), owner)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if items == nil {
		items = []*Treatment{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateTreatment(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var t Treatment
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t.ID = id
	if err := h.svc.UpdateTreatment(c.Request().Context(), owner, &t); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTreatment(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteTreatment(c.Request().Context(), owner, id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}
