package prescription

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
	api.GET("/prescriptions", h.ListPrescriptions)
	api.GET("/prescriptions/:id", h.GetPrescription)

	write := api.Group("", auth.RequireRole(auth.RoleDentist))
	write.POST("/prescriptions", h.IssuePrescription)
	write.PUT("/prescriptions/:id", h.UpdatePrescription)
	write.DELETE("/prescriptions/:id", h.DeletePrescription)
}

func (h *Handler) IssuePrescription(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	var p Prescription
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.Issue(c.Request().Context(), owner, &p)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) GetPrescription(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.Get(c.Request().Context(), owner, id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) ListPrescriptions(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	items, err := h.svc.List(c.Request().Context(), owner)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if items == nil {
		items = []*PrescriptionView{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdatePrescription(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Prescription
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.Update(c.Request().Context(), owner, id, &p)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) DeletePrescription(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), owner, id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}
