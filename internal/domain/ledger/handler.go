package ledger

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
	g := api.Group("/ledger", auth.RequireRole(auth.RoleAccountant, auth.RoleReception))
	g.GET("", h.ListEntries)
	g.POST("", h.RecordEntry)
	g.GET("/:id", h.GetEntry)
	g.PUT("/:id", h.UpdateEntry)
	g.DELETE("/:id", h.DeleteEntry)
	g.POST("/:id/archive", h.ArchiveEntry)
}

func entryID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) RecordEntry(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	var e Entry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.Record(c.Request().Context(), owner, &e)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) GetEntry(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	id, err := entryID(c)
	if err != nil {
		return err
	}
	v, err := h.svc.Get(c.Request().Context(), owner, id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) ListEntries(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	includeClosed, _ := strconv.ParseBool(c.QueryParam("include_closed"))
	items, err := h.svc.List(c.Request().Context(), owner, includeClosed)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if items == nil {
		items = []*EntryView{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateEntry(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	id, err := entryID(c)
	if err != nil {
		return err
	}
	var e Entry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.Update(c.Request().Context(), owner, id, &e)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) DeleteEntry(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	id, err := entryID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), owner, id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ArchiveEntry(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	id, err := entryID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Archive(c.Request().Context(), owner, id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}
