package reporting

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dentalops/dentalops/internal/platform/apperr"
	"github.com/dentalops/dentalops/internal/platform/auth"
)

// Handler provides HTTP handlers for the reporting API.
type Handler struct {
	composer *Composer
	now      func() time.Time
}

func NewHandler(composer *Composer) *Handler {
	return &Handler{composer: composer, now: time.Now}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/reports")
	g.GET("/dashboard", h.Dashboard)
	g.GET("/ledger/daily", h.LedgerByDay, auth.RequireRole(auth.RoleAccountant, auth.RoleReception))
}

func (h *Handler) Dashboard(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	d, err := h.composer.Dashboard(c.Request().Context(), owner, h.now())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) LedgerByDay(c echo.Context) error {
	owner, err := auth.RequireOwner(c)
	if err != nil {
		return err
	}
	days, err := h.composer.LedgerByDay(c.Request().Context(), owner)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, days)
}
