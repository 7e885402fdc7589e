package jobrole

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/occfit/occfit/internal/platform/auth"
	"github.com/occfit/occfit/internal/platform/errs"
	"github.com/occfit/occfit/pkg/pagination"
)

type Handler struct {
	svc    *Service
	loader *Loader
}

func NewHandler(svc *Service, loader *Loader) *Handler {
	return &Handler{svc: svc, loader: loader}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "physician", "clinical"))
	read.GET("/job-roles", h.List)
	read.GET("/job-roles/:id", h.Get)

	write := api.Group("", auth.RequireRole("admin"))
	write.POST("/job-roles", h.Create)
	write.PUT("/job-roles/:id", h.Update)
	write.DELETE("/job-roles/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var j JobRole
	if err := c.Bind(&j); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &j); err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusCreated, j)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	j, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, j)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var j JobRole
	if err := c.Bind(&j); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	j.ID = id
	if err := h.svc.Update(c.Request().Context(), &j); err != nil {
		return errs.Echo(err)
	}
	if h.loader != nil {
		h.loader.Invalidate(id)
	}
	return c.JSON(http.StatusOK, j)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return errs.Echo(err)
	}
	if h.loader != nil {
		h.loader.Invalidate(id)
	}
	return c.NoContent(http.StatusNoContent)
}
