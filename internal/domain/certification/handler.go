package certification

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/occfit/occfit/internal/platform/auth"
	"github.com/occfit/occfit/internal/platform/errs"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	seal := api.Group("", auth.RequireRole("admin", "physician"))
	seal.POST("/visits/:id/certifications", h.Seal)

	read := api.Group("", auth.RequireRole("admin", "physician", "clinical"))
	read.GET("/visits/:id/certifications", h.List)
	read.GET("/certifications/:id/verify", h.Verify)
}

func (h *Handler) Seal(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := auth.ActorFromEcho(c)
	if err != nil {
		return errs.Echo(err)
	}
	cert, err := h.svc.Seal(c.Request().Context(), actor, id)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusCreated, cert)
}

func (h *Handler) List(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	certs, err := h.svc.List(c.Request().Context(), id)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, certs)
}

type verifyResponse struct {
	Certification *Certification `json:"certification"`
	Valid         bool           `json:"valid"`
}

func (h *Handler) Verify(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cert, ok, err := h.svc.Verify(c.Request().Context(), id)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, verifyResponse{Certification: cert, Valid: ok})
}
