package verdict

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/occfit/occfit/internal/domain/visit"
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
	g := api.Group("", auth.RequireRole("admin", "physician"))
	g.GET("/visits/:id/verdict", h.Preview)
	g.POST("/visits/:id/verdict/accept", h.Accept)
}

func (h *Handler) Preview(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := auth.ActorFromEcho(c)
	if err != nil {
		return errs.Echo(err)
	}
	verdict, err := h.svc.Preview(c.Request().Context(), actor, id)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, verdict)
}

type acceptRequest struct {
	VersionID int    `json:"version_id"`
	Note      string `json:"note,omitempty"`
}

type acceptResponse struct {
	Visit   *visit.Visit `json:"visit"`
	Verdict *Verdict     `json:"verdict"`
}

func (h *Handler) Accept(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := auth.ActorFromEcho(c)
	if err != nil {
		return errs.Echo(err)
	}
	var req acceptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, verdict, err := h.svc.Accept(c.Request().Context(), actor, id, req.VersionID, req.Note)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, acceptResponse{Visit: v, Verdict: verdict})
}
