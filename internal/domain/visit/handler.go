package visit

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/occfit/occfit/internal/domain/examrecord"
	"github.com/occfit/occfit/internal/domain/station"
	"github.com/occfit/occfit/internal/platform/auth"
	"github.com/occfit/occfit/internal/platform/errs"
	"github.com/occfit/occfit/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "physician", "clinical",
		"audiometry", "laboratory", "radiology", "psychology"))
	read.GET("/visits", h.List)
	read.GET("/visits/:id", h.Get)
	read.GET("/visits/:id/completion", h.Completion)

	manage := api.Group("", auth.RequireRole("admin", "clinical", "physician"))
	manage.POST("/visits", h.Admit)
	manage.POST("/visits/:id/queue", h.MarkInQueue)
	manage.POST("/visits/:id/start", h.MarkInProgress)
	manage.POST("/visits/:id/reopen", h.Reopen)
	manage.POST("/visits/:id/override", h.Override)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.DELETE("/visits/:id", h.Delete)
}

type admitRequest struct {
	PatientID  uuid.UUID              `json:"patient_id"`
	EmployerID uuid.UUID              `json:"employer_id"`
	JobRoleID  uuid.UUID              `json:"job_role_id"`
	WorkOrder  *string                `json:"work_order,omitempty"`
	Exams      []examrecord.Procedure `json:"exams"`
}

type admitResponse struct {
	Visit   *Visit                   `json:"visit"`
	Records []*examrecord.ExamRecord `json:"records"`
}

func (h *Handler) Admit(c echo.Context) error {
	actor, err := auth.ActorFromEcho(c)
	if err != nil {
		return errs.Echo(err)
	}
	var req admitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v := &Visit{
		PatientID:  req.PatientID,
		EmployerID: req.EmployerID,
		JobRoleID:  req.JobRoleID,
		WorkOrder:  req.WorkOrder,
	}
	records, err := h.svc.Admit(c.Request().Context(), actor, v, req.Exams)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusCreated, admitResponse{Visit: v, Records: records})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	if pid := c.QueryParam("patient_id"); pid != "" {
		patientID, err := uuid.Parse(pid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
		if err != nil {
			return errs.Echo(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Completion(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	complete, err := h.svc.Completion(c.Request().Context(), id)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"complete": complete})
}

type versionRequest struct {
	VersionID int `json:"version_id"`
}

func (h *Handler) MarkInQueue(c echo.Context) error {
	return h.simpleTransition(c, func(actor station.Actor, id uuid.UUID, version int) (*Visit, error) {
		return h.svc.MarkInQueue(c.Request().Context(), actor, id, version)
	})
}

func (h *Handler) MarkInProgress(c echo.Context) error {
	return h.simpleTransition(c, func(actor station.Actor, id uuid.UUID, version int) (*Visit, error) {
		return h.svc.MarkInProgress(c.Request().Context(), actor, id, version)
	})
}

func (h *Handler) Reopen(c echo.Context) error {
	return h.simpleTransition(c, func(actor station.Actor, id uuid.UUID, version int) (*Visit, error) {
		return h.svc.Reopen(c.Request().Context(), actor, id, version)
	})
}

type overrideRequest struct {
	VersionID int    `json:"version_id"`
	Outcome   string `json:"outcome"`
	Rationale string `json:"rationale"`
}

func (h *Handler) Override(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := auth.ActorFromEcho(c)
	if err != nil {
		return errs.Echo(err)
	}
	var req overrideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.Override(c.Request().Context(), actor, id, req.VersionID,
		AptitudeState(req.Outcome), req.Rationale)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := auth.ActorFromEcho(c)
	if err != nil {
		return errs.Echo(err)
	}
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		return errs.Echo(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) simpleTransition(c echo.Context, fn func(actor station.Actor, id uuid.UUID, version int) (*Visit, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := auth.ActorFromEcho(c)
	if err != nil {
		return errs.Echo(err)
	}
	var req versionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := fn(actor, id, req.VersionID)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, v)
}
