package examrecord

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/occfit/occfit/internal/platform/auth"
	"github.com/occfit/occfit/internal/platform/errs"
)

// DocumentStore is the slice of the document store the handler needs for
// attachments. The record only keeps the opaque reference.
type DocumentStore interface {
	Put(ctx context.Context, data []byte, contentType, fileName string) (string, error)
}

type Handler struct {
	svc  *Service
	docs DocumentStore
}

func NewHandler(svc *Service, docs DocumentStore) *Handler {
	return &Handler{svc: svc, docs: docs}
}

var stationRoles = []string{"clinical", "audiometry", "laboratory", "radiology", "psychology", "physician", "admin"}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(stationRoles...))
	g.GET("/visits/:visit_id/exam-records", h.ListForVisit)
	g.GET("/exam-records/:id", h.Get)
	g.PATCH("/exam-records/:id/raw", h.WriteRaw)
	g.POST("/exam-records/:id/finalize", h.Finalize)
	g.POST("/exam-records/:id/reopen", h.Reopen)
	g.POST("/exam-records/:id/notes", h.AppendNote)
	g.POST("/exam-records/:id/document", h.AttachDocument)
}

func (h *Handler) ListForVisit(c echo.Context) error {
	visitID, err := uuid.Parse(c.Param("visit_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid visit id")
	}
	actor, err := auth.ActorFromEcho(c)
	if err != nil {
		return errs.Echo(err)
	}
	records, err := h.svc.ListVisible(c.Request().Context(), actor, visitID)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, records)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := auth.ActorFromEcho(c)
	if err != nil {
		return errs.Echo(err)
	}
	e, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, e)
}

type writeRawRequest struct {
	VersionID int             `json:"version_id"`
	Raw       json.RawMessage `json:"raw"`
}

func (h *Handler) WriteRaw(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := auth.ActorFromEcho(c)
	if err != nil {
		return errs.Echo(err)
	}
	var req writeRawRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Raw) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "raw patch is required")
	}
	e, err := h.svc.WriteRaw(c.Request().Context(), actor, id, req.VersionID, req.Raw)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, e)
}

type versionRequest struct {
	VersionID int `json:"version_id"`
}

func (h *Handler) Finalize(c echo.Context) error {
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
	e, err := h.svc.Finalize(c.Request().Context(), actor, id, req.VersionID)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) Reopen(c echo.Context) error {
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
	e, err := h.svc.Reopen(c.Request().Context(), actor, id, req.VersionID)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, e)
}

type noteRequest struct {
	VersionID int    `json:"version_id"`
	Text      string `json:"text"`
}

func (h *Handler) AppendNote(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := auth.ActorFromEcho(c)
	if err != nil {
		return errs.Echo(err)
	}
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e, err := h.svc.AppendNote(c.Request().Context(), actor, id, req.VersionID, req.Text)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) AttachDocument(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := auth.ActorFromEcho(c)
	if err != nil {
		return errs.Echo(err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	version, err := parseVersionForm(c)
	if err != nil {
		return err
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}

	ref, err := h.docs.Put(c.Request().Context(), data,
		file.Header.Get("Content-Type"), file.Filename)
	if err != nil {
		return errs.Echo(err)
	}

	e, err := h.svc.AttachDocument(c.Request().Context(), actor, id, version, ref)
	if err != nil {
		return errs.Echo(err)
	}
	return c.JSON(http.StatusOK, e)
}

func parseVersionForm(c echo.Context) (int, error) {
	v := c.FormValue("version_id")
	if v == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "version_id is required")
	}
	version, err := strconv.Atoi(v)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid version_id")
	}
	return version, nil
}
