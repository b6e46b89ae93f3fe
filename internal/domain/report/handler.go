package report

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"lostfound/internal/domain/user"
	"lostfound/internal/pkg/response"
	"lostfound/internal/pkg/validator"
)

// ImageUploader stores an item photo and returns the URL to keep on the report.
type ImageUploader interface {
	Upload(ctx context.Context, ownerID string, fh *multipart.FileHeader) (string, error)
}

const imageField = "itemImage"

type Handler struct {
	service  *Service
	uploader ImageUploader
}

func NewHandler(service *Service, uploader ImageUploader) *Handler {
	return &Handler{service: service, uploader: uploader}
}

func actorFrom(c *gin.Context) user.Actor {
	return user.Actor{ID: c.GetString("user_id"), IsAdmin: c.GetBool("is_admin")}
}

// CreateReport handles POST /api/v1/reports
func (h *Handler) CreateReport(c *gin.Context) {
	actor := actorFrom(c)
	if actor.ID == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	var req CreateReportRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid report data", errs)
		return
	}

	imageURL, ok := h.uploadImage(c, actor.ID)
	if !ok {
		return
	}

	rep, err := h.service.Create(c.Request.Context(), actor.ID, req, imageURL)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, ReportResponseFromEntity(rep))
}

// ListMyReports handles GET /api/v1/reports
func (h *Handler) ListMyReports(c *gin.Context) {
	actor := actorFrom(c)
	list, err := h.service.ListMine(c.Request.Context(), actor.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ReportListResponse{Reports: list, Total: len(list)})
}

// GetReport handles GET /api/v1/reports/:id
func (h *Handler) GetReport(c *gin.Context) {
	rep, err := h.service.Get(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ReportResponseFromEntity(rep))
}

// UpdateReport handles PUT /api/v1/reports/:id
func (h *Handler) UpdateReport(c *gin.Context) {
	actor := actorFrom(c)

	var req UpdateReportRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid report data", errs)
		return
	}

	imageURL, ok := h.uploadImage(c, actor.ID)
	if !ok {
		return
	}

	rep, err := h.service.Update(c.Request.Context(), c.Param("id"), actor, req, imageURL)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ReportResponseFromEntity(rep))
}

// DeleteReport handles DELETE /api/v1/reports/:id and /api/v1/admin/reports/:id
func (h *Handler) DeleteReport(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

// GetMatches handles GET /api/v1/reports/:id/matches
func (h *Handler) GetMatches(c *gin.Context) {
	list, err := h.service.Matches(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := ReportResponsesFromEntities(list)
	response.Success(c, http.StatusOK, ReportListResponse{Reports: out, Total: len(out)})
}

// ListAllReports handles GET /api/v1/admin/reports
func (h *Handler) ListAllReports(c *gin.Context) {
	f := Filter{Type: Type(c.Query("type")), Status: Status(c.Query("status"))}
	if f.Type != "" && !f.Type.Valid() {
		response.Error(c, http.StatusBadRequest, "INVALID_TYPE", "type must be lost or found")
		return
	}
	list, err := h.service.ListAll(c.Request.Context(), f)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := ReportResponsesFromEntities(list)
	response.Success(c, http.StatusOK, ReportListResponse{Reports: out, Total: len(out)})
}

// uploadImage stores the optional itemImage file. It writes the error
// response itself and returns ok=false when the upload fails.
func (h *Handler) uploadImage(c *gin.Context, ownerID string) (string, bool) {
	fh, err := c.FormFile(imageField)
	if err != nil {
		// no file in the request
		return "", true
	}
	if h.uploader == nil {
		response.Error(c, http.StatusServiceUnavailable, "UPLOAD_DISABLED", "Image uploads are not configured")
		return "", false
	}
	url, err := h.uploader.Upload(c.Request.Context(), ownerID, fh)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusBadRequest, "UPLOAD_FAILED", err.Error())
		return "", false
	}
	return url, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Report not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not authorized for this report")
	case IsValidation(err):
		response.Error(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Request failed")
	}
}
