package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"lostfound/internal/domain/report"
	"lostfound/internal/domain/user"
	"lostfound/internal/matching"
	"lostfound/internal/pkg/response"
	"lostfound/internal/pkg/validator"
)

type MatchApprover interface {
	ApproveMatch(ctx context.Context, lostID, foundID string, admin user.Actor) (*matching.ApprovalResult, error)
}

type Handler struct {
	approver MatchApprover
}

func NewHandler(approver MatchApprover) *Handler {
	return &Handler{approver: approver}
}

// ApproveMatch handles POST /api/v1/admin/approve-match
func (h *Handler) ApproveMatch(c *gin.Context) {
	var req ApproveMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Both lost and found report ids are required", errs)
		return
	}

	actor := user.Actor{ID: c.GetString("user_id"), IsAdmin: c.GetBool("is_admin")}
	res, err := h.approver.ApproveMatch(c.Request.Context(), req.LostReportID, req.FoundReportID, actor)
	if err != nil {
		handleEngineError(c, err)
		return
	}

	stored := 0
	if res.LostNotification != nil {
		stored++
	}
	if res.FoundNotification != nil {
		stored++
	}
	response.Success(c, http.StatusOK, ApproveMatchResponse{
		Lost:                report.ReportResponseFromEntity(res.Lost),
		Found:               report.ReportResponseFromEntity(res.Found),
		NotificationsStored: stored,
	})
}

func handleEngineError(c *gin.Context, err error) {
	switch matching.KindOf(err) {
	case matching.KindForbidden:
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case matching.KindNotFound:
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case matching.KindValidationFailed:
		response.Error(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
	case matching.KindDanglingOwner:
		response.Error(c, http.StatusConflict, "DANGLING_OWNER", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to approve match")
	}
}
