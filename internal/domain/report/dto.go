package report

import (
	"time"

	"lostfound/internal/domain/notification"
)

// CreateReportRequest accepts either JSON or multipart form fields. The form
// names follow the web client ("item.name", "item.description").
type CreateReportRequest struct {
	Type            Type   `json:"type" form:"type" validate:"required,oneof=lost found"`
	ItemName        string `json:"item_name" form:"item.name" validate:"required,max=200"`
	ItemDescription string `json:"item_description" form:"item.description" validate:"required,max=4000"`
	Location        string `json:"location" form:"location" validate:"required,max=500"`
	ContactInfo     string `json:"contact_info" form:"contactInfo" validate:"required_if=Type found,max=500"`
}

// UpdateReportRequest is a partial edit; empty fields keep their value.
type UpdateReportRequest struct {
	ItemName        string `json:"item_name" form:"item.name" validate:"max=200"`
	ItemDescription string `json:"item_description" form:"item.description" validate:"max=4000"`
	Location        string `json:"location" form:"location" validate:"max=500"`
	ContactInfo     string `json:"contact_info" form:"contactInfo" validate:"max=500"`
}

type ReportResponse struct {
	ID          string                    `json:"id"`
	Type        Type                      `json:"type"`
	Item        Item                      `json:"item"`
	Location    string                    `json:"location"`
	ContactInfo string                    `json:"contact_info,omitempty"`
	Status      Status                    `json:"status"`
	OwnerID     string                    `json:"owner_id"`
	MatchedUser *notification.Counterpart `json:"matched_user,omitempty"`
	CreatedAt   string                    `json:"created_at"`
	UpdatedAt   string                    `json:"updated_at"`
}

func ReportResponseFromEntity(r *Report) *ReportResponse {
	return &ReportResponse{
		ID:          r.ID,
		Type:        r.Type,
		Item:        r.Item.Normalize(),
		Location:    r.Location,
		ContactInfo: r.ContactInfo,
		Status:      r.Status,
		OwnerID:     r.OwnerID,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   r.UpdatedAt.Format(time.RFC3339),
	}
}

func ReportResponsesFromEntities(list []Report) []*ReportResponse {
	out := make([]*ReportResponse, len(list))
	for i := range list {
		out[i] = ReportResponseFromEntity(&list[i])
	}
	return out
}

type ReportListResponse struct {
	Reports []*ReportResponse `json:"reports"`
	Total   int               `json:"total"`
}
