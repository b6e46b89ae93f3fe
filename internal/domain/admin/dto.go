package admin

import "lostfound/internal/domain/report"

type ApproveMatchRequest struct {
	LostReportID  string `json:"lost_report_id" validate:"required"`
	FoundReportID string `json:"found_report_id" validate:"required"`
}

type ApproveMatchResponse struct {
	Lost                *report.ReportResponse `json:"lost_report"`
	Found               *report.ReportResponse `json:"found_report"`
	NotificationsStored int                    `json:"notifications_stored"`
}
