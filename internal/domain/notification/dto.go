package notification

import "time"

// NotificationResponse for API responses
type NotificationResponse struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	Stage           string  `json:"stage"`
	Title           string  `json:"title"`
	Message         string  `json:"message"`
	ReportID        string  `json:"report_id"`
	MatchedReportID *string `json:"matched_report_id,omitempty"`
	Data            *Data   `json:"data,omitempty"`
	Read            bool    `json:"read"`
	CreatedAt       string  `json:"created_at"`
}

// NotificationResponseFromEntity always returns a response. When the data
// column cannot be decoded, Data is left out and the error is returned too.
func NotificationResponseFromEntity(n *Notification) (*NotificationResponse, error) {
	resp := &NotificationResponse{
		ID:              n.ID,
		Type:            string(n.Type),
		Stage:           string(n.Stage),
		Title:           n.Title,
		Message:         n.Message,
		ReportID:        n.ReportID,
		MatchedReportID: n.MatchedReportID,
		Read:            n.Read,
		CreatedAt:       n.CreatedAt.Format(time.RFC3339),
	}
	if len(n.Data) == 0 {
		return resp, nil
	}
	d, err := n.GetData()
	if err != nil {
		return resp, err
	}
	resp.Data = d
	return resp, nil
}

type NotificationListResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	UnreadCount   int64                   `json:"unread_count"`
	Total         int64                   `json:"total"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

// PushPayload is the frame sent over the real-time channel.
type PushPayload struct {
	Event          string       `json:"event"`
	NotificationID string       `json:"notification_id"`
	Type           Type         `json:"type"`
	Stage          Stage        `json:"stage"`
	Title          string       `json:"title"`
	Message        string       `json:"message"`
	ReportID       string       `json:"report_id"`
	MatchedReport  string       `json:"matched_report_id,omitempty"`
	Counterpart    *Counterpart `json:"matched_user_info,omitempty"`
}

const EventNotification = "notification"

// NewPushPayload builds the frame for n. A data decode error is returned
// alongside a payload without the counterpart.
func NewPushPayload(n *Notification) (PushPayload, error) {
	d, err := n.GetData()
	return PushPayload{
		Event:          EventNotification,
		NotificationID: n.ID,
		Type:           n.Type,
		Stage:          n.Stage,
		Title:          n.Title,
		Message:        n.Message,
		ReportID:       n.ReportID,
		MatchedReport:  n.MatchedReport(),
		Counterpart:    d.Counterpart,
	}, err
}
