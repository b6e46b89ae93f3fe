package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Type represents notification type
type Type string

const (
	TypeMatch Type = "match"
)

// Stage tells a candidate signal apart from an admin-confirmed match.
type Stage string

const (
	StageCandidate Stage = "candidate"
	StageApproved  Stage = "approved"
)

// Notification is addressed to UserID about their own report ReportID.
// MatchedReportID points at the counterpart report owned by someone else.
// The two notifications of a pair are independent rows.
type Notification struct {
	ID              string         `gorm:"column:id;primaryKey;size:36" json:"id"`
	UserID          string         `gorm:"column:user_id;size:36;index:idx_notifications_user_read" json:"user_id"`
	Type            Type           `gorm:"column:type;size:32;not null" json:"type"`
	Stage           Stage          `gorm:"column:stage;size:32;not null;default:candidate" json:"stage"`
	Title           string         `gorm:"column:title;not null" json:"title"`
	Message         string         `gorm:"column:message;not null" json:"message"`
	ReportID        string         `gorm:"column:report_id;size:36;not null;index" json:"report_id"`
	MatchedReportID *string        `gorm:"column:matched_report_id;size:36;index" json:"matched_report_id,omitempty"`
	Data            datatypes.JSON `gorm:"column:data" json:"data,omitempty"`
	Read            bool           `gorm:"column:is_read;not null;default:false;index:idx_notifications_user_read" json:"read"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Counterpart is the public contact card of the other party in an approved match.
type Counterpart struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	ContactInfo string `json:"contact_info,omitempty"`
}

// Data payload stored with approved-match notifications.
type Data struct {
	Counterpart *Counterpart `json:"counterpart,omitempty"`
	ItemName    string       `json:"item_name,omitempty"`
}

func (n *Notification) SetData(d *Data) error {
	if d == nil {
		n.Data = nil
		return nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	n.Data = datatypes.JSON(b)
	return nil
}

// GetData decodes the stored payload. An empty column yields an empty Data;
// a corrupt one yields an empty Data and the decode error.
func (n *Notification) GetData() (*Data, error) {
	if len(n.Data) == 0 {
		return &Data{}, nil
	}
	var d Data
	if err := json.Unmarshal(n.Data, &d); err != nil {
		return &Data{}, fmt.Errorf("notification %s: decode data: %w", n.ID, err)
	}
	return &d, nil
}

func (n *Notification) MatchedReport() string {
	if n.MatchedReportID == nil {
		return ""
	}
	return *n.MatchedReportID
}
