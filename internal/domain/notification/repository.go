package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Save inserts a new notification, assigning its id.
func (r *Repository) Save(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Type == "" {
		n.Type = TypeMatch
	}
	if n.Stage == "" {
		n.Stage = StageCandidate
	}
	return r.db.WithContext(ctx).Create(n).Error
}

// reportExists keeps out rows whose own report is gone.
const reportExists = "EXISTS (SELECT 1 FROM reports WHERE reports.id = notifications.report_id)"

func (r *Repository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Notification, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ?", userID).
		Where(reportExists)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []Notification
	q = q.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Where(reportExists).
		Count(&count).Error
	return count, err
}

// MarkAsRead flips read for a notification owned by userID.
func (r *Repository) MarkAsRead(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// ApprovedCounterparts returns, for each of the user's reports that has an
// approved-match notification, the latest counterpart contact card. Rows whose
// data cannot be decoded are skipped and reported in the joined error, next to
// the cards that did decode.
func (r *Repository) ApprovedCounterparts(ctx context.Context, userID string, reportIDs []string) (map[string]*Counterpart, error) {
	out := make(map[string]*Counterpart)
	if len(reportIDs) == 0 {
		return out, nil
	}

	var rows []Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND stage = ? AND report_id IN ?", userID, StageApproved, reportIDs).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	var errs []error
	for i := range rows {
		d, err := rows[i].GetData()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if d.Counterpart != nil {
			out[rows[i].ReportID] = d.Counterpart
		}
	}
	return out, errors.Join(errs...)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Notification, error) {
	var n Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// DeleteOrphans removes notifications whose report or matched report no
// longer exists. Cascading deletes keep this empty; it exists for data
// written before the cascade was in place.
func (r *Repository) DeleteOrphans(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("NOT "+reportExists+
			" OR (matched_report_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM reports WHERE reports.id = notifications.matched_report_id))").
		Delete(&Notification{})
	return res.RowsAffected, res.Error
}
