package report

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lostfound/internal/domain/notification"
)

// Model is the row shape of the reports table. ItemLegacy is set only for
// rows that predate the structured item. SearchText is the item text
// lowercased in Go, so keyword filtering does not depend on the database's
// case folding (SQLite's LOWER only folds ASCII).
type Model struct {
	ID              string    `gorm:"column:id;primaryKey;size:36"`
	Type            string    `gorm:"column:type;size:16;not null;index:idx_reports_type_status"`
	ItemName        string    `gorm:"column:item_name"`
	ItemDescription string    `gorm:"column:item_description"`
	ItemImageURL    *string   `gorm:"column:item_image_url"`
	ItemLegacy      *string   `gorm:"column:item_legacy"`
	Location        string    `gorm:"column:location;not null"`
	ContactInfo     *string   `gorm:"column:contact_info"`
	SearchText      string    `gorm:"column:search_text"`
	Status          string    `gorm:"column:status;size:16;not null;default:active;index:idx_reports_type_status"`
	OwnerID         string    `gorm:"column:owner_id;size:36;not null;index"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Model) TableName() string { return "reports" }

func toDomain(m Model) Report {
	var item ItemRef
	if m.ItemLegacy != nil {
		item = TextItem(*m.ItemLegacy)
	} else {
		var img string
		if m.ItemImageURL != nil {
			img = *m.ItemImageURL
		}
		item = StructuredItem(m.ItemName, m.ItemDescription, img)
	}

	var contact string
	if m.ContactInfo != nil {
		contact = *m.ContactInfo
	}

	return Report{
		ID:          m.ID,
		Type:        Type(m.Type),
		Item:        item,
		Location:    m.Location,
		ContactInfo: contact,
		Status:      Status(m.Status),
		OwnerID:     m.OwnerID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toModel(r *Report) Model {
	m := Model{
		ID:        r.ID,
		Type:      string(r.Type),
		Location:  r.Location,
		Status:    string(r.Status),
		OwnerID:   r.OwnerID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}

	item := r.Item.Normalize()
	if r.Item.IsLegacy() {
		v := item.Name
		m.ItemLegacy = &v
	} else {
		m.ItemName = item.Name
		m.ItemDescription = item.Description
		if item.ImageURL != "" {
			v := item.ImageURL
			m.ItemImageURL = &v
		}
	}
	if r.ContactInfo != "" {
		v := r.ContactInfo
		m.ContactInfo = &v
	}
	m.SearchText = searchText(item)
	return m
}

// searchText joins name and description with a newline. Keywords never
// contain whitespace, so a match cannot straddle the two fields.
func searchText(item Item) string {
	return strings.ToLower(item.Name + "\n" + item.Description)
}

// Filter narrows Find. Zero fields do not filter.
type Filter struct {
	Type      Type
	Status    Status
	OwnerID   string
	ExcludeID string
	// AnyKeyword keeps reports whose item name or description contains at
	// least one of the keywords, case-insensitively.
	AnyKeyword []string
	Newest     bool
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *Repository) Find(ctx context.Context, f Filter) ([]Report, error) {
	q := r.db.WithContext(ctx).Model(&Model{})

	if f.Type != "" {
		q = q.Where("type = ?", string(f.Type))
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.ExcludeID != "" {
		q = q.Where("id <> ?", f.ExcludeID)
	}
	if len(f.AnyKeyword) > 0 {
		conds := make([]string, 0, len(f.AnyKeyword))
		args := make([]any, 0, len(f.AnyKeyword))
		for _, kw := range f.AnyKeyword {
			conds = append(conds, `search_text LIKE ? ESCAPE '\'`)
			args = append(args, "%"+likeEscaper.Replace(strings.ToLower(kw))+"%")
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	if f.Newest {
		q = q.Order("created_at DESC")
	} else {
		q = q.Order("created_at ASC")
	}

	var rows []Model
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]Report, len(rows))
	for i := range rows {
		out[i] = toDomain(rows[i])
	}
	return out, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Report, error) {
	var m Model
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rep := toDomain(m)
	return &rep, nil
}

// Create inserts a new report, assigning id, timestamps and the active status.
func (r *Repository) Create(ctx context.Context, rep *Report) error {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	if rep.Status == "" {
		rep.Status = StatusActive
	}
	m := toModel(rep)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*rep = toDomain(m)
	return nil
}

// Save writes every mutable column of an existing report. created_at is never
// rewritten.
func (r *Repository) Save(ctx context.Context, rep *Report) error {
	if rep.ID == "" {
		return r.Create(ctx, rep)
	}
	rep.UpdatedAt = time.Now()
	m := toModel(rep)
	res := r.db.WithContext(ctx).
		Model(&Model{ID: rep.ID}).
		Select("item_name", "item_description", "item_image_url", "item_legacy",
			"location", "contact_info", "search_text", "status", "updated_at").
		Updates(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// BackfillSearchText fills search_text on rows written before the column
// existed. It returns the number of rows updated.
func (r *Repository) BackfillSearchText(ctx context.Context) (int64, error) {
	var rows []Model
	err := r.db.WithContext(ctx).
		Where("search_text IS NULL OR search_text = ''").
		Find(&rows).Error
	if err != nil {
		return 0, err
	}

	var n int64
	for i := range rows {
		rep := toDomain(rows[i])
		text := searchText(rep.Item.Normalize())
		if text == "\n" {
			continue
		}
		res := r.db.WithContext(ctx).Model(&Model{}).
			Where("id = ?", rows[i].ID).
			UpdateColumn("search_text", text)
		if res.Error != nil {
			return n, res.Error
		}
		n += res.RowsAffected
	}
	return n, nil
}

// Delete removes the report and every notification that references it as
// either the recipient's report or the matched report.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&Model{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.
			Where("report_id = ? OR matched_report_id = ?", id, id).
			Delete(&notification.Notification{}).Error
	})
}
