package report

import (
	"strings"
	"time"
)

type Type string

const (
	TypeLost  Type = "lost"
	TypeFound Type = "found"
)

func (t Type) Valid() bool { return t == TypeLost || t == TypeFound }

// Opposite is the report type a report of type t is matched against.
func (t Type) Opposite() Type {
	if t == TypeLost {
		return TypeFound
	}
	return TypeLost
}

type Status string

const (
	StatusActive  Status = "active"
	StatusMatched Status = "matched"
	// resolved and closed are not produced by any workflow yet
	StatusResolved Status = "resolved"
	StatusClosed   Status = "closed"
)

type Report struct {
	ID          string
	Type        Type
	Item        ItemRef
	Location    string
	ContactInfo string
	Status      Status
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the required-field invariants, including that a found
// report always carries contact info.
func (r *Report) Validate() error {
	if !r.Type.Valid() {
		return ErrInvalidType
	}
	item := r.Item.Normalize()
	if item.Name == "" {
		return ErrItemNameRequired
	}
	if !r.Item.IsLegacy() && item.Description == "" {
		return ErrItemDescriptionRequired
	}
	if strings.TrimSpace(r.Location) == "" {
		return ErrLocationRequired
	}
	if r.Type == TypeFound && strings.TrimSpace(r.ContactInfo) == "" {
		return ErrContactInfoRequired
	}
	if r.OwnerID == "" {
		return ErrOwnerRequired
	}
	return nil
}

func (r *Report) IsActive() bool { return r.Status == StatusActive }
