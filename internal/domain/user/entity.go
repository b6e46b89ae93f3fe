package user

import "time"

type User struct {
	ID           string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Email        string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Phone        string    `gorm:"column:phone" json:"phone,omitempty"`
	IsAdmin      bool      `gorm:"column:is_admin;not null;default:false" json:"is_admin"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// PublicContact is the subset of a user that may be shown to a match counterpart.
type PublicContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Contact() PublicContact {
	return PublicContact{Name: u.Name, Email: u.Email}
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID      string
	IsAdmin bool
}
