package model

import (
	"time"

	"github.com/lib/pq"
)

const (
	LoginMethodCredentials = "credentials"
	LoginMethodRefresh     = "refresh"
	LoginMethodGoogle      = "google"
)

type User struct {
	UUID         string         `db:"uuid" json:"id"`
	Email        string         `db:"email" json:"email"`
	FullName     string         `db:"full_name" json:"full_name"`
	PasswordHash string         `db:"password_hash" json:"-"`
	GoogleID     *string        `db:"google_id" json:"-"`
	IsActive     bool           `db:"is_active" json:"is_active"`
	Roles        pq.StringArray `db:"roles" json:"roles"`
	Permissions  pq.StringArray `db:"permissions" json:"permissions"`
	Metadata     Metadata       `db:"metadata" json:"metadata"`
	LastLogin    *time.Time     `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// Clone : копия без общих слайсов и map
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = append(pq.StringArray(nil), u.Roles...)
	c.Permissions = append(pq.StringArray(nil), u.Permissions...)
	c.Metadata = u.Metadata.Clone()
	if u.GoogleID != nil {
		id := *u.GoogleID
		c.GoogleID = &id
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}
