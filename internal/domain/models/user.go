// internal/domain/models/user.go
package models

import "time"

// User statuses. A pending user can exist in the directory but can
// never establish a session until an administrator approves them.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// User roles. The stored role is assigned once at registration; admin
// membership is derived from the configured allow-list at login time
// and is never written back to the record.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a directory record. The ID is an opaque string generated at
// registration so the same document shape works in both the local
// JSON store and the hosted collection store.
type User struct {
	ID           string `bson:"_id" json:"id"`
	Name         string `bson:"name" json:"name"`
	NameCI       string `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped
	Division     string `bson:"division" json:"division"`
	Email        string `bson:"email" json:"email"`
	// PasswordHash is a bcrypt hash; clear-text passwords are never
	// stored. Feature handlers must expose User through a view type,
	// never this struct, so the hash cannot leak into a response.
	PasswordHash string `bson:"password_hash" json:"password_hash"`
	Status       string `bson:"status" json:"status"` // pending | approved
	Role         string `bson:"role" json:"role"`     // admin | user

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsApproved reports whether the user may establish a session.
func (u *User) IsApproved() bool {
	return u.Status == StatusApproved
}
