// internal/domain/models/submission.go
package models

import "time"

// Image is one stored submission image. Path is the blob-store key and
// Ref is the reference the blob store handed back (a URL for hosted
// storage, a serve path for local storage).
type Image struct {
	Path        string `bson:"path" json:"path"`
	Ref         string `bson:"ref" json:"ref"`
	ContentType string `bson:"content_type" json:"content_type"`
	Size        int64  `bson:"size" json:"size"`
}

// Submission is one image+description entry.
//
// UserName and UserDivision are a snapshot of the owner taken when the
// submission is created: copy-on-create, never refreshed. Do not join
// against the live User record for display.
type Submission struct {
	ID           string  `bson:"_id" json:"id"`
	UserID       string  `bson:"user_id" json:"userId"`
	UserName     string  `bson:"user_name" json:"userName"`
	UserDivision string  `bson:"user_division" json:"userDivision"`
	Description  string  `bson:"description" json:"description"`
	Images       []Image `bson:"images" json:"images"`

	// Creation or last-edit instant; admin edits refresh it.
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}
