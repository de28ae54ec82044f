package model

import (
	"fmt"
	"strings"
	"time"
)

// Category is the kind of document a user owns in the extranet.
type Category string

const (
	CategoryArchive   Category = "archive"
	CategoryBordereau Category = "bordereau"
	CategoryFormation Category = "formation"
	CategoryPartner   Category = "partner"
)

// Categories lists every valid Category.
var Categories = []Category{CategoryArchive, CategoryBordereau, CategoryFormation, CategoryPartner}

// ParseCategory validates a raw category value (case-insensitive).
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Document represents a stored file owned by a user.
// This is a pure domain model with no database-specific dependencies or tags.
type Document struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"user_id"`
	Category     Category  `json:"category"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	StoragePath  string    `json:"storage_path"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	CreatedAt    time.Time `json:"created_at"`
}
