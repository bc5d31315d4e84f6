package model

import (
	"time"
)

// Tag is a named, server-scoped text snippet with authorship and usage
// metadata. The composite unique index on (server_id, tag) is the source of
// truth for uniqueness; callers may pre-check existence but the constraint is
// what prevents duplicates under concurrent creates.
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ServerID  string    `gorm:"type:varchar(64);uniqueIndex:idx_tags_server_tag;not null" json:"server_id"`
	Tag       string    `gorm:"uniqueIndex:idx_tags_server_tag;not null" json:"tag"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedBy string    `gorm:"type:varchar(64);not null" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	// Starts at 1 on creation and never drops below 1; a reset writes 1, not 0.
	UsageCount int `gorm:"not null;default:1" json:"usage_count"`
}

func (Tag) TableName() string {
	return "tags"
}
