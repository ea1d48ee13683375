package models

import "time"

// Comment is a remark on a mod. ReplyToID points at a top-level comment of the same mod.
type Comment struct {
	ID           int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ModID        int64     `gorm:"index;not null" json:"modId"`
	UserID       *int64    `json:"userId"`
	Name         string    `gorm:"not null" json:"name"`
	Content      string    `gorm:"not null" json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
	IsReported   bool      `gorm:"not null;default:false" json:"isReported"`
	ReportReason *string   `json:"reportReason"`
	IsResolved   bool      `gorm:"not null;default:false" json:"isResolved"`
	ReplyToID    *int64    `gorm:"index" json:"replyToId"`
}

type InsertComment struct {
	ModID     int64
	UserID    *int64
	Name      string
	Content   string
	ReplyToID *int64
}
