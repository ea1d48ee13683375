package models

import "time"

// Announcement is a site-wide notice. HTML holds the rendered form of Message.
type Announcement struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Message   string    `gorm:"not null" json:"message"`
	HTML      string    `json:"html"`
	CreatedAt time.Time `json:"createdAt"`
}
