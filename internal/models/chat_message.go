package models

import "time"

type ChatMessage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	UserID    int64     `gorm:"index;not null" json:"userId"`
	Message   string    `gorm:"not null" json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
