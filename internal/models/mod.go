package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Mod is a downloadable game modification listed on the site.
type Mod struct {
	ID          int64                       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title       string                      `gorm:"not null" json:"title"`
	Description string                      `gorm:"not null" json:"description"`
	ImageURL    string                      `gorm:"not null" json:"imageUrl"`
	DownloadURL string                      `gorm:"not null" json:"downloadUrl"`
	CreatedAt   time.Time                   `json:"createdAt"`
	Rating      int64                       `gorm:"not null;default:0" json:"rating"`
	NumRatings  int64                       `gorm:"not null;default:0" json:"numRatings"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
}

// AverageRating is the mean score, 0 while nobody has rated the mod.
func (m Mod) AverageRating() float64 {
	if m.NumRatings == 0 {
		return 0
	}
	return float64(m.Rating) / float64(m.NumRatings)
}

func (m Mod) MarshalJSON() ([]byte, error) {
	type plain Mod
	if m.Tags == nil {
		m.Tags = datatypes.JSONSlice[string]{}
	}
	return json.Marshal(struct {
		plain
		AverageRating float64 `json:"averageRating"`
	}{plain(m), m.AverageRating()})
}

type InsertMod struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	ImageURL    string   `json:"imageUrl" binding:"required"`
	DownloadURL string   `json:"downloadUrl" binding:"required"`
	Tags        []string `json:"tags"`
}

// UpdateMod replaces the non-empty fields of a mod. A nil Tags keeps the current tags.
type UpdateMod struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	DownloadURL string   `json:"downloadUrl"`
	Tags        []string `json:"tags"`
}
