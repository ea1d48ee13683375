package models

// User представляє обліковий запис на платформі.
type User struct {
	ID                int64   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username          string  `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash      string  `gorm:"not null" json:"passwordHash,omitempty"`
	IsAdmin           bool    `gorm:"not null;default:false" json:"isAdmin"`
	IsBanned          bool    `gorm:"not null;default:false" json:"isBanned"`
	ProfilePicture    *string `json:"profilePicture"`
	Bio               *string `json:"bio"`
	IsProfileApproved bool    `json:"isProfileApproved"`
	IsReported        bool    `json:"isReported"`
	ReportReason      *string `json:"reportReason"`
}

// Public returns a copy that is safe to send to clients.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// InsertUser is the input of Storage.CreateUser. The password is already hashed.
type InsertUser struct {
	Username       string
	PasswordHash   string
	IsAdmin        bool
	Bio            *string
	ProfilePicture *string
}

// UpdateUserProfile carries the editable profile fields. Empty values keep the stored ones.
type UpdateUserProfile struct {
	Bio            string
	ProfilePicture string
}
