package models

import "time"

type TicketStatus string

const (
	TicketPending    TicketStatus = "pendente"
	TicketInProgress TicketStatus = "em_andamento"
	TicketResolved   TicketStatus = "resolvido"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketPending, TicketInProgress, TicketResolved:
		return true
	}
	return false
}

type SupportTicket struct {
	ID              int64        `gorm:"primaryKey;autoIncrement:false" json:"id"`
	UserID          int64        `gorm:"index;not null" json:"userId"`
	Subject         string       `gorm:"not null" json:"subject"`
	Message         string       `gorm:"not null" json:"message"`
	CreatedAt       time.Time    `json:"createdAt"`
	Status          TicketStatus `gorm:"not null;default:pendente" json:"status"`
	ResponseMessage *string      `json:"responseMessage"`
	ResolvedAt      *time.Time   `json:"resolvedAt"`
}

type InsertSupportTicket struct {
	UserID  int64
	Subject string
	Message string
}

// UpdateSupportTicket is applied by admins. Empty fields keep the stored values.
type UpdateSupportTicket struct {
	Status          TicketStatus `json:"status" binding:"omitempty,ticketstatus"`
	ResponseMessage string       `json:"responseMessage"`
}
