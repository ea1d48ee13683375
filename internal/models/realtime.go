package models

import "strconv"

// Типи подій, які надсилаються через WebSocket.
const (
	EventAnnouncement          = "announcement"
	EventAnnouncementDeleted   = "announcement_deleted"
	EventCommentReported       = "comment_reported"
	EventUserReported          = "user_reported"
	EventUserBanned            = "user_banned"
	EventUserUnbanned          = "user_unbanned"
	EventSupportTicketCreated  = "support_ticket_created"
	EventSupportTicketResolved = "support_ticket_resolved"
	EventChat                  = "chat"
	EventError                 = "error"
)

// Topics a socket can be subscribed to.
const (
	TopicPublic = "public"
	TopicAdmin  = "admin"
)

// UserTopic is the private topic of one account.
func UserTopic(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

// Envelope is the frame written to every WebSocket client.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ChatRequest is the JSON frame a client sends over the socket.
type ChatRequest struct {
	Message string `json:"message"`
}

// IDPayload is the data of events about a deleted entity.
type IDPayload struct {
	ID int64 `json:"id"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
