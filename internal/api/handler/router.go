package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"modhub/backend/internal/auth"
)

// NewRouter wires every route of the API, the upload file server and /ws.
func NewRouter(h *Handler) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(h.Recovery(), h.RequestLogger(), h.Authenticate())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/ws", h.ServeWebSocket)
	r.Static(h.Uploader.PublicPrefix(), h.Uploader.Dir())

	api := r.Group("/api")

	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.GET("/user", h.RequireLogin(), h.CurrentUser)

	api.GET("/mods", h.Can(auth.ResourceMod, auth.ActionRead), h.ListMods)
	api.GET("/mods/search", h.Can(auth.ResourceMod, auth.ActionRead), h.SearchMods)
	api.GET("/mods/:id", h.Can(auth.ResourceMod, auth.ActionRead), h.GetMod)
	api.POST("/mods", h.Can(auth.ResourceMod, auth.ActionCreate), h.CreateMod)
	api.PUT("/mods/:id", h.Can(auth.ResourceMod, auth.ActionUpdate), h.UpdateMod)
	api.DELETE("/mods/:id", h.Can(auth.ResourceMod, auth.ActionDelete), h.DeleteMod)
	api.POST("/mods/:id/rate", h.Can(auth.ResourceMod, auth.ActionRate), h.RateMod)
	api.GET("/mods/:id/comments", h.Can(auth.ResourceComment, auth.ActionRead), h.ListComments)
	api.POST("/mods/:id/comments", h.Can(auth.ResourceComment, auth.ActionCreate), h.CreateComment)

	api.GET("/comments/reported", h.Can(auth.ResourceComment, auth.ActionModerate), h.ReportedComments)
	api.POST("/comments/:id/report", h.Can(auth.ResourceComment, auth.ActionReport), h.ReportComment)
	api.PUT("/comments/:id/resolve", h.Can(auth.ResourceComment, auth.ActionModerate), h.ResolveComment)
	api.GET("/comments/:id/replies", h.Can(auth.ResourceComment, auth.ActionRead), h.CommentReplies)

	api.GET("/announcements", h.Can(auth.ResourceAnnouncement, auth.ActionRead), h.ListAnnouncements)
	api.POST("/announcements", h.Can(auth.ResourceAnnouncement, auth.ActionCreate), h.CreateAnnouncement)
	api.DELETE("/announcements/:id", h.Can(auth.ResourceAnnouncement, auth.ActionDelete), h.DeleteAnnouncement)

	api.GET("/users", h.Can(auth.ResourceUser, auth.ActionRead), h.ListUsers)
	api.GET("/users/reported", h.Can(auth.ResourceUser, auth.ActionRead), h.ReportedUsers)
	api.PUT("/users/:id/ban", h.Can(auth.ResourceUser, auth.ActionModerate), h.BanUser)
	api.PUT("/users/:id/unban", h.Can(auth.ResourceUser, auth.ActionModerate), h.UnbanUser)
	api.PUT("/users/:id/approve", h.Can(auth.ResourceUser, auth.ActionModerate), h.ApproveUser)
	api.PUT("/users/:id/profile", h.Can(auth.ResourceUser, auth.ActionUpdate), h.UpdateProfile)
	api.POST("/users/:id/report", h.Can(auth.ResourceUser, auth.ActionReport), h.ReportUser)

	api.POST("/support", h.Can(auth.ResourceSupport, auth.ActionCreate), h.CreateSupportTicket)
	api.GET("/support", h.Can(auth.ResourceSupport, auth.ActionModerate), h.ListSupportTickets)
	api.GET("/support/:id", h.Can(auth.ResourceSupport, auth.ActionRead), h.GetSupportTicket)
	api.PUT("/support/:id", h.Can(auth.ResourceSupport, auth.ActionModerate), h.UpdateSupportTicket)

	api.GET("/chat", h.Can(auth.ResourceChat, auth.ActionRead), h.ChatHistory)
	api.POST("/upload", h.Can(auth.ResourceUpload, auth.ActionCreate), h.Upload)

	return r
}
