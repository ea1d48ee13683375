package config

import "time"

// ReleaseMode is the server.mode value for production, as gin names it.
const ReleaseMode = "release"

const (
	// Rating
	MinRating = 1
	MaxRating = 5

	// Password, bcrypt ignores bytes past 72
	MinPasswordLength = 6
	MaxPasswordLength = 72

	// HS256 key length required in release mode
	MinJWTSecretLength = 32

	// Upload
	MaxUploadSize = 5 << 20

	// WebSocket
	WSWriteWait      = 10 * time.Second
	WSPongWait       = 60 * time.Second
	WSPingPeriod     = (WSPongWait * 9) / 10
	WSMaxMessageSize = 4096
	WSSendBuffer     = 256

	// Alerts
	AlertQueueSize = 64
)

// AllowedImageTypes maps an accepted upload MIME type to the extension used on disk.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}
