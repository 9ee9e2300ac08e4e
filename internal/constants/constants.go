package constants

// Pagination
const (
	MinPage         = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Context keys set by the auth middleware
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
	ContextKeyRole     = "role"
)

// Auth
const (
	MinPasswordLength = 8
	RoleAdmin         = "admin"
	RoleUser          = "user"
)

// Attachment uploads
const (
	UploadDir         = "uploads/tasks"
	MaxAttachmentSize = 10 << 20 // 10 MiB
)

// DateFormat is the day-granularity format used by filter query parameters.
const DateFormat = "2006-01-02"
