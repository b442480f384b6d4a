package admin

// Default page sizes for the paginated admin listings.
const (
	UsersPageSize     = 10
	AuditLogsPageSize = 20
)

// BlockUserRequest toggles a user's blocked flag
type BlockUserRequest struct {
	IsBlocked bool `json:"isBlocked"`
}

// ArchiveUserRequest toggles a user's archived flag
type ArchiveUserRequest struct {
	IsArchived bool `json:"isArchived"`
}

// RowActionForm is posted by the per-row buttons on the users table.
// Current carries the flag as displayed so the toggle target is explicit; a
// form without it is rejected.
type RowActionForm struct {
	Current *bool `form:"current" binding:"required"`
	Page    int   `form:"page"`
}
