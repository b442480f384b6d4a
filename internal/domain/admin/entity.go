// internal/domain/admin/entity.go
package admin

import (
	"strings"
	"time"
)

// AuditActor is the user summary embedded in each audit entry.
type AuditActor struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// AuditLog is an immutable record of one action taken against a resource.
type AuditLog struct {
	ID         string      `json:"id"`
	Action     string      `json:"action"`
	Resource   string      `json:"resource"`
	ResourceID *string     `json:"resourceId"`
	IPAddress  string      `json:"ipAddress"`
	UserAgent  string      `json:"userAgent"`
	CreatedAt  time.Time   `json:"createdAt"`
	User       *AuditActor `json:"user,omitempty"`
}

// DashboardStats is the admin overview payload.
type DashboardStats struct {
	TotalUsers          int `json:"totalUsers"`
	ActiveUsers         int `json:"activeUsers"`
	NewUsersThisMonth   int `json:"newUsersThisMonth"`
	BlockedUsers        int `json:"blockedUsers"`
	TotalRoles          int `json:"totalRoles"`
	TotalPermissions    int `json:"totalPermissions"`
	TotalSessions       int `json:"totalSessions"`
	RecentLoginAttempts int `json:"recentLoginAttempts"`
}

// Badge variants used when rendering audit actions.
const (
	BadgeInfo    = "info"
	BadgeSuccess = "success"
	BadgeWarning = "warning"
	BadgeDanger  = "danger"
	BadgeDefault = "default"
)

// ActionBadge maps an audit action verb onto a display variant.
func ActionBadge(action string) string {
	switch strings.ToUpper(action) {
	case "LOGIN", "LOGOUT":
		return BadgeInfo
	case "CREATE":
		return BadgeSuccess
	case "UPDATE":
		return BadgeWarning
	case "DELETE":
		return BadgeDanger
	default:
		return BadgeDefault
	}
}
