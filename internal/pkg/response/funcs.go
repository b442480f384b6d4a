// internal/pkg/response/funcs.go
package response

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"console-service/internal/domain/admin"
	"console-service/internal/domain/auth"
	"console-service/internal/pkg/rbac"
)

const dateLayout = "Jan 2, 2006 15:04"

// FuncMap is shared by every page template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"date":     formatDate,
		"dateptr":  formatDatePtr,
		"badge":    admin.ActionBadge,
		"add":      func(a, b int) int { return a + b },
		"sub":      func(a, b int) int { return a - b },
		"isAdmin":  isAdmin,
		"initial":  initial,
		"lower":    strings.ToLower,
		"fieldErr": fieldErr,
		"formVal":  formVal,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "Never"
	}
	return formatDate(*t)
}

func isAdmin(u *auth.User) bool {
	return u != nil && rbac.IsAdmin(u.RoleNames())
}

func initial(u *auth.User) string {
	if u == nil {
		return ""
	}
	name := u.DisplayName()
	if name == "" {
		return ""
	}
	return strings.ToUpper(string([]rune(name)[0]))
}

// fieldErr tolerates a missing error map.
func fieldErr(errs map[string]string, key string) string {
	return errs[key]
}

func formVal(form map[string]interface{}, key string) string {
	v, ok := form[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
