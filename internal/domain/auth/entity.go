// internal/domain/auth/entity.go
package auth

import "time"

// User is the identity projection returned by the remote API.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"firstName,omitempty"`
	LastName     string     `json:"lastName,omitempty"`
	IsActive     bool       `json:"isActive"`
	IsArchived   bool       `json:"isArchived"`
	IsBlocked    bool       `json:"isBlocked"`
	Is2FAEnabled bool       `json:"is2FAEnabled"`
	Theme        string     `json:"theme,omitempty"` // light, dark
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	Roles        []UserRole `json:"roles,omitempty"`
}

// UserRole is the join record the API embeds for each assigned role.
type UserRole struct {
	Role Role `json:"role"`
}

type Role struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	DisplayName string           `json:"displayName"`
	Description string           `json:"description,omitempty"`
	IsSystem    bool             `json:"isSystem"`
	IsActive    bool             `json:"isActive"`
	Permissions []RolePermission `json:"permissions,omitempty"`
	Count       *RoleCount       `json:"_count,omitempty"`
}

// RoleCount carries the aggregate counts shown in admin listings.
type RoleCount struct {
	Users       int `json:"users"`
	Permissions int `json:"permissions"`
}

type RolePermission struct {
	Permission Permission `json:"permission"`
}

type Permission struct {
	ID          string `json:"id"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
}

// Session is one authenticated device/browser instance.
type Session struct {
	ID           string    `json:"id"`
	IPAddress    string    `json:"ipAddress"`
	UserAgent    string    `json:"userAgent"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RoleNames flattens the assigned roles into their machine keys.
func (u *User) RoleNames() []string {
	if u == nil {
		return nil
	}
	names := make([]string, 0, len(u.Roles))
	for _, ur := range u.Roles {
		names = append(names, ur.Role.Name)
	}
	return names
}

// DisplayName returns "First Last", falling back to the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Email
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		cp.LastLoginAt = &t
	}
	if u.Roles != nil {
		cp.Roles = make([]UserRole, len(u.Roles))
		for i, ur := range u.Roles {
			cp.Roles[i] = ur
			if ur.Role.Permissions != nil {
				cp.Roles[i].Role.Permissions = append([]RolePermission(nil), ur.Role.Permissions...)
			}
			if ur.Role.Count != nil {
				c := *ur.Role.Count
				cp.Roles[i].Role.Count = &c
			}
		}
	}
	return &cp
}
