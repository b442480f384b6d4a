// internal/domain/auth/dto.go
package auth

// LoginRequest for the login form
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// LoginResult is either a full session (tokens + user) or a 2FA challenge.
type LoginResult struct {
	User          *User  `json:"user,omitempty"`
	AccessToken   string `json:"accessToken,omitempty"`
	RefreshToken  string `json:"refreshToken,omitempty"`
	Requires2FA   bool   `json:"requires2FA,omitempty"`
	TempSessionID string `json:"tempSessionId,omitempty"`
}

// RegisterRequest for user registration
type RegisterRequest struct {
	Email           string `json:"email" form:"email" binding:"required,email"`
	Password        string `json:"password" form:"password" binding:"required,min=8,max=128"`
	ConfirmPassword string `json:"-" form:"confirmPassword" binding:"required,eqfield=Password"`
	FirstName       string `json:"firstName,omitempty" form:"firstName" binding:"max=50"`
	LastName        string `json:"lastName,omitempty" form:"lastName" binding:"max=50"`
}

// VerifyOTPRequest completes a 2FA login
type VerifyOTPRequest struct {
	OTP string `json:"otp" form:"otp" binding:"required,len=6,numeric"`
}

// TokenPair is what the API returns after a successful second factor.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest for password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" form:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" form:"newPassword" binding:"required,min=8,max=128,nefield=CurrentPassword"`
	ConfirmPassword string `json:"-" form:"confirmPassword" binding:"required,eqfield=NewPassword"`
}

// ForgotPasswordRequest for password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

// ResetPasswordRequest for completing password reset
type ResetPasswordRequest struct {
	Password        string `form:"password" binding:"required,min=8,max=128"`
	ConfirmPassword string `form:"confirmPassword" binding:"required,eqfield=Password"`
}

// UpdateProfileRequest for profile updates. Email is displayed but not editable.
type UpdateProfileRequest struct {
	FirstName string `json:"firstName" form:"firstName" binding:"max=50"`
	LastName  string `json:"lastName" form:"lastName" binding:"max=50"`
}

// PreferencesRequest for display preferences
type PreferencesRequest struct {
	Theme string `json:"theme" form:"theme" binding:"required,oneof=light dark"`
}

// Toggle2FARequest from the security page. Enable must be present; a missing
// field is rejected rather than read as false.
type Toggle2FARequest struct {
	Enable *bool `form:"enable" binding:"required"`
}
