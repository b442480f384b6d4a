package account

import (
	"net/http"
	"net/url"
	"testing"

	"console-service/internal/domain/auth"
	"console-service/internal/handlers/handlertest"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func setup(t *testing.T) *handlertest.Harness {
	t.Helper()
	h := handlertest.New(t)
	ah := NewAccountHandler(h.Client, h.Render, zap.NewNop())

	h.Engine.GET("/login", append(h.Auth.Guest(), func(c *gin.Context) {
		h.Render.HTML(c, http.StatusOK, "login.tmpl", gin.H{"Title": "Sign in", "Form": gin.H{}})
	})...)

	dash := h.Engine.Group("/dashboard", h.Auth.Protected()...)
	dash.GET("", ah.Dashboard)
	dash.GET("/profile", ah.ShowProfile)
	dash.POST("/profile", ah.UpdateProfile)
	dash.POST("/profile/preferences", ah.UpdatePreferences)
	dash.GET("/security", ah.ShowSecurity)
	dash.POST("/security/password", ah.ChangePassword)
	dash.POST("/security/2fa", ah.Toggle2FA)
	dash.GET("/sessions", ah.ListSessions)
	dash.POST("/sessions/:id/revoke", ah.RevokeSession)
	dash.POST("/sessions/revoke-all", ah.RevokeAll)
	return h
}

func ada() *auth.User {
	return &auth.User{
		ID:        "u1",
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		IsActive:  true,
		Roles:     []auth.UserRole{{Role: auth.Role{ID: "r1", Name: "user", DisplayName: "User"}}},
	}
}

func TestDashboardShowsCurrentUser(t *testing.T) {
	h := setup(t)
	h.SignIn(t, ada())

	w := h.Get("/dashboard")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	handlertest.ExpectBody(t, w, "Welcome back, Ada Lovelace", "ada@example.com", "2FA: Disabled", "Last login: Never")
}

func TestDashboardRequiresSignIn(t *testing.T) {
	h := setup(t)
	for _, path := range []string{"/dashboard", "/dashboard/profile", "/dashboard/security", "/dashboard/sessions"} {
		handlertest.ExpectRedirect(t, h.Get(path), "/login")
	}
	if len(h.API.Find(http.MethodGet, "/profile/sessions")) != 0 {
		t.Fatalf("anonymous visitors must not trigger data loads")
	}
}

func TestUpdateProfileRefreshesUser(t *testing.T) {
	h := setup(t)
	h.SignIn(t, ada())
	h.API.Handle("PATCH /profile", func(w http.ResponseWriter, r *http.Request) {
		u := ada()
		u.FirstName = "Augusta"
		h.SetUser(u)
		handlertest.OK(w, map[string]interface{}{"user": u})
	})

	w := h.Get("/dashboard/profile")
	handlertest.ExpectBody(t, w, `value="Ada"`, `value="ada@example.com"`, "Email cannot be changed")

	w = h.PostForm("/dashboard/profile", url.Values{"firstName": {"Augusta"}, "lastName": {"Lovelace"}})
	handlertest.ExpectRedirect(t, w, "/dashboard/profile")

	body := h.API.Find(http.MethodPatch, "/profile")[0].Body
	if body["firstName"] != "Augusta" || body["lastName"] != "Lovelace" {
		t.Fatalf("unexpected profile body %v", body)
	}
	if _, sent := body["email"]; sent {
		t.Fatalf("email must never be sent")
	}

	handlertest.ExpectBody(t, h.Follow(t, w), msgProfileUpdated, `value="Augusta"`)
}

func TestUpdateProfileFailureKeepsInput(t *testing.T) {
	h := setup(t)
	h.SignIn(t, ada())
	h.API.Handle("PATCH /profile", func(w http.ResponseWriter, r *http.Request) {
		handlertest.Fail(w, http.StatusInternalServerError, "")
	})

	w := h.PostForm("/dashboard/profile", url.Values{"firstName": {"Augusta"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	handlertest.ExpectBody(t, w, msgProfileFailed, `value="Augusta"`)
}

func TestUpdatePreferences(t *testing.T) {
	h := setup(t)
	h.SignIn(t, ada())
	h.API.Handle("PATCH /profile/preferences", func(w http.ResponseWriter, r *http.Request) {
		u := ada()
		u.Theme = "dark"
		h.SetUser(u)
		handlertest.OK(w, nil)
	})

	w := h.PostForm("/dashboard/profile/preferences", url.Values{"theme": {"neon"}})
	handlertest.ExpectRedirect(t, w, "/dashboard/profile")
	handlertest.ExpectBody(t, h.Follow(t, w), "Theme must be one of: light dark")
	if len(h.API.Find(http.MethodPatch, "/profile/preferences")) != 0 {
		t.Fatalf("invalid theme must not reach the API")
	}

	w = h.PostForm("/dashboard/profile/preferences", url.Values{"theme": {"dark"}})
	handlertest.ExpectRedirect(t, w, "/dashboard/profile")
	handlertest.ExpectBody(t, h.Follow(t, w), msgThemeUpdated, `<option value="dark" selected>`)
}

func TestChangePassword(t *testing.T) {
	h := setup(t)
	h.SignIn(t, ada())
	h.API.Handle("POST /auth/change-password", func(w http.ResponseWriter, r *http.Request) {
		handlertest.OK(w, nil)
	})

	w := h.PostForm("/dashboard/security/password", url.Values{
		"currentPassword": {"OldPassw0rd"}, "newPassword": {"NewPassw0rd"}, "confirmPassword": {"Mismatch1"},
	})
	handlertest.ExpectBody(t, w, "Passwords do not match")

	w = h.PostForm("/dashboard/security/password", url.Values{
		"currentPassword": {"OldPassw0rd"}, "newPassword": {"OldPassw0rd"}, "confirmPassword": {"OldPassw0rd"},
	})
	handlertest.ExpectBody(t, w, "New password must differ from the current one")
	if len(h.API.Find(http.MethodPost, "/auth/change-password")) != 0 {
		t.Fatalf("invalid forms must not reach the API")
	}

	w = h.PostForm("/dashboard/security/password", url.Values{
		"currentPassword": {"OldPassw0rd"}, "newPassword": {"NewPassw0rd"}, "confirmPassword": {"NewPassw0rd"},
	})
	handlertest.ExpectRedirect(t, w, "/dashboard/security")
	handlertest.ExpectBody(t, h.Follow(t, w), msgPasswordChanged)

	body := h.API.Find(http.MethodPost, "/auth/change-password")[0].Body
	if body["currentPassword"] != "OldPassw0rd" || body["newPassword"] != "NewPassw0rd" {
		t.Fatalf("unexpected change-password body %v", body)
	}
}

func TestChangePasswordServerMessage(t *testing.T) {
	h := setup(t)
	h.SignIn(t, ada())
	h.API.Handle("POST /auth/change-password", func(w http.ResponseWriter, r *http.Request) {
		handlertest.Fail(w, http.StatusBadRequest, "Current password is incorrect")
	})

	w := h.PostForm("/dashboard/security/password", url.Values{
		"currentPassword": {"wrong"}, "newPassword": {"NewPassw0rd"}, "confirmPassword": {"NewPassw0rd"},
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	handlertest.ExpectBody(t, w, "Current password is incorrect")
}

func TestToggle2FA(t *testing.T) {
	h := setup(t)
	h.SignIn(t, ada())
	h.API.Handle("POST /auth/2fa/enable", func(w http.ResponseWriter, r *http.Request) {
		u := ada()
		u.Is2FAEnabled = true
		h.SetUser(u)
		handlertest.OK(w, nil)
	})

	handlertest.ExpectBody(t, h.Get("/dashboard/security"), "Enable 2FA", `name="enable" value="true"`)

	w := h.PostForm("/dashboard/security/2fa", url.Values{"enable": {"true"}})
	handlertest.ExpectRedirect(t, w, "/dashboard/security")
	handlertest.ExpectBody(t, h.Follow(t, w), "Two-factor authentication enabled", "Disable 2FA")
	if len(h.API.Find(http.MethodPost, "/auth/2fa/enable")) != 1 {
		t.Fatalf("expected one enable call")
	}
}

func TestToggle2FAFailure(t *testing.T) {
	h := setup(t)
	h.SignIn(t, ada())
	h.API.Handle("POST /auth/2fa/disable", func(w http.ResponseWriter, r *http.Request) {
		handlertest.Fail(w, http.StatusInternalServerError, "")
	})

	w := h.PostForm("/dashboard/security/2fa", url.Values{"enable": {"false"}})
	handlertest.ExpectBody(t, h.Follow(t, w), msgToggleFailed)
}

func TestToggle2FARequiresChoice(t *testing.T) {
	h := setup(t)
	h.SignIn(t, ada())
	h.API.Handle("POST /auth/2fa/disable", func(w http.ResponseWriter, r *http.Request) {
		handlertest.OK(w, nil)
	})

	for _, form := range []url.Values{nil, {"enable": {"maybe"}}} {
		w := h.PostForm("/dashboard/security/2fa", form)
		handlertest.ExpectRedirect(t, w, "/dashboard/security")
		handlertest.ExpectBody(t, h.Follow(t, w), msgToggleFailed)
	}
	if n := len(h.API.Find(http.MethodPost, "/auth/2fa/disable")) + len(h.API.Find(http.MethodPost, "/auth/2fa/enable")); n != 0 {
		t.Fatalf("a form without a valid choice must not reach the API, got %d calls", n)
	}
}

func TestSessions(t *testing.T) {
	h := setup(t)
	h.SignIn(t, ada())
	h.API.Handle("GET /profile/sessions", func(w http.ResponseWriter, r *http.Request) {
		handlertest.OK(w, map[string]interface{}{"sessions": []auth.Session{
			{ID: "s1", IPAddress: "10.0.0.1", UserAgent: "Firefox"},
			{ID: "s2", IPAddress: "10.0.0.2", UserAgent: "Safari"},
		}})
	})
	h.API.Handle("DELETE /profile/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "s2" {
			handlertest.Fail(w, http.StatusNotFound, "Session not found")
			return
		}
		handlertest.OK(w, nil)
	})

	w := h.Get("/dashboard/sessions")
	handlertest.ExpectBody(t, w, "Firefox", "10.0.0.2", `action="/dashboard/sessions/s2/revoke"`)

	w = h.PostForm("/dashboard/sessions/s2/revoke", nil)
	handlertest.ExpectRedirect(t, w, "/dashboard/sessions")
	handlertest.ExpectBody(t, h.Follow(t, w), msgSessionRevoked)

	w = h.PostForm("/dashboard/sessions/nope/revoke", nil)
	handlertest.ExpectBody(t, h.Follow(t, w), "Session not found")
}

func TestSessionsLoadFailure(t *testing.T) {
	h := setup(t)
	h.SignIn(t, ada())
	h.API.Handle("GET /profile/sessions", func(w http.ResponseWriter, r *http.Request) {
		handlertest.Fail(w, http.StatusInternalServerError, "")
	})

	w := h.Get("/dashboard/sessions")
	if w.Code != http.StatusOK {
		t.Fatalf("expected page to render, got %d", w.Code)
	}
	handlertest.ExpectBody(t, w, msgSessionsFailed, "No active sessions")
}

func TestRevokeAll(t *testing.T) {
	h := setup(t)
	sid := h.SignIn(t, ada())
	h.API.Handle("POST /auth/logout-all", func(w http.ResponseWriter, r *http.Request) {
		handlertest.OK(w, nil)
	})

	w := h.PostForm("/dashboard/sessions/revoke-all", nil)
	handlertest.ExpectRedirect(t, w, "/login")
	if _, ok, _ := h.Tokens.Read(t.Context(), sid); ok {
		t.Fatalf("tokens must be cleared after signing out everywhere")
	}
	handlertest.ExpectRedirect(t, h.Get("/dashboard"), "/login")
}

func TestRevokeAllFailureKeepsSession(t *testing.T) {
	h := setup(t)
	sid := h.SignIn(t, ada())
	h.API.Handle("POST /auth/logout-all", func(w http.ResponseWriter, r *http.Request) {
		handlertest.Fail(w, http.StatusInternalServerError, "")
	})

	w := h.PostForm("/dashboard/sessions/revoke-all", nil)
	handlertest.ExpectRedirect(t, w, "/dashboard/sessions")
	if _, ok, _ := h.Tokens.Read(t.Context(), sid); !ok {
		t.Fatalf("local session must survive a failed logout-all")
	}
	h.API.Handle("GET /profile/sessions", func(w http.ResponseWriter, r *http.Request) {
		handlertest.OK(w, map[string]interface{}{"sessions": []auth.Session{}})
	})
	handlertest.ExpectBody(t, h.Follow(t, w), msgRevokeAllFailed)
}
