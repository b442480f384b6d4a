package auth

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"console-service/internal/domain/auth"
	"console-service/internal/handlers/handlertest"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func setup(t *testing.T) *handlertest.Harness {
	t.Helper()
	h := handlertest.New(t)
	ah := NewAuthHandler(h.Client, h.Cooldown, h.Render, zap.NewNop())

	guest := h.Engine.Group("", h.Auth.Guest()...)
	guest.GET("/login", ah.ShowLogin)
	guest.POST("/login", ah.Login)
	guest.GET("/register", ah.ShowRegister)
	guest.POST("/register", ah.Register)

	public := h.Engine.Group("", h.Auth.Public()...)
	public.GET("/forgot-password", ah.ShowForgotPassword)
	public.POST("/forgot-password", ah.ForgotPassword)
	public.GET("/reset-password", ah.ShowResetPassword)
	public.POST("/reset-password", ah.ResetPassword)
	public.GET("/verify-2fa", ah.ShowVerify2FA)
	public.POST("/verify-2fa", ah.Verify2FA)
	public.POST("/verify-2fa/resend", ah.Resend2FA)
	h.Engine.POST("/logout", h.Auth.Session(), h.Auth.Hydrate(), ah.Logout)

	h.Engine.GET("/dashboard", append(h.Auth.Protected(), func(c *gin.Context) {
		c.String(http.StatusOK, "dashboard")
	})...)
	return h
}

func sampleUser() *auth.User {
	return &auth.User{
		ID:        "u1",
		Email:     "a@b.com",
		FirstName: "Ada",
		IsActive:  true,
		Roles:     []auth.UserRole{{Role: auth.Role{ID: "r1", Name: "user", DisplayName: "User"}}},
	}
}

func TestLoginThenDashboardReachable(t *testing.T) {
	h := setup(t)
	h.API.Handle("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		handlertest.OK(w, map[string]interface{}{
			"requires2FA":  false,
			"user":         sampleUser(),
			"accessToken":  "T1",
			"refreshToken": "T2",
		})
	})
	h.SetUser(sampleUser())

	w := h.PostForm("/login", url.Values{"email": {"a@b.com"}, "password": {"Passw0rd1"}})
	handlertest.ExpectRedirect(t, w, "/dashboard")

	sid := h.SessionID(t)
	key := "console:tokens:" + sid
	if h.Redis.HGet(key, "accessToken") != "T1" || h.Redis.HGet(key, "refreshToken") != "T2" {
		t.Fatalf("expected tokens T1/T2 stored for the session")
	}

	calls := h.API.Find(http.MethodPost, "/auth/login")
	if len(calls) != 1 || calls[0].Body["email"] != "a@b.com" || calls[0].Body["password"] != "Passw0rd1" {
		t.Fatalf("unexpected login calls %+v", calls)
	}

	w = h.Follow(t, w)
	if w.Code != http.StatusOK || w.Body.String() != "dashboard" {
		t.Fatalf("dashboard should be reachable, got %d %q", w.Code, w.Body.String())
	}
	if me := h.API.Find(http.MethodGet, "/auth/me"); len(me) != 1 || me[0].Auth != "Bearer T1" {
		t.Fatalf("expected one hydration with bearer T1, got %+v", me)
	}

	handlertest.ExpectRedirect(t, h.Get("/login"), "/dashboard")
}

func TestLoginIssuesNewSessionID(t *testing.T) {
	h := setup(t)
	h.API.Handle("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		handlertest.OK(w, map[string]interface{}{
			"requires2FA":  false,
			"user":         sampleUser(),
			"accessToken":  "T1",
			"refreshToken": "T2",
		})
	})
	h.SetUser(sampleUser())

	h.Get("/login")
	before := h.SessionID(t)

	w := h.PostForm("/login", url.Values{"email": {"a@b.com"}, "password": {"Passw0rd1"}})
	handlertest.ExpectRedirect(t, w, "/dashboard")
	after := h.SessionID(t)
	if before == after {
		t.Fatalf("expected a new session id after login, still %s", before)
	}
	if h.Redis.Exists("console:tokens:" + before) {
		t.Fatalf("the pre-login session must not hold the tokens")
	}
	if _, ok, _ := h.Tokens.Read(t.Context(), after); !ok {
		t.Fatalf("expected tokens under the new session")
	}
}

func TestLoginValidationSkipsNetwork(t *testing.T) {
	h := setup(t)

	w := h.PostForm("/login", url.Values{"email": {"not-an-email"}, "password": {""}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	handlertest.ExpectBody(t, w, "Enter a valid email address", "Password is required", `value="not-an-email"`)
	if len(h.API.Find(http.MethodPost, "/auth/login")) != 0 {
		t.Fatalf("invalid form must not reach the API")
	}
}

func TestLoginErrorMessages(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{"server message", func(w http.ResponseWriter, r *http.Request) {
			handlertest.Fail(w, http.StatusUnauthorized, "Account is blocked")
		}, "Account is blocked"},
		{"no message", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}, msgLoginFailed},
		{"malformed success", func(w http.ResponseWriter, r *http.Request) {
			handlertest.OK(w, map[string]interface{}{"requires2FA": false})
		}, msgLoginFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := setup(t)
			h.API.Handle("POST /auth/login", tc.handler)

			w := h.PostForm("/login", url.Values{"email": {"a@b.com"}, "password": {"wrong"}})
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", w.Code)
			}
			handlertest.ExpectBody(t, w, tc.want)
			if _, ok, _ := h.Tokens.Read(t.Context(), h.SessionID(t)); ok {
				t.Fatalf("failed login must not store tokens")
			}
		})
	}
}

func TestLoginWithSecondFactorRedirectsToChallenge(t *testing.T) {
	h := setup(t)
	h.API.Handle("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		handlertest.OK(w, map[string]interface{}{"requires2FA": true, "tempSessionId": "tmp-1"})
	})

	w := h.PostForm("/login", url.Values{"email": {"a@b.com"}, "password": {"Passw0rd1"}})
	handlertest.ExpectRedirect(t, w, "/verify-2fa?session=tmp-1")
	if _, ok, _ := h.Tokens.Read(t.Context(), h.SessionID(t)); ok {
		t.Fatalf("no tokens may be stored before the second factor")
	}
	handlertest.ExpectRedirect(t, h.Get("/dashboard"), "/login")
}

func TestVerifyRequiresSession(t *testing.T) {
	h := setup(t)
	handlertest.ExpectRedirect(t, h.Get("/verify-2fa"), "/login")
	handlertest.ExpectRedirect(t, h.PostForm("/verify-2fa", url.Values{"otp": {"123456"}}), "/login")
	handlertest.ExpectRedirect(t, h.PostForm("/verify-2fa/resend", nil), "/login")
}

func TestVerifySuccess(t *testing.T) {
	h := setup(t)
	h.API.Handle("POST /auth/2fa/verify", func(w http.ResponseWriter, r *http.Request) {
		handlertest.OK(w, map[string]string{"accessToken": "V1", "refreshToken": "V2"})
	})
	h.SetUser(sampleUser())

	w := h.PostForm("/verify-2fa?session=tmp-1", url.Values{"otp": {"123456"}})
	handlertest.ExpectRedirect(t, w, "/dashboard")

	call := h.API.Find(http.MethodPost, "/auth/2fa/verify")[0]
	if call.Body["otp"] != "123456" || call.Body["sessionId"] != "tmp-1" {
		t.Fatalf("unexpected verify body %v", call.Body)
	}
	pair, ok, _ := h.Tokens.Read(t.Context(), h.SessionID(t))
	if !ok || pair.Access != "V1" || pair.Refresh != "V2" {
		t.Fatalf("unexpected stored pair %+v", pair)
	}
	if w := h.Follow(t, w); w.Code != http.StatusOK {
		t.Fatalf("dashboard should be reachable after 2FA, got %d", w.Code)
	}
}

func TestVerifyIssuesNewSessionID(t *testing.T) {
	h := setup(t)
	h.API.Handle("POST /auth/2fa/verify", func(w http.ResponseWriter, r *http.Request) {
		handlertest.OK(w, map[string]string{"accessToken": "V1", "refreshToken": "V2"})
	})
	h.SetUser(sampleUser())

	h.Get("/verify-2fa?session=tmp-1")
	before := h.SessionID(t)

	w := h.PostForm("/verify-2fa?session=tmp-1", url.Values{"otp": {"123456"}})
	handlertest.ExpectRedirect(t, w, "/dashboard")
	if after := h.SessionID(t); after == before {
		t.Fatalf("expected a new session id after 2FA, still %s", before)
	}
	if _, ok, _ := h.Tokens.Read(t.Context(), before); ok {
		t.Fatalf("the pre-verification session must not hold the tokens")
	}
}

func TestVerifyFailures(t *testing.T) {
	h := setup(t)
	h.API.Handle("POST /auth/2fa/verify", func(w http.ResponseWriter, r *http.Request) {
		handlertest.Fail(w, http.StatusBadRequest, "")
	})

	w := h.PostForm("/verify-2fa?session=tmp-1", url.Values{"otp": {"12ab"}})
	handlertest.ExpectBody(t, w, "Code must be exactly 6 digits")
	if len(h.API.Find(http.MethodPost, "/auth/2fa/verify")) != 0 {
		t.Fatalf("malformed code must not reach the API")
	}

	w = h.PostForm("/verify-2fa?session=tmp-1", url.Values{"otp": {"000000"}})
	handlertest.ExpectBody(t, w, msgVerifyFailed)
}

func TestResendCooldown(t *testing.T) {
	h := setup(t)
	h.API.Handle("POST /auth/2fa/resend", func(w http.ResponseWriter, r *http.Request) {
		handlertest.OK(w, nil)
	})

	w := h.Get("/verify-2fa?session=tmp-1")
	if w.Code != http.StatusOK {
		t.Fatalf("expected challenge page, got %d", w.Code)
	}
	handlertest.ExpectBody(t, w, "Resend code in 60s", `name="session" value="tmp-1"`)
	if ttl := h.Redis.TTL("console:otp-resend:tmp-1"); ttl != time.Minute {
		t.Fatalf("expected 60s cooldown, got %v", ttl)
	}

	// A second view does not extend the window.
	h.Redis.FastForward(20 * time.Second)
	h.Get("/verify-2fa?session=tmp-1")
	if ttl := h.Redis.TTL("console:otp-resend:tmp-1"); ttl != 40*time.Second {
		t.Fatalf("expected cooldown to keep running, got %v", ttl)
	}

	w = h.PostForm("/verify-2fa/resend", url.Values{"session": {"tmp-1"}})
	handlertest.ExpectRedirect(t, w, "/verify-2fa?session=tmp-1")
	handlertest.ExpectBody(t, h.Follow(t, w), "Please wait 40 seconds before requesting a new code")
	if len(h.API.Find(http.MethodPost, "/auth/2fa/resend")) != 0 {
		t.Fatalf("resend during cooldown must not reach the API")
	}

	h.Redis.FastForward(41 * time.Second)
	w = h.PostForm("/verify-2fa/resend", url.Values{"session": {"tmp-1"}})
	handlertest.ExpectRedirect(t, w, "/verify-2fa?session=tmp-1")
	calls := h.API.Find(http.MethodPost, "/auth/2fa/resend")
	if len(calls) != 1 || calls[0].Body["sessionId"] != "tmp-1" {
		t.Fatalf("expected one resend call, got %+v", calls)
	}
	if ttl := h.Redis.TTL("console:otp-resend:tmp-1"); ttl != time.Minute {
		t.Fatalf("expected cooldown restarted, got %v", ttl)
	}
	handlertest.ExpectBody(t, h.Follow(t, w), msgOTPResent, "Resend code in 60s")
}

func TestResendFailureFlashes(t *testing.T) {
	h := setup(t)
	h.API.Handle("POST /auth/2fa/resend", func(w http.ResponseWriter, r *http.Request) {
		handlertest.Fail(w, http.StatusInternalServerError, "")
	})

	w := h.PostForm("/verify-2fa/resend", url.Values{"session": {"tmp-1"}})
	handlertest.ExpectBody(t, h.Follow(t, w), msgResendFailed)
}

func TestRegister(t *testing.T) {
	h := setup(t)
	h.API.Handle("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		handlertest.OK(w, nil)
	})

	w := h.PostForm("/register", url.Values{
		"email": {"a@b.com"}, "password": {"Passw0rd1"}, "confirmPassword": {"Different1"}, "firstName": {"Ada"},
	})
	handlertest.ExpectBody(t, w, "Passwords do not match", `value="Ada"`)
	if len(h.API.Find(http.MethodPost, "/auth/register")) != 0 {
		t.Fatalf("mismatched passwords must not reach the API")
	}

	w = h.PostForm("/register", url.Values{
		"email": {"a@b.com"}, "password": {"Passw0rd1"}, "confirmPassword": {"Passw0rd1"}, "firstName": {"Ada"},
	})
	handlertest.ExpectRedirect(t, w, "/login")
	handlertest.ExpectBody(t, h.Follow(t, w), msgRegistered)

	body := h.API.Find(http.MethodPost, "/auth/register")[0].Body
	if _, leaked := body["confirmPassword"]; leaked || body["password"] != "Passw0rd1" {
		t.Fatalf("unexpected register body %v", body)
	}
}

func TestRegisterServerFailure(t *testing.T) {
	h := setup(t)
	h.API.Handle("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		handlertest.Fail(w, http.StatusInternalServerError, "")
	})

	w := h.PostForm("/register", url.Values{
		"email": {"a@b.com"}, "password": {"Passw0rd1"}, "confirmPassword": {"Passw0rd1"},
	})
	handlertest.ExpectBody(t, w, msgRegisterFailed)
}

func TestForgotPasswordIsNeutral(t *testing.T) {
	h := setup(t)
	h.API.Handle("POST /auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		handlertest.OK(w, nil)
	})

	w := h.PostForm("/forgot-password", url.Values{"email": {"nobody@example.com"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	handlertest.ExpectBody(t, w, msgForgotSent)
}

func TestResetPassword(t *testing.T) {
	h := setup(t)
	h.API.Handle("POST /auth/reset-password", func(w http.ResponseWriter, r *http.Request) {
		handlertest.OK(w, nil)
	})

	handlertest.ExpectRedirect(t, h.Get("/reset-password"), "/login")

	w := h.Get("/reset-password?token=rt-1")
	handlertest.ExpectBody(t, w, `action="/reset-password?token=rt-1"`)

	w = h.PostForm("/reset-password?token=rt-1", url.Values{"password": {"Passw0rd1"}, "confirmPassword": {"Passw0rd1"}})
	handlertest.ExpectRedirect(t, w, "/login")
	handlertest.ExpectBody(t, h.Follow(t, w), msgResetDone)

	body := h.API.Find(http.MethodPost, "/auth/reset-password")[0].Body
	if body["token"] != "rt-1" || body["newPassword"] != "Passw0rd1" {
		t.Fatalf("unexpected reset body %v", body)
	}
}

func TestResetPasswordOpenWhileSignedIn(t *testing.T) {
	h := setup(t)
	h.SignIn(t, sampleUser())

	w := h.Get("/reset-password?token=rt-1")
	if w.Code != http.StatusOK {
		t.Fatalf("signed-in user should reach the reset page, got %d %q", w.Code, w.Header().Get("Location"))
	}
	handlertest.ExpectBody(t, w, `action="/reset-password?token=rt-1"`)
	if w := h.Get("/forgot-password"); w.Code != http.StatusOK {
		t.Fatalf("signed-in user should reach the forgot page, got %d", w.Code)
	}
	handlertest.ExpectRedirect(t, h.Get("/login"), "/dashboard")
	handlertest.ExpectRedirect(t, h.Get("/register"), "/dashboard")
}

func TestResetPasswordExpiredToken(t *testing.T) {
	h := setup(t)
	h.API.Handle("POST /auth/reset-password", func(w http.ResponseWriter, r *http.Request) {
		handlertest.Fail(w, http.StatusBadRequest, "")
	})

	w := h.PostForm("/reset-password?token=rt-1", url.Values{"password": {"Passw0rd1"}, "confirmPassword": {"Passw0rd1"}})
	handlertest.ExpectBody(t, w, msgResetFailed)
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	h := setup(t)
	h.API.Handle("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		handlertest.Fail(w, http.StatusInternalServerError, "boom")
	})
	sid := h.SignIn(t, sampleUser())

	w := h.PostForm("/logout", nil)
	handlertest.ExpectRedirect(t, w, "/login")
	if len(h.API.Find(http.MethodPost, "/auth/logout")) != 1 {
		t.Fatalf("remote logout should be attempted")
	}
	if _, ok, _ := h.Tokens.Read(t.Context(), sid); ok {
		t.Fatalf("tokens must be cleared")
	}
	if h.SessionID(t) == sid {
		t.Fatalf("expected a fresh anonymous session after logout")
	}
	handlertest.ExpectBody(t, h.Follow(t, w), msgSignedOut)
	handlertest.ExpectRedirect(t, h.Get("/dashboard"), "/login")
}
