// internal/handlers/handlertest/harness.go
package handlertest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"console-service/internal/client"
	"console-service/internal/domain/auth"
	"console-service/internal/middleware"
	"console-service/internal/pkg/response"
	"console-service/internal/pkg/session"
	"console-service/internal/pkg/token"
	authsvc "console-service/internal/service/auth"
	"console-service/web"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const CookieName = "console_sid"

// Call is one request received by the fake API.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Auth   string
	Body   map[string]interface{}
}

// FakeAPI stands in for the remote account API. GET /auth/me answers with
// User for any bearer token; other routes are registered per test.
type FakeAPI struct {
	mu    sync.Mutex
	mux   *http.ServeMux
	calls []Call
	User  *auth.User
}

func (f *FakeAPI) Handle(pattern string, fn http.HandlerFunc) {
	f.mux.HandleFunc(pattern, fn)
}

func (f *FakeAPI) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Find returns the calls made to method and path.
func (f *FakeAPI) Find(method, path string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Auth: r.Header.Get("Authorization")}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&rec.Body)
	}
	f.mu.Lock()
	f.calls = append(f.calls, rec)
	f.mu.Unlock()

	f.mux.ServeHTTP(w, r)
}

func (f *FakeAPI) me(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	user := f.User
	f.mu.Unlock()
	if user == nil || r.Header.Get("Authorization") == "" {
		Fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	OK(w, map[string]interface{}{"user": user})
}

// OK writes a success envelope.
func OK(w http.ResponseWriter, data interface{}) {
	writeEnvelope(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "ok",
		"data":    data,
		"meta":    map[string]interface{}{"timestamp": time.Now().UTC().Format(time.RFC3339)},
	})
}

// Paged writes a success envelope with pagination meta.
func Paged(w http.ResponseWriter, data interface{}, page, limit, total, totalPages int) {
	writeEnvelope(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "ok",
		"data":    data,
		"meta": map[string]interface{}{
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"pagination": map[string]int{"page": page, "limit": limit, "total": total, "totalPages": totalPages},
		},
	})
}

// Fail writes an error envelope.
func Fail(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, map[string]interface{}{
		"success": false,
		"message": message,
		"code":    http.StatusText(status),
		"meta":    map[string]interface{}{"timestamp": time.Now().UTC().Format(time.RFC3339)},
	})
}

func writeEnvelope(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Harness wires the real middleware, client, auth context and templates
// against a fake API and an in-memory Redis.
type Harness struct {
	Engine   *gin.Engine
	API      *FakeAPI
	Client   *client.Client
	Tokens   *token.RedisStore
	Sessions *session.Manager
	Cooldown *session.Cooldown
	Auth     *middleware.AuthMiddleware
	Render   *response.Renderer
	Redis    *miniredis.Miniredis

	cookie *http.Cookie
}

func New(t *testing.T) *Harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &FakeAPI{mux: http.NewServeMux()}
	api.Handle("GET /auth/me", api.me)
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens := token.NewRedisStore(rdb, 0)
	apiClient := client.New(srv.URL, srv.Client(), tokens, nil, nil)
	sessions := session.NewManager("test-secret", CookieName, false, time.Hour)
	authService := authsvc.NewAuthService(apiClient, tokens, nil, nil)

	tmpl, err := web.Templates(response.FuncMap())
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}
	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)
	engine.Use(middleware.RequestID())

	return &Harness{
		Engine:   engine,
		API:      api,
		Client:   apiClient,
		Tokens:   tokens,
		Sessions: sessions,
		Cooldown: session.NewCooldown(rdb, time.Minute),
		Auth:     middleware.NewAuthMiddleware(authService, sessions, nil),
		Render:   response.NewRenderer(session.NewFlash(rdb), nil),
		Redis:    mr,
	}
}

// SignIn stores a token pair for a fresh browser session and makes the fake
// API resolve it to user.
func (h *Harness) SignIn(t *testing.T, user *auth.User) string {
	t.Helper()
	sid := h.Sessions.NewID()
	if err := h.Tokens.Save(context.Background(), sid, token.Pair{Access: "T1", Refresh: "T2"}); err != nil {
		t.Fatalf("failed to save tokens: %v", err)
	}
	value, err := h.Sessions.Sign(sid)
	if err != nil {
		t.Fatalf("failed to sign cookie: %v", err)
	}
	h.SetUser(user)
	h.cookie = &http.Cookie{Name: CookieName, Value: value}
	return sid
}

// SetUser changes what /auth/me returns.
func (h *Harness) SetUser(user *auth.User) {
	h.API.mu.Lock()
	h.API.User = user
	h.API.mu.Unlock()
}

// SessionID returns the browser session id carried by the cookie jar.
func (h *Harness) SessionID(t *testing.T) string {
	t.Helper()
	if h.cookie == nil {
		t.Fatalf("no session cookie yet")
	}
	sid, err := h.Sessions.Parse(h.cookie.Value)
	if err != nil {
		t.Fatalf("invalid session cookie: %v", err)
	}
	return sid
}

func (h *Harness) Get(path string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (h *Harness) PostForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

// Follow GETs the Location of a redirect.
func (h *Harness) Follow(t *testing.T, w *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	t.Helper()
	loc := w.Header().Get("Location")
	if loc == "" {
		t.Fatalf("expected a redirect, got %d", w.Code)
	}
	return h.Get(loc)
}

func (h *Harness) do(req *http.Request) *httptest.ResponseRecorder {
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	w := httptest.NewRecorder()
	h.Engine.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName && c.Value != "" {
			h.cookie = &http.Cookie{Name: CookieName, Value: c.Value}
		}
	}
	return w
}

// ExpectRedirect fails unless w redirects to target.
func ExpectRedirect(t *testing.T, w *httptest.ResponseRecorder, target string) {
	t.Helper()
	if w.Code < 300 || w.Code >= 400 || w.Header().Get("Location") != target {
		t.Fatalf("expected redirect to %q, got %d %q", target, w.Code, w.Header().Get("Location"))
	}
}

// ExpectBody fails unless the body contains every fragment.
func ExpectBody(t *testing.T, w *httptest.ResponseRecorder, fragments ...string) {
	t.Helper()
	body := w.Body.String()
	for _, f := range fragments {
		if !strings.Contains(body, f) {
			t.Fatalf("expected body to contain %q, got:\n%s", f, body)
		}
	}
}
