// internal/pkg/response/response.go
package response

import (
	"net/http"

	"console-service/internal/domain/auth"
	"console-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Keys under which middleware publishes per-request values on the gin context.
const (
	CurrentUserKey = "current_user"
	RequestIDKey   = "request_id"
)

// Renderer writes HTML pages and carries flash messages across redirects.
type Renderer struct {
	flash  *session.Flash
	logger *zap.Logger
}

func NewRenderer(flash *session.Flash, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{flash: flash, logger: logger}
}

// HTML renders a page template. Layout values (current user, queued flash
// messages, request path) are merged into data.
func (r *Renderer) HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["CurrentUser"]; !ok {
		data["CurrentUser"] = CurrentUser(c)
	}
	data["Flash"] = r.popFlash(c)
	data["Path"] = c.Request.URL.Path
	if id, ok := c.Get(RequestIDKey); ok {
		data["RequestID"] = id
	}

	c.HTML(status, name, data)
}

// Error renders the generic error page and aborts the chain.
func (r *Renderer) Error(c *gin.Context, status int, message string) {
	c.Abort()
	r.HTML(c, status, "error.tmpl", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
}

// Flash queues a message for the next rendered page.
func (r *Renderer) Flash(c *gin.Context, level, message string) {
	if r.flash == nil {
		return
	}
	sid, ok := session.IDFromContext(c.Request.Context())
	if !ok {
		return
	}
	if err := r.flash.Push(c.Request.Context(), sid, session.FlashMessage{Level: level, Message: message}); err != nil {
		r.logger.Warn("failed to queue flash", zap.String("sid", sid), zap.Error(err))
	}
}

// Success queues a success flash.
func (r *Renderer) Success(c *gin.Context, message string) {
	r.Flash(c, session.LevelSuccess, message)
}

// Fail queues an error flash.
func (r *Renderer) Fail(c *gin.Context, message string) {
	r.Flash(c, session.LevelError, message)
}

func (r *Renderer) popFlash(c *gin.Context) []session.FlashMessage {
	if r.flash == nil {
		return nil
	}
	sid, ok := session.IDFromContext(c.Request.Context())
	if !ok {
		return nil
	}
	msgs, err := r.flash.Pop(c.Request.Context(), sid)
	if err != nil {
		r.logger.Warn("failed to read flash", zap.String("sid", sid), zap.Error(err))
		return nil
	}
	return msgs
}

// Redirect ends the request with a See Other so the browser re-requests
// target with GET.
func Redirect(c *gin.Context, target string) {
	c.Redirect(http.StatusSeeOther, target)
	c.Abort()
}

// CurrentUser returns the hydrated user for this request, or nil.
func CurrentUser(c *gin.Context) *auth.User {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*auth.User)
	return user
}
