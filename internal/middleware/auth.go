package middleware

import (
	"context"
	"net/http"
	"net/url"

	"resepi/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	CheckUserKey  = "user"
	SessionUserID = "user_id"
)

// UserLoader resolves the session's user id.
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// LoadUser retrieves user from session and sets to context
func LoadUser(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID, ok := session.Get(SessionUserID).(uint); ok {
			if user, err := users.GetByID(c.Request.Context(), userID); err == nil {
				c.Set(CheckUserKey, user)
			}
		}
		c.Next()
	}
}

// CurrentUser 当前登录用户，未登录返回 nil
func CurrentUser(c *gin.Context) *models.User {
	if u, exists := c.Get(CheckUserKey); exists {
		if user, ok := u.(*models.User); ok {
			return user
		}
	}
	return nil
}

// loginURL sends the user back to the current page after login. A form
// POST has no page of its own, so it returns to the page the form was on.
func loginURL(c *gin.Context) string {
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		return "/login?next=" + c.Request.URL.Path
	}
	next := "/"
	if ref, err := url.Parse(c.GetHeader("Referer")); err == nil && ref.Host == c.Request.Host && ref.Path != "" {
		next = ref.Path
	}
	return "/login?next=" + next
}

// AuthRequired ensures a user is logged in. Must run after LoadUser.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, loginURL(c))
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired 仅管理员可访问
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.Redirect(http.StatusFound, loginURL(c))
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
