package handlers

import (
	"errors"
	"net/http"

	"resepi/internal/middleware"
	"resepi/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}
	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// HTMX Redirect helper
func HtmxRedirect(c *gin.Context, path string) {
	if c.GetHeader("HX-Request") == "" {
		c.Redirect(http.StatusSeeOther, path)
		return
	}
	c.Header("HX-Redirect", path)
	c.Status(http.StatusOK)
}

// Error helper
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message, "Code": code})
}

// statusFor maps service errors onto HTTP status codes. A validation error
// that wraps ErrNotFound still counts as bad input.
func statusFor(err error) int {
	switch {
	case services.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// msg returns the user-facing text for err. Internal errors are logged and
// replaced by a generic message.
func msg(c *gin.Context, err error) string {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, services.ErrNotFound):
		return "Halaman tidak dijumpai"
	default:
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
		return "Maaf, berlaku ralat. Sila cuba lagi."
	}
}

// fail renders err as an error page.
func fail(c *gin.Context, err error) {
	RenderError(c, statusFor(err), msg(c, err))
}

// failJSON writes err as {"error": ...}.
func failJSON(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": msg(c, err)})
}
