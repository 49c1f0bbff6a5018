package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"resepi/internal/middleware"
	"resepi/internal/models"
	"resepi/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Accounts interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

type AuthHandler struct {
	accounts Accounts
}

func NewAuthHandler(accounts Accounts) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// safeNext only allows local paths as post-login targets.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func login(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(middleware.SessionUserID, user.ID)
	return session.Save()
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	form := gin.H{"Name": name, "Email": email}

	user, err := h.accounts.Register(c.Request.Context(), name, email, c.PostForm("password"))
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		form["Error"] = "E-mel ini sudah didaftarkan"
		Render(c, http.StatusConflict, "auth/register.html", form)
		return
	case services.IsValidation(err):
		form["Error"] = msg(c, err)
		Render(c, http.StatusBadRequest, "auth/register.html", form)
		return
	case err != nil:
		fail(c, err)
		return
	}

	if err := login(c, user); err != nil {
		logrus.WithError(err).Error("Failed to save session")
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Next": c.Query("next")})
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	next := c.PostForm("next")

	user, err := h.accounts.Authenticate(c.Request.Context(), email, c.PostForm("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "E-mel atau kata laluan salah", "Email": email, "Next": next})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	if err := login(c, user); err != nil {
		logrus.WithError(err).Error("Failed to save session")
	}
	c.Redirect(http.StatusFound, safeNext(next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		logrus.WithError(err).Error("Failed to save session")
	}
	c.Redirect(http.StatusFound, "/")
}
