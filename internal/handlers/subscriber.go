package handlers

import (
	"context"
	"errors"
	"net/http"

	"resepi/internal/models"
	"resepi/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	SubscribeSuccessPath = "/langganan/berjaya"
	SubscribeInvalidPath = "/langganan/token-tidak-sah"
	SubscribeErrorPath   = "/langganan/ralat"
)

type SubscriberStore interface {
	Subscribe(ctx context.Context, email string) (*models.Subscriber, error)
	Verify(ctx context.Context, token string) error
}

type SubscriberHandler struct {
	subscribers SubscriberStore
}

func NewSubscriberHandler(subscribers SubscriberStore) *SubscriberHandler {
	return &SubscriberHandler{subscribers: subscribers}
}

// Subscribe 提交订阅表单
func (h *SubscriberHandler) Subscribe(c *gin.Context) {
	email := c.PostForm("email")
	_, err := h.subscribers.Subscribe(c.Request.Context(), email)
	switch {
	case err == nil:
		Render(c, http.StatusOK, "subscriber/status.html", gin.H{
			"Title":   "Semak e-mel anda",
			"Message": "Pautan pengesahan telah dihantar ke " + email + ".",
		})
	case errors.Is(err, services.ErrAlreadySubscribed):
		Render(c, http.StatusOK, "subscriber/status.html", gin.H{
			"Title":   "Sudah melanggan",
			"Message": "E-mel ini sudah disahkan. Terima kasih kerana melanggan!",
		})
	case services.IsValidation(err):
		Render(c, http.StatusBadRequest, "subscriber/status.html", gin.H{
			"Title": "Langganan gagal",
			"Error": msg(c, err),
		})
	default:
		fail(c, err)
	}
}

// verifyRedirect maps a verification outcome to its status page.
func verifyRedirect(err error) string {
	switch {
	case err == nil:
		return SubscribeSuccessPath
	case errors.Is(err, models.ErrTokenInvalid), errors.Is(err, models.ErrTokenExpired):
		return SubscribeInvalidPath
	default:
		return SubscribeErrorPath
	}
}

// Verify handles both /langganan/sahkan?token=… and /langganan/sahkan/:token.
func (h *SubscriberHandler) Verify(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		token = c.Query("token")
	}
	err := h.subscribers.Verify(c.Request.Context(), token)
	if err != nil && verifyRedirect(err) == SubscribeErrorPath {
		logrus.WithError(err).Error("Subscriber verification failed")
	}
	c.Redirect(http.StatusFound, verifyRedirect(err))
}

func (h *SubscriberHandler) Success(c *gin.Context) {
	Render(c, http.StatusOK, "subscriber/status.html", gin.H{
		"Title":   "Langganan disahkan",
		"Message": "Terima kasih! Langganan anda telah disahkan.",
	})
}

func (h *SubscriberHandler) InvalidToken(c *gin.Context) {
	Render(c, http.StatusOK, "subscriber/status.html", gin.H{
		"Title": "Pautan tidak sah",
		"Error": "Pautan pengesahan tidak sah atau telah tamat tempoh. Sila langgan semula.",
	})
}

func (h *SubscriberHandler) Failure(c *gin.Context) {
	Render(c, http.StatusOK, "subscriber/status.html", gin.H{
		"Title": "Ralat",
		"Error": "Maaf, berlaku ralat semasa mengesahkan langganan. Sila cuba lagi kemudian.",
	})
}
