package handlers

import (
	"context"
	"net/http"
	"strings"

	"resepi/internal/models"
	"resepi/internal/utils"

	"github.com/gin-gonic/gin"
)

type GuideStore interface {
	Summaries(ctx context.Context) ([]models.GuideSummary, error)
	GetBySlug(ctx context.Context, slug string) (*models.Guide, error)
}

type GuideHandler struct {
	guides  GuideStore
	siteURL string
}

func NewGuideHandler(guides GuideStore, siteURL string) *GuideHandler {
	return &GuideHandler{guides: guides, siteURL: strings.TrimSuffix(siteURL, "/")}
}

func (h *GuideHandler) List(c *gin.Context) {
	guides, err := h.guides.Summaries(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	Render(c, http.StatusOK, "guide/list.html", gin.H{
		"Guides":  guides,
		"Title":   "Panduan Memasak",
		"FullURL": h.siteURL + "/panduan",
	})
}

func (h *GuideHandler) Detail(c *gin.Context) {
	guide, err := h.guides.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	Render(c, http.StatusOK, "guide/detail.html", gin.H{
		"Guide":       guide,
		"ContentHTML": utils.RenderMarkdown(guide.Content),
		"Title":       guide.Title,
		"FullURL":     h.siteURL + "/panduan/" + guide.Slug,
	})
}

// APIList GET /api/guides
func (h *GuideHandler) APIList(c *gin.Context) {
	guides, err := h.guides.Summaries(c.Request.Context())
	if err != nil {
		failJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, guides)
}
