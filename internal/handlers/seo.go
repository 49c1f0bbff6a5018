package handlers

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type SEOHandler struct {
	recipes RecipeStore
	guides  GuideStore
	siteURL string
}

func NewSEOHandler(recipes RecipeStore, guides GuideStore, siteURL string) *SEOHandler {
	return &SEOHandler{recipes: recipes, guides: guides, siteURL: strings.TrimSuffix(siteURL, "/")}
}

// RobotsTxt 返回 robots.txt
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

# 后台与账号页面
Disallow: /dashboard/
Disallow: /login
Disallow: /register
Disallow: /langganan/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

func (h *SEOHandler) urlEntry(b *strings.Builder, path string, lastmod time.Time, changefreq string, priority float64) {
	fmt.Fprintf(b, `  <url>
    <loc>%s%s</loc>
    <lastmod>%s</lastmod>
    <changefreq>%s</changefreq>
    <priority>%.1f</priority>
  </url>
`, h.siteURL, html.EscapeString(path), lastmod.Format("2006-01-02"), changefreq, priority)
}

// SitemapXML 动态生成 sitemap.xml：首页、指南列表、全部食谱与指南
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	recipes, err := h.recipes.List(ctx)
	if err != nil {
		failJSON(c, err)
		return
	}
	guides, err := h.guides.Summaries(ctx)
	if err != nil {
		failJSON(c, err)
		return
	}

	now := time.Now()
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
`)
	h.urlEntry(&b, "/", now, "daily", 1.0)
	h.urlEntry(&b, "/panduan", now, "weekly", 0.8)

	for _, r := range recipes {
		// 新食谱更频繁地被抓取
		changefreq, priority := "weekly", 0.7
		if time.Since(r.CreatedAt) < 7*24*time.Hour {
			changefreq, priority = "daily", 0.9
		}
		h.urlEntry(&b, "/resipi/"+r.Slug, r.UpdatedAt, changefreq, priority)
	}
	for _, g := range guides {
		h.urlEntry(&b, "/panduan/"+g.Slug, g.CreatedAt, "monthly", 0.6)
	}
	b.WriteString(`</urlset>`)

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, b.String())
}
