package utils

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	// 食谱与指南正文
	contentPolicy = bluemonday.UGCPolicy()
	// 评论：只保留基础排版与链接，不允许图片
	commentPolicy = bluemonday.NewPolicy()
)

func init() {
	contentPolicy.AllowImages()
	contentPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	contentPolicy.RequireNoReferrerOnLinks(true)

	commentPolicy.AllowStandardURLs()
	commentPolicy.AllowAttrs("href").OnElements("a")
	commentPolicy.AllowElements("p", "br", "strong", "em", "del", "code", "pre", "blockquote", "ul", "ol", "li")
	commentPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	commentPolicy.RequireNoFollowOnLinks(true)
	commentPolicy.RequireNoReferrerOnLinks(true)
}

func markdownToHTML(source string) ([]byte, bool) {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

// RenderMarkdown renders recipe or guide markdown into sanitized HTML with
// enhanced image and video markup.
func RenderMarkdown(source string) template.HTML {
	out, ok := markdownToHTML(source)
	if !ok {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return EnhanceHTMLContent(string(contentPolicy.SanitizeBytes(out)))
}

// RenderComment renders user comment markdown. Images are stripped.
func RenderComment(source string) template.HTML {
	out, ok := markdownToHTML(source)
	if !ok {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(commentPolicy.SanitizeBytes(out))
}
