package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Nasi Lemak", "nasi-lemak"},
		{"punctuation", "Kuih Lapis (Sarawak)!", "kuih-lapis-sarawak"},
		{"extra spaces", "  Ayam   Masak  Merah ", "ayam-masak-merah"},
		{"digits", "Resepi 10 Minit", "resepi-10-minit"},
		{"nothing usable", "!!!", ""},
		{"non ascii dropped", "Crème Brûlée", "cr-me-br-l-e"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(8)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("k", 42, time.Minute)
	assert.Equal(t, 42, c.Get("k"))

	now = now.Add(2 * time.Minute)
	assert.Nil(t, c.Get("k"))

	c.Set("a", 1, time.Minute)
	c.Delete("a")
	assert.Nil(t, c.Get("a"))
}

func TestRenderCommentStripsScriptsAndImages(t *testing.T) {
	out := string(RenderComment("Sedap! <script>alert(1)</script> ![x](http://img.example/x.png)"))
	assert.Contains(t, out, "Sedap!")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<img")
}

func TestRenderMarkdownEnhancesImages(t *testing.T) {
	out := string(RenderMarkdown("![rendang](https://img.example/rendang.jpg)"))
	assert.Contains(t, out, `loading="lazy"`)
	assert.True(t, strings.Contains(out, "rendang.jpg"))
}

func TestRenderMarkdownEmbedsYouTube(t *testing.T) {
	out := string(RenderMarkdown("https://www.youtube.com/watch?v=abc123&t=5"))
	assert.Contains(t, out, "youtube.com/embed/abc123")
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("rahsia123")
	assert.NoError(t, err)
	assert.True(t, CheckPasswordHash("rahsia123", hash))
	assert.False(t, CheckPasswordHash("salah", hash))
}

func TestNonNegativeInt(t *testing.T) {
	assert.Equal(t, 15, NonNegativeInt(" 15 "))
	assert.Equal(t, 0, NonNegativeInt("-3"))
	assert.Equal(t, 0, NonNegativeInt("abc"))
}
