package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"resepi/internal/utils"

	"gorm.io/gorm"
)

// nextSlug returns base, or base-N with the smallest N >= 2 not in taken.
func nextSlug(base string, taken []string) string {
	used := make(map[string]struct{}, len(taken))
	for _, t := range taken {
		used[t] = struct{}{}
	}
	if _, ok := used[base]; !ok {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, ok := used[candidate]; !ok {
			return candidate
		}
	}
}

// uniqueSlug derives a slug from title that no other row of model uses.
// excludeID keeps a row's own slug available to it on update.
func uniqueSlug(ctx context.Context, db *gorm.DB, model any, title, fallback, excludeID string) (string, error) {
	base := utils.Slugify(title)
	if base == "" {
		base = fallback
	}

	q := db.WithContext(ctx).Model(model).
		Where("slug = ? OR slug LIKE ?", base, escapeLike(base)+"-%")
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var taken []string
	if err := q.Pluck("slug", &taken).Error; err != nil {
		return "", fmt.Errorf("load slugs: %w", err)
	}
	return nextSlug(base, taken), nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
