package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recipe struct {
	ID          string        `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string        `gorm:"not null" json:"title"`
	Slug        string        `gorm:"not null;uniqueIndex" json:"slug"`
	Description string        `gorm:"type:text" json:"description"`
	Content     string        `gorm:"type:text" json:"content"` // Markdown
	PrepMinutes int           `gorm:"default:0" json:"prep_minutes"`
	CookMinutes int           `gorm:"default:0" json:"cook_minutes"`
	Servings    int           `gorm:"default:0" json:"servings"`
	CategoryID  uint          `gorm:"not null;index" json:"category_id"`
	Category    Category      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	AuthorID    uint          `gorm:"not null;index" json:"author_id"`
	Author      User          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"author"`
	Images      []RecipeImage `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// TotalMinutes 准备 + 烹饪时间
func (r *Recipe) TotalMinutes() int {
	return r.PrepMinutes + r.CookMinutes
}

// PrimaryImage 返回主图；没有标记主图时返回第一张，没有图片返回 nil
func (r *Recipe) PrimaryImage() *RecipeImage {
	for i := range r.Images {
		if r.Images[i].IsPrimary {
			return &r.Images[i]
		}
	}
	if len(r.Images) > 0 {
		return &r.Images[0]
	}
	return nil
}

type RecipeImage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	RecipeID  string `gorm:"type:uuid;not null;index" json:"recipe_id"`
	URL       string `gorm:"not null" json:"url"`
	Alt       string `json:"alt"`
	Position  int    `gorm:"not null;default:0" json:"position"`
	IsPrimary bool   `gorm:"default:false" json:"is_primary"`
}

// RecipeSummary 列表接口的读模型
type RecipeSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
