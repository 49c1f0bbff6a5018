package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resepi/internal/models"
	"resepi/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	listingTTL       = time.Minute
	recipeListingKey = "recipes:summaries"
	guideListingKey  = "guides:summaries"

	MaxTitleLength = 200
)

// ImageInput 表单提交的图片，按提交顺序排列
type ImageInput struct {
	URL       string
	Alt       string
	IsPrimary bool
}

// RecipeInput 创建 / 编辑食谱的表单数据
type RecipeInput struct {
	Title       string
	Description string
	Content     string
	PrepMinutes int
	CookMinutes int
	Servings    int
	CategoryID  uint
	Images      []ImageInput
}

type RecipeService struct {
	db    *gorm.DB
	cache *utils.Cache
}

func NewRecipeService(db *gorm.DB, cache *utils.Cache) *RecipeService {
	return &RecipeService{db: db, cache: cache}
}

// Summaries returns every recipe as {id, title}, newest first.
func (s *RecipeService) Summaries(ctx context.Context) ([]models.RecipeSummary, error) {
	if cached, ok := s.cache.Get(recipeListingKey).([]models.RecipeSummary); ok {
		return cached, nil
	}
	out := []models.RecipeSummary{}
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("id", "title").
		Order("created_at DESC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list recipe summaries: %w", err)
	}
	s.cache.Set(recipeListingKey, out, listingTTL)
	return out, nil
}

// List 首页食谱列表，带分类与图片
func (s *RecipeService) List(ctx context.Context) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

func (s *RecipeService) GetBySlug(ctx context.Context, slug string) (*models.Recipe, error) {
	return s.get(ctx, "slug = ?", slug)
}

func (s *RecipeService) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("recipe %q: %w", id, ErrNotFound)
	}
	return s.get(ctx, "id = ?", id)
}

func (s *RecipeService) get(ctx context.Context, query string, arg any) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Author").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where(query, arg).
		First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("recipe %v: %w", arg, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load recipe: %w", err)
	}
	return &recipe, nil
}

// Categories 按名称字母顺序
func (s *RecipeService) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// ValidateRecipeInput trims text fields and checks required values.
func ValidateRecipeInput(in RecipeInput) (RecipeInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Content = strings.TrimSpace(in.Content)

	switch {
	case in.Title == "":
		return in, invalid("title", "Tajuk diperlukan")
	case len([]rune(in.Title)) > MaxTitleLength:
		return in, invalid("title", fmt.Sprintf("Tajuk tidak boleh melebihi %d aksara", MaxTitleLength))
	case in.Content == "":
		return in, invalid("content", "Kandungan resipi diperlukan")
	case in.CategoryID == 0:
		return in, invalid("categoryId", "Sila pilih kategori")
	case in.PrepMinutes < 0 || in.CookMinutes < 0 || in.Servings < 0:
		return in, invalid("minutes", "Nilai masa dan hidangan tidak boleh negatif")
	}

	images := in.Images[:0:0]
	for _, img := range in.Images {
		img.URL = strings.TrimSpace(img.URL)
		img.Alt = strings.TrimSpace(img.Alt)
		if img.URL == "" {
			continue
		}
		images = append(images, img)
	}
	in.Images = images
	return in, nil
}

// NormalizeImages assigns positions in submission order. When several images
// are marked primary only the first keeps the flag.
func NormalizeImages(recipeID string, in []ImageInput) []models.RecipeImage {
	images := make([]models.RecipeImage, 0, len(in))
	primarySeen := false
	for i, img := range in {
		primary := img.IsPrimary && !primarySeen
		if primary {
			primarySeen = true
		}
		images = append(images, models.RecipeImage{
			RecipeID:  recipeID,
			URL:       img.URL,
			Alt:       img.Alt,
			Position:  i,
			IsPrimary: primary,
		})
	}
	return images
}

func (s *RecipeService) Create(ctx context.Context, in RecipeInput, authorID uint) (*models.Recipe, error) {
	in, err := ValidateRecipeInput(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	slug, err := uniqueSlug(ctx, s.db, &models.Recipe{}, in.Title, "resipi", "")
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Slug:        slug,
		Description: in.Description,
		Content:     in.Content,
		PrepMinutes: in.PrepMinutes,
		CookMinutes: in.CookMinutes,
		Servings:    in.Servings,
		CategoryID:  in.CategoryID,
		AuthorID:    authorID,
	}
	images := NormalizeImages(recipe.ID, in.Images)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return fmt.Errorf("create recipe images: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	recipe.Images = images
	s.cache.Delete(recipeListingKey)
	return &recipe, nil
}

// Update rewrites the recipe fields and replaces its image list. The slug is
// regenerated only when the title changes.
func (s *RecipeService) Update(ctx context.Context, id string, in RecipeInput) (*models.Recipe, error) {
	in, err := ValidateRecipeInput(in)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("recipe %q: %w", id, ErrNotFound)
	}

	var recipe models.Recipe
	err = s.db.WithContext(ctx).Where("id = ?", id).First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load recipe: %w", err)
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	slug := recipe.Slug
	if in.Title != recipe.Title {
		if slug, err = uniqueSlug(ctx, s.db, &models.Recipe{}, in.Title, "resipi", id); err != nil {
			return nil, err
		}
	}

	images := NormalizeImages(id, in.Images)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(map[string]any{
			"title":        in.Title,
			"slug":         slug,
			"description":  in.Description,
			"content":      in.Content,
			"prep_minutes": in.PrepMinutes,
			"cook_minutes": in.CookMinutes,
			"servings":     in.Servings,
			"category_id":  in.CategoryID,
		}).Error
		if err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeImage{}).Error; err != nil {
			return fmt.Errorf("clear recipe images: %w", err)
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return fmt.Errorf("create recipe images: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recipe.Title = in.Title
	recipe.Slug = slug
	recipe.Description = in.Description
	recipe.Content = in.Content
	recipe.PrepMinutes = in.PrepMinutes
	recipe.CookMinutes = in.CookMinutes
	recipe.Servings = in.Servings
	recipe.CategoryID = in.CategoryID
	recipe.Images = images
	s.cache.Delete(recipeListingKey)
	return &recipe, nil
}

func (s *RecipeService) checkCategory(ctx context.Context, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if count == 0 {
		return &ValidationError{Field: "categoryId", Message: "Kategori tidak wujud", Err: ErrNotFound}
	}
	return nil
}
