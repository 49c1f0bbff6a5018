package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resepi/internal/models"
	"resepi/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GuideInput 指南表单数据
type GuideInput struct {
	Title   string
	Content string
}

type GuideService struct {
	db    *gorm.DB
	cache *utils.Cache
}

func NewGuideService(db *gorm.DB, cache *utils.Cache) *GuideService {
	return &GuideService{db: db, cache: cache}
}

// Summaries returns every guide as {id, title, slug, createdAt}, newest first.
func (s *GuideService) Summaries(ctx context.Context) ([]models.GuideSummary, error) {
	if cached, ok := s.cache.Get(guideListingKey).([]models.GuideSummary); ok {
		return cached, nil
	}
	out := []models.GuideSummary{}
	err := s.db.WithContext(ctx).Model(&models.Guide{}).
		Select("id", "title", "slug", "created_at").
		Order("created_at DESC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list guide summaries: %w", err)
	}
	s.cache.Set(guideListingKey, out, listingTTL)
	return out, nil
}

func (s *GuideService) GetBySlug(ctx context.Context, slug string) (*models.Guide, error) {
	return s.get(ctx, "slug = ?", slug)
}

func (s *GuideService) GetByID(ctx context.Context, id string) (*models.Guide, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("guide %q: %w", id, ErrNotFound)
	}
	return s.get(ctx, "id = ?", id)
}

func (s *GuideService) get(ctx context.Context, query string, arg any) (*models.Guide, error) {
	var guide models.Guide
	err := s.db.WithContext(ctx).Where(query, arg).First(&guide).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("guide %v: %w", arg, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load guide: %w", err)
	}
	return &guide, nil
}

func validateGuideInput(in GuideInput) (GuideInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	switch {
	case in.Title == "":
		return in, invalid("title", "Tajuk diperlukan")
	case len([]rune(in.Title)) > MaxTitleLength:
		return in, invalid("title", fmt.Sprintf("Tajuk tidak boleh melebihi %d aksara", MaxTitleLength))
	case in.Content == "":
		return in, invalid("content", "Kandungan panduan diperlukan")
	}
	return in, nil
}

func (s *GuideService) Create(ctx context.Context, in GuideInput) (*models.Guide, error) {
	in, err := validateGuideInput(in)
	if err != nil {
		return nil, err
	}
	slug, err := uniqueSlug(ctx, s.db, &models.Guide{}, in.Title, "panduan", "")
	if err != nil {
		return nil, err
	}

	guide := models.Guide{Title: in.Title, Slug: slug, Content: in.Content}
	if err := s.db.WithContext(ctx).Create(&guide).Error; err != nil {
		return nil, fmt.Errorf("create guide: %w", err)
	}
	s.cache.Delete(guideListingKey)
	return &guide, nil
}

func (s *GuideService) Update(ctx context.Context, id string, in GuideInput) (*models.Guide, error) {
	in, err := validateGuideInput(in)
	if err != nil {
		return nil, err
	}
	guide, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != guide.Title {
		if guide.Slug, err = uniqueSlug(ctx, s.db, &models.Guide{}, in.Title, "panduan", id); err != nil {
			return nil, err
		}
	}
	guide.Title = in.Title
	guide.Content = in.Content

	err = s.db.WithContext(ctx).Model(&models.Guide{}).Where("id = ?", id).Updates(map[string]any{
		"title":   guide.Title,
		"slug":    guide.Slug,
		"content": guide.Content,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update guide: %w", err)
	}
	s.cache.Delete(guideListingKey)
	return guide, nil
}
