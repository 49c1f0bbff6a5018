package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"resepi/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MinCommentLength = 1
	MaxCommentLength = 1000
)

type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// CreateCommentInput 创建评论的参数
type CreateCommentInput struct {
	RecipeID string
	ParentID *string
	Content  string
	UserID   uint
}

// ValidateCommentInput checks the shape of a new comment and returns it
// normalized: content trimmed, an empty parent id treated as top-level.
func ValidateCommentInput(in CreateCommentInput) (CreateCommentInput, error) {
	in.Content = strings.TrimSpace(in.Content)
	n := utf8.RuneCountInString(in.Content)
	if n < MinCommentLength {
		return in, invalid("content", "Komen tidak boleh kosong")
	}
	if n > MaxCommentLength {
		return in, invalid("content", fmt.Sprintf("Komen tidak boleh melebihi %d aksara", MaxCommentLength))
	}

	if _, err := uuid.Parse(in.RecipeID); err != nil {
		return in, invalid("recipeId", "ID resipi tidak sah")
	}

	if in.ParentID != nil {
		pid := strings.TrimSpace(*in.ParentID)
		if pid == "" {
			in.ParentID = nil
		} else {
			if _, err := uuid.Parse(pid); err != nil {
				return in, invalid("parentId", "ID komen induk tidak sah")
			}
			in.ParentID = &pid
		}
	}
	return in, nil
}

// Create validates and persists a comment. The parent, when given, must be
// an existing comment on the same recipe.
func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	in, err := ValidateCommentInput(in)
	if err != nil {
		return nil, err
	}
	tx := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := tx.Select("id").Where("id = ?", in.RecipeID).First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe %s: %w", in.RecipeID, ErrNotFound)
		}
		return nil, fmt.Errorf("load recipe: %w", err)
	}

	if in.ParentID != nil {
		var parent models.Comment
		err := tx.Select("id", "recipe_id").Where("id = ?", *in.ParentID).First(&parent).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Field: "parentId", Message: "Komen induk tidak wujud", Err: ErrNotFound}
		}
		if err != nil {
			return nil, fmt.Errorf("load parent comment: %w", err)
		}
		if parent.RecipeID != in.RecipeID {
			return nil, invalid("parentId", "Komen induk bukan milik resipi ini")
		}
	}

	comment := models.Comment{
		RecipeID: in.RecipeID,
		UserID:   in.UserID,
		ParentID: in.ParentID,
		Content:  in.Content,
	}
	if err := tx.Omit(clause.Associations).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &comment, nil
}

// ListForRecipe returns the flat comment list of a recipe in creation order.
func (s *CommentService) ListForRecipe(ctx context.Context, recipeID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("recipe_id = ?", recipeID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Tree returns the reply forest of a recipe.
func (s *CommentService) Tree(ctx context.Context, recipeID string) ([]*CommentNode, error) {
	if _, err := uuid.Parse(recipeID); err != nil {
		return nil, invalid("recipeId", "ID resipi tidak sah")
	}
	comments, err := s.ListForRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return BuildCommentTree(comments), nil
}
