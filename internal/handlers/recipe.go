package handlers

import (
	"context"
	"net/http"
	"strings"

	"resepi/internal/middleware"
	"resepi/internal/models"
	"resepi/internal/services"
	"resepi/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RecipeStore is the read side of the recipe service used by public pages.
type RecipeStore interface {
	Summaries(ctx context.Context) ([]models.RecipeSummary, error)
	List(ctx context.Context) ([]models.Recipe, error)
	GetBySlug(ctx context.Context, slug string) (*models.Recipe, error)
}

type CommentStore interface {
	Create(ctx context.Context, in services.CreateCommentInput) (*models.Comment, error)
	Tree(ctx context.Context, recipeID string) ([]*services.CommentNode, error)
}

type Engagement interface {
	IncrementLike(recipeID string)
	IncrementView(recipeID string)
	Counts(ctx context.Context, recipeID string) services.Counts
}

type RecipeHandler struct {
	recipes    RecipeStore
	comments   CommentStore
	engagement Engagement
	siteURL    string
}

func NewRecipeHandler(recipes RecipeStore, comments CommentStore, engagement Engagement, siteURL string) *RecipeHandler {
	return &RecipeHandler{
		recipes:    recipes,
		comments:   comments,
		engagement: engagement,
		siteURL:    strings.TrimSuffix(siteURL, "/"),
	}
}

// List 首页：全部食谱
func (h *RecipeHandler) List(c *gin.Context) {
	recipes, err := h.recipes.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	Render(c, http.StatusOK, "recipe/list.html", gin.H{
		"Recipes":     recipes,
		"Title":       "Resepi Masakan Malaysia",
		"Description": "Koleksi resepi masakan tradisional dan moden Malaysia.",
		"FullURL":     h.siteURL + "/",
	})
}

// Detail 食谱详情；每次访问异步计一次浏览
func (h *RecipeHandler) Detail(c *gin.Context) {
	ctx := c.Request.Context()
	recipe, err := h.recipes.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	h.engagement.IncrementView(recipe.ID)

	tree, err := h.comments.Tree(ctx, recipe.ID)
	if err != nil {
		// 评论加载失败不影响正文展示
		logrus.WithError(err).WithField("recipe_id", recipe.ID).Warn("Failed to load comments")
		tree = []*services.CommentNode{}
	}

	Render(c, http.StatusOK, "recipe/detail.html", gin.H{
		"Recipe":       recipe,
		"ContentHTML":  utils.RenderMarkdown(recipe.Content),
		"Counts":       h.engagement.Counts(ctx, recipe.ID),
		"Comments":     tree,
		"CommentCount": services.CountComments(tree),
		"Title":        recipe.Title,
		"Description":  recipe.Description,
		"FullURL":      h.siteURL + "/resipi/" + recipe.Slug,
	})
}

// Like 点赞，结果不等待计数器写入
func (h *RecipeHandler) Like(c *gin.Context) {
	recipe, err := h.recipes.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if c.GetHeader("HX-Request") != "" {
			c.Status(statusFor(err))
			return
		}
		fail(c, err)
		return
	}
	h.engagement.IncrementLike(recipe.ID)

	if c.GetHeader("HX-Request") != "" {
		c.String(http.StatusAccepted, "Terima kasih!")
		return
	}
	c.Redirect(http.StatusSeeOther, "/resipi/"+recipe.Slug)
}

// CreateComment handles the comment form. parent_id is empty for a top-level
// comment.
func (h *RecipeHandler) CreateComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		HtmxRedirect(c, "/login")
		return
	}
	ctx := c.Request.Context()
	recipe, err := h.recipes.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}

	in := services.CreateCommentInput{
		RecipeID: recipe.ID,
		Content:  c.PostForm("content"),
		UserID:   user.ID,
	}
	if pid, ok := c.GetPostForm("parent_id"); ok {
		in.ParentID = &pid
	}

	comment, err := h.comments.Create(ctx, in)
	if err != nil {
		if services.IsValidation(err) {
			c.String(http.StatusBadRequest, msg(c, err))
			return
		}
		fail(c, err)
		return
	}
	HtmxRedirect(c, "/resipi/"+recipe.Slug+"#komen-"+comment.ID)
}

// APIList GET /api/recipes
func (h *RecipeHandler) APIList(c *gin.Context) {
	summaries, err := h.recipes.Summaries(c.Request.Context())
	if err != nil {
		failJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// APIComments GET /api/recipes/:id/comments
func (h *RecipeHandler) APIComments(c *gin.Context) {
	tree, err := h.comments.Tree(c.Request.Context(), c.Param("id"))
	if err != nil {
		failJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}
