package handlers

import (
	"context"
	"net/http"
	"strconv"

	"resepi/internal/middleware"
	"resepi/internal/models"
	"resepi/internal/services"
	"resepi/internal/utils"

	"github.com/gin-gonic/gin"
)

type RecipeEditor interface {
	List(ctx context.Context) ([]models.Recipe, error)
	GetByID(ctx context.Context, id string) (*models.Recipe, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, in services.RecipeInput, authorID uint) (*models.Recipe, error)
	Update(ctx context.Context, id string, in services.RecipeInput) (*models.Recipe, error)
}

type GuideEditor interface {
	Summaries(ctx context.Context) ([]models.GuideSummary, error)
	GetByID(ctx context.Context, id string) (*models.Guide, error)
	Create(ctx context.Context, in services.GuideInput) (*models.Guide, error)
	Update(ctx context.Context, id string, in services.GuideInput) (*models.Guide, error)
}

type SubscriberLister interface {
	List(ctx context.Context) ([]models.Subscriber, error)
}

// DashboardHandler 管理后台，路由组已挂 AdminRequired
type DashboardHandler struct {
	recipes     RecipeEditor
	guides      GuideEditor
	subscribers SubscriberLister
}

func NewDashboardHandler(recipes RecipeEditor, guides GuideEditor, subscribers SubscriberLister) *DashboardHandler {
	return &DashboardHandler{recipes: recipes, guides: guides, subscribers: subscribers}
}

func (h *DashboardHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()
	recipes, err := h.recipes.List(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	guides, err := h.guides.Summaries(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	Render(c, http.StatusOK, "dashboard/overview.html", gin.H{
		"Title":   "Papan Pemuka",
		"Recipes": recipes,
		"Guides":  guides,
	})
}

// parseRecipeForm reads the recipe form. Images come as parallel
// image_url / image_alt lists; image_primary holds the indexes ticked as
// primary.
func parseRecipeForm(c *gin.Context) services.RecipeInput {
	in := services.RecipeInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Content:     c.PostForm("content"),
		PrepMinutes: utils.NonNegativeInt(c.PostForm("prep_minutes")),
		CookMinutes: utils.NonNegativeInt(c.PostForm("cook_minutes")),
		Servings:    utils.NonNegativeInt(c.PostForm("servings")),
		CategoryID:  uint(utils.NonNegativeInt(c.PostForm("category_id"))),
	}

	primary := make(map[string]bool)
	for _, idx := range c.PostFormArray("image_primary") {
		primary[idx] = true
	}
	urls := c.PostFormArray("image_url")
	alts := c.PostFormArray("image_alt")
	for i, u := range urls {
		img := services.ImageInput{URL: u, IsPrimary: primary[strconv.Itoa(i)]}
		if i < len(alts) {
			img.Alt = alts[i]
		}
		in.Images = append(in.Images, img)
	}
	return in
}

func (h *DashboardHandler) renderRecipeForm(c *gin.Context, code int, data gin.H) {
	categories, err := h.recipes.Categories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	data["Categories"] = categories
	Render(c, code, "dashboard/recipe_form.html", data)
}

func (h *DashboardHandler) NewRecipe(c *gin.Context) {
	h.renderRecipeForm(c, http.StatusOK, gin.H{"Title": "Resipi Baharu", "Recipe": &models.Recipe{}})
}

func (h *DashboardHandler) EditRecipe(c *gin.Context) {
	recipe, err := h.recipes.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	h.renderRecipeForm(c, http.StatusOK, gin.H{"Title": "Sunting Resipi", "Recipe": recipe})
}

func (h *DashboardHandler) CreateRecipe(c *gin.Context) {
	in := parseRecipeForm(c)
	user := middleware.CurrentUser(c)

	recipe, err := h.recipes.Create(c.Request.Context(), in, user.ID)
	if services.IsValidation(err) {
		h.renderRecipeForm(c, http.StatusBadRequest, gin.H{"Title": "Resipi Baharu", "Recipe": formRecipe(in), "Error": msg(c, err)})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/resipi/"+recipe.Slug)
}

func (h *DashboardHandler) UpdateRecipe(c *gin.Context) {
	id := c.Param("id")
	in := parseRecipeForm(c)

	recipe, err := h.recipes.Update(c.Request.Context(), id, in)
	if services.IsValidation(err) {
		r := formRecipe(in)
		r.ID = id
		h.renderRecipeForm(c, http.StatusBadRequest, gin.H{"Title": "Sunting Resipi", "Recipe": r, "Error": msg(c, err)})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/resipi/"+recipe.Slug)
}

// formRecipe echoes submitted values back into the form after a failed save.
func formRecipe(in services.RecipeInput) *models.Recipe {
	r := &models.Recipe{
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		PrepMinutes: in.PrepMinutes,
		CookMinutes: in.CookMinutes,
		Servings:    in.Servings,
		CategoryID:  in.CategoryID,
	}
	for i, img := range in.Images {
		r.Images = append(r.Images, models.RecipeImage{URL: img.URL, Alt: img.Alt, Position: i, IsPrimary: img.IsPrimary})
	}
	return r
}

func (h *DashboardHandler) NewGuide(c *gin.Context) {
	Render(c, http.StatusOK, "dashboard/guide_form.html", gin.H{"Title": "Panduan Baharu", "Guide": &models.Guide{}})
}

func (h *DashboardHandler) EditGuide(c *gin.Context) {
	guide, err := h.guides.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	Render(c, http.StatusOK, "dashboard/guide_form.html", gin.H{"Title": "Sunting Panduan", "Guide": guide})
}

func (h *DashboardHandler) CreateGuide(c *gin.Context) {
	in := services.GuideInput{Title: c.PostForm("title"), Content: c.PostForm("content")}
	guide, err := h.guides.Create(c.Request.Context(), in)
	if services.IsValidation(err) {
		Render(c, http.StatusBadRequest, "dashboard/guide_form.html", gin.H{
			"Title": "Panduan Baharu",
			"Guide": &models.Guide{Title: in.Title, Content: in.Content},
			"Error": msg(c, err),
		})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/panduan/"+guide.Slug)
}

func (h *DashboardHandler) UpdateGuide(c *gin.Context) {
	id := c.Param("id")
	in := services.GuideInput{Title: c.PostForm("title"), Content: c.PostForm("content")}
	guide, err := h.guides.Update(c.Request.Context(), id, in)
	if services.IsValidation(err) {
		Render(c, http.StatusBadRequest, "dashboard/guide_form.html", gin.H{
			"Title": "Sunting Panduan",
			"Guide": &models.Guide{ID: id, Title: in.Title, Content: in.Content},
			"Error": msg(c, err),
		})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/panduan/"+guide.Slug)
}

func (h *DashboardHandler) Subscribers(c *gin.Context) {
	subs, err := h.subscribers.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	verified := 0
	for _, s := range subs {
		if s.IsVerified {
			verified++
		}
	}
	Render(c, http.StatusOK, "dashboard/subscribers.html", gin.H{
		"Title":       "Pelanggan",
		"Subscribers": subs,
		"Verified":    verified,
	})
}
