package router

import (
	"resepi/internal/handlers"
	"resepi/internal/metrics"
	"resepi/internal/middleware"
	"resepi/internal/services"

	"github.com/gin-gonic/gin"
)

// Deps 路由依赖的服务
type Deps struct {
	Users          *services.UserService
	Recipes        *services.RecipeService
	Guides         *services.GuideService
	Comments       *services.CommentService
	Engagement     *services.EngagementService
	Subscribers    *services.SubscriberService
	CommentLimiter *middleware.RateLimiter
	DB             handlers.Pinger
	SiteURL        string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Handlers
	authHandler := handlers.NewAuthHandler(d.Users)
	recipeHandler := handlers.NewRecipeHandler(d.Recipes, d.Comments, d.Engagement, d.SiteURL)
	guideHandler := handlers.NewGuideHandler(d.Guides, d.SiteURL)
	subscriberHandler := handlers.NewSubscriberHandler(d.Subscribers)
	dashboardHandler := handlers.NewDashboardHandler(d.Recipes, d.Guides, d.Subscribers)
	seoHandler := handlers.NewSEOHandler(d.Recipes, d.Guides, d.SiteURL)

	// 基础设施
	r.GET("/healthz", handlers.Healthz(d.DB))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)

	// 公共路由 (Public Routes)
	r.GET("/", recipeHandler.List)                   // 首页 - 食谱列表
	r.GET("/resipi/:slug", recipeHandler.Detail)     // 食谱详情
	r.POST("/resipi/:slug/suka", recipeHandler.Like) // 点赞
	r.GET("/panduan", guideHandler.List)             // 指南列表
	r.GET("/panduan/:slug", guideHandler.Detail)     // 指南详情

	// 邮件订阅
	r.POST("/langganan", subscriberHandler.Subscribe)
	r.GET("/langganan/sahkan", subscriberHandler.Verify)
	r.GET("/langganan/sahkan/:token", subscriberHandler.Verify)
	r.GET("/langganan/berjaya", subscriberHandler.Success)
	r.GET("/langganan/token-tidak-sah", subscriberHandler.InvalidToken)
	r.GET("/langganan/ralat", subscriberHandler.Failure)

	// JSON API
	api := r.Group("/api")
	{
		api.GET("/recipes", recipeHandler.APIList)
		api.GET("/recipes/:id/comments", recipeHandler.APIComments)
		api.GET("/guides", guideHandler.APIList)
	}

	r.GET("/register", authHandler.ShowRegister) // 注册页面
	r.POST("/register", authHandler.Register)    // 提交注册
	r.GET("/login", authHandler.ShowLogin)       // 登录页面
	r.POST("/login", authHandler.Login)          // 提交登录
	r.GET("/logout", authHandler.Logout)         // 退出登录

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		// 发表评论，按用户限流
		authorized.POST("/resipi/:slug/komen", d.CommentLimiter.Middleware(), recipeHandler.CreateComment)
	}

	// 管理后台 (Dashboard Routes)
	dashboard := r.Group("/dashboard")
	dashboard.Use(middleware.AdminRequired())
	{
		dashboard.GET("", dashboardHandler.Overview)
		dashboard.GET("/resipi/baharu", dashboardHandler.NewRecipe)
		dashboard.POST("/resipi", dashboardHandler.CreateRecipe)
		dashboard.GET("/resipi/:id", dashboardHandler.EditRecipe)
		dashboard.POST("/resipi/:id", dashboardHandler.UpdateRecipe)
		dashboard.GET("/panduan/baharu", dashboardHandler.NewGuide)
		dashboard.POST("/panduan", dashboardHandler.CreateGuide)
		dashboard.GET("/panduan/:id", dashboardHandler.EditGuide)
		dashboard.POST("/panduan/:id", dashboardHandler.UpdateGuide)
		dashboard.GET("/pelanggan", dashboardHandler.Subscribers)
	}
}
