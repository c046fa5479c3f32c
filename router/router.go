package router

import (
	"context"
	"log/slog"
	"net/http"

	"fintrack/api"
	"fintrack/config"
	_ "fintrack/docs"
	"fintrack/logger"
	"fintrack/middleware"
	"fintrack/web"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter builds the engine. Pages are split into a public group and an
// authenticated group gated by the session; /api/v1 has its own bearer gate.
// Background work started here stops when ctx is done.
func SetupRouter(ctx context.Context, cfg *config.Config, db *gorm.DB) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(slog.Default()))
	r.SetHTMLTemplate(web.Templates())

	authHandler := api.NewAuthHandler(cfg, db)
	txHandler := api.NewTransactionHandler(db)
	exportHandler := api.NewExportHandler(db)

	r.Use(middleware.LoadSession(authHandler.Sessions(), middleware.NewSessionCookie(cfg)))

	var loginLimit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.RateLimit.LoginAttempts > 0 {
		loginLimit = middleware.LoginRateLimit(ctx, cfg.RateLimit.LoginAttempts, cfg.RateLimit.Window)
	}

	public := r.Group("")
	{
		public.GET("/", authHandler.Home)
		public.GET("/login", authHandler.LoginPage)
		public.POST("/login", loginLimit, authHandler.Login)
		public.GET("/signup", authHandler.SignupPage)
		public.POST("/signup", authHandler.Signup)
		public.GET("/logout", authHandler.Logout)

		public.GET("/health", func(c *gin.Context) {
			c.String(http.StatusOK, "OK")
		})

		public.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authenticated := r.Group("")
	authenticated.Use(middleware.RequireSession())
	{
		authenticated.GET("/dashboard", txHandler.Dashboard)
		authenticated.GET("/add-transaction", txHandler.AddPage)
		authenticated.POST("/add-transaction", txHandler.Add)
		authenticated.GET("/edit-transaction/:id", txHandler.EditPage)
		authenticated.POST("/edit-transaction/:id", txHandler.Edit)
		authenticated.GET("/delete-transaction/:id", txHandler.Delete)

		authenticated.GET("/export/csv", exportHandler.ExportCSV)
		authenticated.GET("/export/xlsx", exportHandler.ExportXLSX)
	}

	v1 := r.Group("/api/v1")
	v1.Use(CORSMiddleware())
	{
		v1.OPTIONS("/*path", func(c *gin.Context) {})
		v1.POST("/auth/login", loginLimit, authHandler.APILogin)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/profile", authHandler.Profile)
			authorized.GET("/categories", txHandler.ListCategories)

			transactions := authorized.Group("/transactions")
			{
				transactions.GET("", txHandler.APIList)
				transactions.POST("", txHandler.APICreate)
				transactions.PUT("/:id", txHandler.APIUpdate)
				transactions.DELETE("/:id", txHandler.APIDelete)
			}
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "error.html", gin.H{"message": "Page not found"})
	})

	return r
}

// CORSMiddleware CORS headers for API clients; preflight requests end here
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
