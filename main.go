package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/hearthhub/household_backend/controllers"
	"github.com/hearthhub/household_backend/database"
	"github.com/hearthhub/household_backend/docs"
	"github.com/hearthhub/household_backend/mail"
	"github.com/hearthhub/household_backend/middleware"
	"github.com/hearthhub/household_backend/recurring"
	"github.com/hearthhub/household_backend/websocket"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Household API
// @version         1.0
// @description     API Server for Household Coordination Application
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using system environment variables")
	}

	// Initialize database
	database.Connect()
	database.Migrate()

	// Outbound invite mail (nil when SMTP is not configured)
	controllers.Mail = mail.NewMailService()

	// Recurring todo sweep
	sweeper := recurring.Start()
	defer sweeper.Stop()

	// Set up Swagger info
	docs.SwaggerInfo.Title = "Household API"
	docs.SwaggerInfo.Description = "API Server for Household Coordination Application"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:" + os.Getenv("PORT")
	if docs.SwaggerInfo.Host == "localhost:" {
		docs.SwaggerInfo.Host = "localhost:8080"
	}
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Schemes = []string{"http"}

	// Set up router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Authentication routes
	auth := router.Group("/api")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	// Public invite routes (accept allows an optional token)
	public := router.Group("/api")
	{
		public.GET("/invites/:token", controllers.ResolveInvite)
		public.POST("/invites/:token/accept", middleware.OptionalJWTAuth(), controllers.AcceptInvite)
	}

	// Protected routes
	api := router.Group("/api")
	api.Use(middleware.JWTAuth())
	{
		// Profile routes
		api.GET("/me", controllers.GetMe)
		api.PATCH("/me", controllers.UpdateMe)
		api.GET("/me/invites", controllers.GetPendingInvites)

		// Family routes
		api.GET("/families", controllers.GetFamilies)
		api.POST("/families", controllers.CreateFamily)
		api.GET("/families/:id", controllers.GetFamily)
		api.PATCH("/families/:id", controllers.UpdateFamily)
		api.DELETE("/families/:id/members/:memberId", controllers.RemoveMember)
		api.POST("/families/:id/invites", controllers.CreateEmailInvite)
		api.POST("/families/:id/invites/qr", controllers.CreateQRInvite)

		// Todo routes
		api.GET("/todos", controllers.GetTodos)
		api.POST("/todos", controllers.CreateTodo)
		api.GET("/todos/:id", controllers.GetTodo)
		api.PATCH("/todos/:id", controllers.UpdateTodo)
		api.PATCH("/todos/:id/toggle", controllers.ToggleTodo)
		api.DELETE("/todos/:id", controllers.DeleteTodo)

		// Shopping list routes
		api.GET("/shopping", controllers.GetShoppingItems)
		api.POST("/shopping", controllers.CreateShoppingItem)
		api.PATCH("/shopping/:id", controllers.UpdateShoppingItem)
		api.DELETE("/shopping/:id", controllers.DeleteShoppingItem)

		// Recipe routes
		api.GET("/recipes", controllers.GetRecipes)
		api.POST("/recipes", controllers.CreateRecipe)
		api.GET("/recipes/:id", controllers.GetRecipe)
		api.PATCH("/recipes/:id", controllers.UpdateRecipe)
		api.DELETE("/recipes/:id", controllers.DeleteRecipe)
	}

	// WebSocket route
	router.GET("/ws", websocket.HandleConnection)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("server starting", "port", port)
	if err := router.Run(":" + port); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
