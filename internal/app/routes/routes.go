package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/flashclass/internal/app/controllers"
	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/middleware"
)

// Controllers groups the HTTP handlers mounted by SetupRouter
type Controllers struct {
	Auth      *controllers.AuthController
	User      *controllers.UserController
	Flashcard *controllers.FlashcardController
	Folder    *controllers.FolderController
	Class     *controllers.ClassController
	Dashboard *controllers.DashboardController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
	}

	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", c.Auth.Logout)
		authenticated.GET("/users/me", c.User.GetProfile)

		users := authenticated.Group("/users")
		users.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			users.GET("", c.User.ListUsers)
			users.POST("", c.User.CreateUser)
			users.PATCH("/:id/role", c.User.ChangeRole)
			users.DELETE("/:id", c.User.DeleteUser)
		}

		flashcards := authenticated.Group("/flashcards")
		{
			flashcards.GET("", c.Flashcard.ListFlashcards)
			flashcards.POST("", c.Flashcard.CreateFlashcard)
			flashcards.GET("/:id", c.Flashcard.GetFlashcard)
			flashcards.PUT("/:id", c.Flashcard.UpdateFlashcard)
			flashcards.DELETE("/:id", c.Flashcard.DeleteFlashcard)
		}

		folders := authenticated.Group("/folders")
		{
			folders.GET("", c.Folder.ListFolders)
			folders.POST("", c.Folder.CreateFolder)
			folders.GET("/:id", c.Folder.GetFolder)
			folders.PUT("/:id", c.Folder.RenameFolder)
			folders.DELETE("/:id", c.Folder.DeleteFolder)
		}

		classes := authenticated.Group("/classes")
		{
			classes.GET("", c.Class.ListClasses)
			classes.GET("/:id", c.Class.GetClass)
			classes.GET("/:id/materials", c.Class.GetMaterials)
			classes.GET("/:id/roster", c.Class.GetRoster)
			classes.GET("/:id/events", c.Class.Events)

			// services repeat the admin check with specific messages
			classesAdmin := classes.Group("")
			classesAdmin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				classesAdmin.POST("", c.Class.CreateClass)
				classesAdmin.DELETE("/:id", c.Class.DeleteClass)
				classesAdmin.PUT("/:id/members", c.Class.SetMembers)
				classesAdmin.POST("/:id/manual-members", c.Class.AddManualMember)
				classesAdmin.PUT("/:id/materials", c.Class.SetMaterials)
			}
		}

		dashboard := authenticated.Group("/dashboard")
		{
			dashboard.GET("/stats", c.Dashboard.GetStats)
			dashboard.GET("/charts", c.Dashboard.GetCharts)
		}
	}
}
