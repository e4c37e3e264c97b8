package routes

import (
	"github.com/gin-gonic/gin"

	"todoboard/internal/handlers"
	"todoboard/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	taskHandler *handlers.TaskHandler,
	readOnly bool,
) *gin.Engine {

	// ---- public
	r.GET("/", taskHandler.Root)
	r.GET("/healthz", taskHandler.Health)

	todos := r.Group("/todos", middleware.ReadOnlyGuard(readOnly))
	{
		todos.GET("", taskHandler.List)
		todos.POST("", taskHandler.Create)

		todos.GET("/new", taskHandler.New)
		todos.POST("/new", taskHandler.Create)
		todos.POST("/new/suggest-ai", taskHandler.Suggest)

		todos.GET("/export.pdf", taskHandler.ExportPDF)
		todos.GET("/events", taskHandler.Events)

		todos.GET("/:id", taskHandler.Detail)
		todos.POST("/:id", taskHandler.Action)
		todos.PUT("/:id", taskHandler.Action)
		todos.DELETE("/:id", taskHandler.Remove)
		todos.POST("/:id/suggest-ai", taskHandler.Suggest)
	}

	return r
}
