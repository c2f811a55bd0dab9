package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/sitepulse/backend/api/handler"
)

type Handlers struct {
	Activity *apiHandler.ActivityHandler
	Content  *apiHandler.ContentHandler
	Task     *apiHandler.TaskHandler
	Progress *apiHandler.ProgressHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Event log
	r.POST("/api/v1/activities", handlers.Activity.Report)
	r.GET("/api/v1/activities", handlers.Activity.List)
	r.DELETE("/api/v1/activities", handlers.Activity.Delete)
	r.GET("/api/v1/activities/{id}/score", handlers.Activity.Score)

	// Content index
	r.PUT("/api/v1/contents", handlers.Content.Upsert)
	r.GET("/api/v1/contents", handlers.Content.List)
	r.DELETE("/api/v1/contents/{kind}/{id}", handlers.Content.Delete)

	// Suggested tasks
	r.GET("/api/v1/tasks", handlers.Task.List)
	r.POST("/api/v1/tasks/sweep", handlers.Task.Sweep)
	r.POST("/api/v1/tasks/{id}/complete", handlers.Task.Complete)
	r.POST("/api/v1/tasks/{id}/celebrate", handlers.Task.Celebrate)
	r.POST("/api/v1/tasks/{id}/dismiss", handlers.Task.Dismiss)
	r.POST("/api/v1/tasks/{id}/snooze", handlers.Task.Snooze)

	// Badges and streaks
	r.GET("/api/v1/badges", handlers.Progress.ListBadges)
	r.GET("/api/v1/badges/{id}", handlers.Progress.BadgeProgress)
	r.GET("/api/v1/streaks", handlers.Progress.Streak)

	return r
}
