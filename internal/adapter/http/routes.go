package http

import (
	"github.com/labstack/echo/v4"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Base         *Handler
	Students     *StudentHandler
	Programs     *ProgramHandler
	Applications *ApplicationHandler
	Documents    *DocumentHandler
	Service      *ServiceHandler
}

// Register mounts the API on e. Everything except /health runs behind mw,
// which must include the actor middleware.
func Register(e *echo.Echo, h Handlers, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Base.Health)

	g := e.Group("", mw...)
	g.GET("/notifications", h.Base.Notifications)

	g.POST("/students/profile", h.Students.Upsert)
	g.GET("/students/:user_id/profile", h.Students.Get)

	g.POST("/programs", h.Programs.Create)
	g.GET("/programs/:id", h.Programs.Get)
	g.DELETE("/programs/:id", h.Programs.Delete)
	g.POST("/programs/:id/requirements", h.Programs.AddRequirement)
	g.POST("/programs/:id/applications", h.Applications.Apply)

	g.GET("/applications", h.Applications.Mine)
	g.GET("/applications/:id", h.Applications.Get)
	g.DELETE("/applications/:id", h.Applications.Delete)
	g.POST("/applications/:id/transitions/:op", h.Applications.Transition)

	g.POST("/applications/:id/documents", h.Documents.Upload)
	g.GET("/documents/:id/file", h.Documents.File)
	g.POST("/documents/:id/review", h.Documents.Review)

	g.GET("/applications/:id/service", h.Service.Progress)
	g.POST("/applications/:id/service/entries", h.Service.Start)
	g.POST("/service/entries/:id/end", h.Service.End)
	g.DELETE("/service/entries/:id", h.Service.Cancel)
	g.POST("/service/entries/:id/approve", h.Service.Approve)
	g.POST("/service/entries/:id/reject", h.Service.Reject)
	g.POST("/applications/:id/service/reports", h.Service.SubmitReport)
	g.POST("/service/reports/:id/review", h.Service.ReviewReport)
}
