package http

import "github.com/gin-gonic/gin"

// Register mounts every REST route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/metrics", h.Metrics())
	r.GET("/metrics/json", h.MetricsJSON)

	// Whole document
	r.GET("/schema", h.GetSchema)
	r.PUT("/schema", h.PutSchema)
	r.POST("/schema/save", h.SaveSchema)
	r.POST("/schema/reload", h.ReloadSchema)
	r.POST("/schema/validate", h.ValidateSchema)
	r.GET("/schema/export", h.ExportSchema)
	r.GET("/schema/state", h.GetInitialState)
	r.PUT("/schema/state", h.SetInitialState)
	r.PATCH("/schema/state", h.SetInitialState)

	// Pages and tree edits
	pages := r.Group("/pages")
	pages.GET("", h.ListPages)
	pages.POST("", h.AddPage)
	pages.GET("/:page", h.GetPage)
	pages.PATCH("/:page", h.UpdatePage)
	pages.DELETE("/:page", h.DeletePage)
	pages.PUT("/:page/components", h.ReplaceComponents)
	pages.GET("/:page/nodes", h.ListNodes)
	pages.POST("/:page/nodes", h.InsertNode)
	pages.GET("/:page/nodes/:id", h.GetNode)
	pages.DELETE("/:page/nodes/:id", h.RemoveNode)
	pages.PUT("/:page/nodes/:id/binding", h.SetBinding)
	pages.PUT("/:page/nodes/:id/events", h.SetEvent)
	pages.POST("/:page/move", h.MoveNode)
	pages.POST("/:page/move-into", h.MoveIntoNode)
	pages.POST("/:page/drop", h.DropNode)
	pages.POST("/:page/duplicate", h.DuplicateNode)
	pages.PATCH("/:page/props", h.UpdateProps)
	pages.GET("/:page/flows", h.ListFlows)
	pages.POST("/:page/flows", h.UpsertFlow)
	pages.PUT("/:page/flows/:flow", h.UpsertFlow)
	pages.DELETE("/:page/flows/:flow", h.DeleteFlow)

	// Custom library
	library := r.Group("/library")
	library.GET("", h.ListLibrary)
	library.POST("", h.SaveToLibrary)
	library.PUT("", h.UpsertLibrary)
	library.POST("/seed", h.SeedLibrary)
	library.GET("/:id", h.GetLibraryEntry)
	library.DELETE("/:id", h.DeleteLibrary)
	library.POST("/:id/insert", h.InsertFromLibrary)

	// Runtime sessions
	sessions := r.Group("/sessions")
	sessions.POST("", h.CreateSession)
	sessions.GET("", h.ListSessions)
	sessions.GET("/:id", h.GetSession)
	sessions.DELETE("/:id", h.DeleteSession)
	sessions.GET("/:id/render", h.RenderSession)
	sessions.GET("/:id/state", h.GetSessionState)
	sessions.PUT("/:id/state", h.SetSessionValue)
	sessions.POST("/:id/events", h.FireEvent)
	sessions.POST("/:id/navigate", h.NavigateSession)
	sessions.POST("/:id/flows/:flow/run", h.RunFlow)

	// AI
	aiGroup := r.Group("/ai")
	aiGroup.POST("/chat", h.Chat)
	aiGroup.POST("/layout", h.GenerateLayout)
	aiGroup.POST("/data", h.GenerateData)
	aiGroup.POST("/code", h.GenerateCode)
}
