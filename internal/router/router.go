// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/note-vault/internal/handler"
	"github.com/iliyamo/note-vault/internal/middleware"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Auth        *handler.AuthHandler
	Notes       *handler.NoteHandler
	Categories  *handler.CategoryHandler
	Attachments *handler.AttachmentHandler
}

// Register mounts all routes. Unauthenticated operations live under
// /v1/auth; everything else under /v1 requires a Bearer token. The
// limiter runs after JWTAuth on the protected group so its keys carry
// the authenticated user id; on /v1/auth it keys by IP alone. The
// cache middleware, when enabled, only touches GET responses and keys
// by user, so it also goes after JWTAuth. /healthz stays unthrottled.
func Register(e *echo.Echo, h Handlers, jwtSecret string, limiter, cache echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	g := e.Group("/v1/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)
	g.POST("/refresh", h.Auth.Refresh)
	g.POST("/logout", h.Auth.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	if limiter != nil {
		auth.Use(limiter)
	}
	if cache != nil {
		auth.Use(cache)
	}

	auth.GET("/me", h.Auth.Me)

	auth.POST("/notes", h.Notes.Create)
	auth.GET("/notes", h.Notes.List)
	auth.GET("/notes/active", h.Notes.List)
	auth.GET("/notes/archived", h.Notes.ListArchived)
	auth.GET("/notes/:id", h.Notes.Get)
	auth.PATCH("/notes/:id", h.Notes.Update)
	auth.DELETE("/notes/:id", h.Notes.Delete)
	auth.PATCH("/notes/:id/archive", h.Notes.ToggleArchive)
	auth.PATCH("/notes/:id/pin", h.Notes.TogglePin)
	auth.POST("/notes/:noteId/categories/:categoryId", h.Notes.AttachCategory)
	auth.DELETE("/notes/:noteId/categories/:categoryId", h.Notes.DetachCategory)

	auth.GET("/categories", h.Categories.List)
	auth.POST("/categories", h.Categories.Create)
	auth.PATCH("/categories/:id", h.Categories.Update)
	auth.DELETE("/categories/:id", h.Categories.Delete)

	auth.POST("/attachments/note/:noteId", h.Attachments.Upload)
	auth.GET("/attachments/note/:noteId", h.Attachments.ListForNote)
	auth.GET("/attachments/:id", h.Attachments.Get)
	auth.GET("/attachments/:id/download", h.Attachments.Download)
	auth.DELETE("/attachments/:id", h.Attachments.Delete)
}
