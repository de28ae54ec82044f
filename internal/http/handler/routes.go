package handler

import (
	"github.com/gofiber/fiber/v2"

	"extranet/internal/http/middleware"
	"extranet/internal/model"
	"extranet/internal/service"
)

// Deps are the services the HTTP layer exposes.
type Deps struct {
	DB        Pinger
	Tokens    middleware.TokenParser
	Documents service.DocumentService
	Bulk      service.BulkService
	Users     service.UserService
	Auth      service.AuthService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	app.Post("/auth/login", Login(d.Auth))

	authed := middleware.RequireAuth(d.Tokens)
	admin := middleware.RequireRole(model.RoleAdmin)

	app.Get("/users", authed, admin, ListUsers(d.Users))

	docs := app.Group("/documents", authed)
	docs.Get("/", ListDocuments(d.Documents))
	docs.Post("/", admin, UploadDocument(d.Documents))
	docs.Get("/recent", RecentUploads(d.Documents))
	docs.Get("/:id", GetDocument(d.Documents))
	docs.Get("/:id/download", DownloadDocument(d.Documents))
	docs.Get("/:id/content", DocumentContent(d.Documents))
	docs.Delete("/:id", admin, DeleteDocument(d.Documents))

	bulk := app.Group("/bulk", authed, admin)
	bulk.Post("/match", MatchFiles(d.Bulk))
	bulk.Post("/upload", BulkUpload(d.Bulk))
}
