package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-audit-api/internal/application/auth"
	"github.com/jhoicas/inventario-audit-api/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ItemUC      *inventory.ItemUseCase
	UpdateItem  *inventory.UpdateItemUseCase
	ChangeLogUC *inventory.ChangeLogUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC, deps.UpdateItem, deps.ChangeLogUC)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", itemHandler.Update)
	items.Patch("/:id", itemHandler.Patch)
	items.Delete("/:id", itemHandler.Delete)
	items.Get("/:id/changelog", itemHandler.ChangeLog)
	items.Get("/:id/changelog/verify", itemHandler.Verify)
	items.Get("/:id/changelog.pdf", itemHandler.ChangeLogPDF)

	users := protected.Group("/users")
	users.Get("/:id", authHandler.GetUser)

	changelogs := protected.Group("/changelogs")
	changeLogHandler := NewChangeLogHandler(deps.ChangeLogUC)
	changelogs.Get("/", changeLogHandler.List)
	changelogs.Get("/:id", changeLogHandler.GetByID)
}
