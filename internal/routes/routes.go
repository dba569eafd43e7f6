package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/allrev/internal/config"
	"github.com/example/allrev/internal/handlers"
	"github.com/example/allrev/internal/middleware"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	clientHandler := handlers.NewClientHandler(db)
	functionalityHandler := handlers.NewFunctionalityHandler(db)
	orderHandler := handlers.NewOrderHandler(db)
	installmentHandler := handlers.NewInstallmentHandler(db)
	responsibilityHandler := handlers.NewResponsibilityHandler(db)
	reportHandler := handlers.NewReportHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Everything below is tenant-scoped through the authenticated user.
	protected := api.Group("", middleware.AuthMiddleware(db, cfg))

	users := protected.Group("/users", middleware.RequireAdmin)
	users.Get("/", userHandler.ListUsers)
	users.Post("/", userHandler.CreateUser)
	users.Get("/:id", userHandler.GetUser)
	users.Put("/:id", userHandler.UpdateUser)
	users.Delete("/:id", userHandler.DeleteUser)

	clients := protected.Group("/clients")
	clients.Get("/", clientHandler.ListClients)
	clients.Post("/", clientHandler.CreateClient)
	clients.Get("/:id", clientHandler.GetClient)
	clients.Put("/:id", clientHandler.UpdateClient)
	clients.Delete("/:id", clientHandler.DeleteClient)

	functionalities := protected.Group("/functionalities")
	functionalities.Get("/", functionalityHandler.ListFunctionalities)
	functionalities.Post("/", functionalityHandler.CreateFunctionality)
	functionalities.Get("/:id", functionalityHandler.GetFunctionality)
	functionalities.Put("/:id", functionalityHandler.UpdateFunctionality)
	functionalities.Delete("/:id", functionalityHandler.DeleteFunctionality)

	orders := protected.Group("/orders")
	orders.Get("/", orderHandler.ListOrders)
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Put("/:id", orderHandler.UpdateOrder)
	orders.Delete("/:id", orderHandler.DeleteOrder)
	orders.Get("/:id/installments", installmentHandler.ListInstallments)
	orders.Post("/:id/installments/:seq/pay", installmentHandler.PayInstallment)

	items := protected.Group("/order-items")
	items.Patch("/:id/status", orderHandler.UpdateItemStatus)
	items.Get("/:id/responsibilities", responsibilityHandler.ListResponsibilities)
	items.Post("/:id/responsibilities", responsibilityHandler.AssignUser)
	items.Put("/:id/responsibilities/:assignmentId", responsibilityHandler.UpdateResponsibility)
	items.Delete("/:id/responsibilities/:assignmentId", responsibilityHandler.RemoveResponsibility)

	reports := protected.Group("/reports")
	reports.Get("/summary", reportHandler.Summary)
	reports.Get("/receivables", reportHandler.Receivables)
}
