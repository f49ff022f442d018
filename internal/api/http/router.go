package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pispas/incident-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Incidents      *handlers.IncidentsHandler
	PurchaseOrders *handlers.PurchaseOrdersHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	incidents := app.Group("/incidents")
	incidents.Get("/", cfg.Incidents.ListIncidents)
	incidents.Post("/", cfg.Incidents.CreateIncident)
	incidents.Get("/:id", cfg.Incidents.GetIncident)
	incidents.Put("/:id", cfg.Incidents.UpdateIncident)
	incidents.Delete("/:id", cfg.Incidents.DeleteIncident)
	incidents.Get("/:id/notes", cfg.Incidents.ListNotes)
	incidents.Post("/:id/notes", cfg.Incidents.AddNote)
	incidents.Get("/:id/history", cfg.Incidents.ListHistory)

	orders := app.Group("/purchase-orders")
	orders.Get("/", cfg.PurchaseOrders.ListOrders)
	orders.Post("/", cfg.PurchaseOrders.CreateOrder)
	orders.Get("/:id", cfg.PurchaseOrders.GetOrder)
	orders.Put("/:id", cfg.PurchaseOrders.UpdateOrder)
	orders.Delete("/:id", cfg.PurchaseOrders.DeleteOrder)
	orders.Post("/:id/lineas", cfg.PurchaseOrders.AddLine)
	orders.Put("/:id/lineas/:lineaId", cfg.PurchaseOrders.UpdateLine)
	orders.Delete("/:id/lineas/:lineaId", cfg.PurchaseOrders.DeleteLine)
	orders.Post("/:id/recibir-completo", cfg.PurchaseOrders.ReceiveComplete)
	orders.Post("/:id/recibir-parcial", cfg.PurchaseOrders.ReceivePartial)
}
