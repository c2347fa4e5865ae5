package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stockmaster/internal/application/auth"
	"github.com/jhoicas/stockmaster/internal/application/inventory"
	"github.com/jhoicas/stockmaster/internal/application/usecase"
	"github.com/jhoicas/stockmaster/internal/infrastructure/metrics"
	"github.com/jhoicas/stockmaster/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	DocumentUC  *inventory.DocumentUseCase
	StockUC     *inventory.StockUseCase
	ProductUC   *usecase.ProductUseCase
	WarehouseUC *usecase.WarehouseUseCase
	AuthUC      *auth.AuthUseCase // opcional: sin él no se exponen login ni usuarios
	Metrics     *metrics.Metrics  // opcional
	JWTSecret   string
	JWTIssuer   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(requestMetrics(deps.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})))
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	readers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleAuditor)
	operators := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	admins := RequireRole(jwt.RoleAdmin)

	if deps.AuthUC != nil {
		authHandler := NewAuthHandler(deps.AuthUC)
		app.Post("/auth/login", authHandler.Login)
		users := api.Group("/users", admins)
		users.Post("/", authHandler.Register)
		users.Get("/", authHandler.ListUsers)
	}

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", admins, productHandler.Create)
	products.Get("/", readers, productHandler.List)
	products.Get("/low-stock", readers, productHandler.LowStock)
	products.Get("/:id", readers, productHandler.GetByID)

	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", admins, warehouseHandler.Create)
	warehouses.Get("/", readers, warehouseHandler.List)
	warehouses.Get("/:id", readers, warehouseHandler.GetByID)
	warehouses.Post("/:id/locations", admins, warehouseHandler.CreateLocation)
	warehouses.Get("/:id/locations", readers, warehouseHandler.ListLocations)

	documents := api.Group("/documents")
	documentHandler := NewDocumentHandler(deps.DocumentUC)
	documents.Post("/", operators, documentHandler.Create)
	documents.Get("/", readers, documentHandler.List)
	documents.Get("/:id", readers, documentHandler.GetByID)
	documents.Patch("/:id", operators, documentHandler.Update)
	documents.Delete("/:id", operators, documentHandler.Delete)
	documents.Post("/:id/lines", operators, documentHandler.AddLine)
	documents.Delete("/:id/lines/:lineId", operators, documentHandler.RemoveLine)
	documents.Post("/:id/actions/:action", operators, documentHandler.Transition)

	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC)
	stock.Get("/availability", readers, stockHandler.Availability)
	stock.Get("/locations/:id", readers, stockHandler.LocationAvailability)
	stock.Get("/history", readers, stockHandler.History)
	stock.Get("/balance", readers, stockHandler.Balance)
	stock.Post("/adjustments", admins, stockHandler.Adjust)
	stock.Post("/reconcile", RequireRole(jwt.RoleAdmin, jwt.RoleAuditor), stockHandler.ReconcileAll)
	stock.Post("/reconcile/:productId", RequireRole(jwt.RoleAdmin, jwt.RoleAuditor), stockHandler.Reconcile)
}

// requestMetrics cuenta peticiones por ruta registrada (no por URL, para acotar cardinalidad).
func requestMetrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.ObserveHTTP(c.Method(), c.Route().Path, strconv.Itoa(status), time.Since(start))
		return err
	}
}
