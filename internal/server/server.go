// Package server wires repositories, services and handlers into the Fiber app.
package server

import (
	"errors"
	"fmt"

	"verokai-pos/internal/config"
	"verokai-pos/internal/handler"
	"verokai-pos/internal/middleware"
	"verokai-pos/internal/model"
	"verokai-pos/internal/repository"
	"verokai-pos/internal/service"
	"verokai-pos/internal/ws"
	"verokai-pos/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const appName = "VEROKAI POS"

// New builds the HTTP application. The hub must be running for live updates
// to reach clients.
func New(cfg *config.Config, db *gorm.DB, hub *ws.Hub) *fiber.App {
	productRepo := repository.NewProductRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)
	reportRepo := repository.NewReportRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)

	invService := service.NewInventoryService(db, productRepo, saleRepo, purchaseRepo, hub)
	reportService := service.NewReportService(reportRepo, saleRepo, purchaseRepo, cfg.Location, cfg.LowStockThreshold)
	authService := service.NewAuthService(userRepo, tokens, hub, cfg.SessionIdleTimeout)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	invHandler := handler.NewInventoryHandler(invService)
	saleHandler := handler.NewSaleHandler(invService, cfg.Location)
	purchaseHandler := handler.NewPurchaseHandler(invService, cfg.Location)
	reportHandler := handler.NewReportHandler(reportService, cfg.Location)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo, privilegeRepo)

	app := fiber.New(fiber.Config{
		AppName:      appName,
		ErrorHandler: errorHandler(cfg.IsProduction()),
	})

	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down"})
		}
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": hub.ClientCount()})
	})

	requireAuth := middleware.RequireAuth(authService)
	can := middleware.RequirePrivilege

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", requireAuth, authHandler.Heartbeat)

	products := api.Group("/productos", requireAuth)
	products.Get("/", can(model.PrivProductView), invHandler.GetProducts)
	products.Get("/barcode/:codigo", can(model.PrivProductView), invHandler.GetProductByBarcode)
	products.Get("/:id", can(model.PrivProductView), invHandler.GetProduct)
	products.Post("/", can(model.PrivProductCreate), invHandler.CreateProduct)
	products.Put("/:id", can(model.PrivProductUpdate), invHandler.UpdateProduct)
	products.Delete("/:id", can(model.PrivProductDelete), invHandler.DeleteProduct)

	sales := api.Group("/ventas", requireAuth)
	sales.Get("/", can(model.PrivSaleView), saleHandler.GetSales)
	sales.Get("/:id", can(model.PrivSaleView), saleHandler.GetSale)
	sales.Post("/", can(model.PrivSaleCreate), saleHandler.CreateSale)

	purchases := api.Group("/compras", requireAuth)
	purchases.Get("/", can(model.PrivPurchaseView), purchaseHandler.GetPurchases)
	purchases.Get("/:id", can(model.PrivPurchaseView), purchaseHandler.GetPurchase)
	purchases.Post("/", can(model.PrivPurchaseCreate), purchaseHandler.CreatePurchase)

	reports := api.Group("/reportes", requireAuth)
	reports.Get("/resumen", can(model.PrivReportView), reportHandler.GetSummary)
	reports.Get("/top-productos", can(model.PrivReportView), reportHandler.GetTopProducts)
	reports.Get("/movimiento", middleware.RequireAnyPrivilege(model.PrivReportView, model.PrivPurchaseView), reportHandler.GetStockMovement)
	reports.Get("/exportar", can(model.PrivReportView), reportHandler.Export)

	users := api.Group("/usuarios", requireAuth)
	users.Get("/", can(model.PrivUserView), userHandler.GetUsers)
	users.Get("/:id", can(model.PrivUserView), userHandler.GetUser)
	users.Post("/", can(model.PrivUserCreate), userHandler.CreateUser)
	users.Put("/:id", can(model.PrivUserUpdate), userHandler.UpdateUser)
	users.Delete("/:id", can(model.PrivUserDelete), userHandler.DeleteUser)
	users.Put("/:id/privilegios", can(model.PrivUserUpdatePrivilege), userHandler.UpdateUserPrivileges)

	api.Get("/roles", requireAuth, roleHandler.GetRoles)
	api.Get("/privilegios", requireAuth, roleHandler.GetPrivileges)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", requireAuth, websocket.New(func(c *websocket.Conn) {
		hub.Register(c)
		defer hub.Unregister(c)

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))

	return app
}

// errorHandler renders unhandled errors as JSON. Internal details are only
// included outside production.
func errorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		zap.L().Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Any("request_id", c.Locals("requestid")),
			zap.Error(err),
		)

		body := fiber.Map{"error": "Error interno del servidor"}
		if !production {
			body["message"] = err.Error()
			body["details"] = fmt.Sprintf("%+v", err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}
