package main

import (
	"strings"

	"hostadmin-backend/internal/admin"
	"hostadmin-backend/internal/audit"
	"hostadmin-backend/internal/auth"
	"hostadmin-backend/internal/cache"
	"hostadmin-backend/internal/config"
	"hostadmin-backend/internal/database"
	"hostadmin-backend/internal/hotel"
	"hostadmin-backend/internal/logger"
	"hostadmin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	zlog.Logger = logger.New(cfg.Environment)

	database.Init(cfg)
	cache.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"success": false,
					"message": e.Message,
				})
			}
			// Unexpected failures stay server-side, the client gets the
			// generic message only.
			zlog.Error().Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("unhandled error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth. Register carries the optional middleware: anonymous while
	// no master admin exists, authenticated master admin afterwards.
	api.Post("/auth/register", auth.OptionalJWTMiddleware(cfg), auth.RegisterHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))
	api.Post("/auth/refresh-token", auth.RefreshTokenHandler(cfg))
	api.Post("/auth/reset-system", auth.ResetSystemHandler(cfg))

	// Protected
	protected := api.Group("", auth.JWTMiddleware(cfg))

	protected.Post("/auth/logout", auth.LogoutHandler())
	protected.Get("/auth/profile", auth.ProfileHandler())
	protected.Patch("/auth/password", auth.ChangePasswordHandler())

	// Tenant-scoped reads; scoping happens inside the handlers.
	protected.Get("/properties", admin.ListPropertiesHandler())
	protected.Get("/properties/:id", admin.GetPropertyHandler())
	protected.Get("/users", admin.ListUsersHandler())
	protected.Get("/users/:id", admin.GetUserHandler())
	protected.Put("/users/:id", admin.UpdateUserHandler())
	protected.Delete("/users/:id", admin.DeleteUserHandler())

	// Master admin routes
	adminRoutes := protected.Group("/admin", auth.RequireUserType(models.UserTypeMasterAdmin))

	adminRoutes.Post("/properties", admin.CreatePropertyHandler())
	adminRoutes.Put("/properties/:id", admin.UpdatePropertyHandler())
	adminRoutes.Delete("/properties/:id", admin.DeletePropertyHandler())

	adminRoutes.Post("/users/:id/roles", admin.AssignRolesHandler())

	adminRoutes.Get("/roles", admin.ListRolesHandler())
	adminRoutes.Post("/roles", admin.CreateRoleHandler())
	adminRoutes.Put("/roles/:id", admin.UpdateRoleHandler())
	adminRoutes.Delete("/roles/:id", admin.DeleteRoleHandler())
	adminRoutes.Post("/roles/:id/permissions", admin.AssignPermissionsHandler())

	adminRoutes.Get("/permissions", admin.ListPermissionsHandler())
	adminRoutes.Post("/permissions", admin.CreatePermissionHandler())

	adminRoutes.Get("/audit-logs", auth.RequirePermission("system.audit.view"), audit.ListAuditLogsHandler())

	// Hotel/restaurant operations are stubbed until the business modules land.
	protected.Get("/hotel/rooms", hotel.NotImplementedHandler("Rooms management"))
	protected.Get("/hotel/bookings", hotel.NotImplementedHandler("Bookings management"))
	protected.Get("/restaurant/menu", hotel.NotImplementedHandler("Menu management"))
	protected.Get("/restaurant/orders", hotel.NotImplementedHandler("Order management"))

	zlog.Info().Str("port", cfg.HTTPPort).Msg("server listening")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		zlog.Fatal().Err(err).Msg("server stopped")
	}
}
