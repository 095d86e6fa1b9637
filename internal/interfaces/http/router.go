package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName string
	ProductUC   ProductService
	CatalogUC   CatalogService
	AuthUC      AuthService
	UserUC      UserService
	Brands      ResourceService[*entity.Brand]
	Models      ResourceService[*entity.Model]
	Colors      ResourceService[*entity.Color]
	Sizes       ResourceService[*entity.Size]
	JWTSecret   string
}

// Router registra las rutas de la API.
// Lecturas del catálogo son públicas; toda escritura del catálogo exige rol admin.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	api := app.Group("/api")
	authn := AuthMiddleware(deps.JWTSecret)
	adminOnly := []fiber.Handler{authn, RequireRole(entity.RoleAdmin)}

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Products: las rutas fijas van antes de /:id
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	products.Get("/", productHandler.List)
	products.Get("/export", guarded(adminOnly, catalogHandler.Export)...)
	products.Post("/import", guarded(adminOnly, catalogHandler.Import)...)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/pdf", catalogHandler.SpecSheet)
	products.Post("/", guarded(adminOnly, productHandler.Create)...)
	products.Put("/:id", guarded(adminOnly, productHandler.Update)...)
	products.Delete("/:id", guarded(adminOnly, productHandler.Delete)...)

	// Entidades de referencia: mismo handler genérico para las cuatro
	mountResource(api, "/brands", deps.Brands, adminOnly...)
	mountResource(api, "/models", deps.Models, adminOnly...)
	mountResource(api, "/colors", deps.Colors, adminOnly...)
	mountResource(api, "/sizes", deps.Sizes, adminOnly...)

	// Users: perfil propio con cualquier rol, administración solo admin
	users := api.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/me", authn, userHandler.Me)
	users.Put("/me", authn, userHandler.UpdateMe)
	users.Put("/me/addresses", authn, userHandler.ReplaceAddresses)
	users.Get("/", guarded(adminOnly, userHandler.List)...)
	users.Post("/", guarded(adminOnly, userHandler.Create)...)
	users.Get("/:id", guarded(adminOnly, userHandler.GetByID)...)
	users.Put("/:id", guarded(adminOnly, userHandler.Update)...)
	users.Delete("/:id", guarded(adminOnly, userHandler.Delete)...)

	api.Get("/roles", guarded(adminOnly, userHandler.ListRoles)...)
}
