package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/swaggo/swag"

	"github.com/jhoicas/catalogo-api/docs"
	"github.com/jhoicas/catalogo-api/internal/application/auth"
	"github.com/jhoicas/catalogo-api/internal/application/catalog"
	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/resource"
	"github.com/jhoicas/catalogo-api/internal/application/usecase"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/excel"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/httpfetch"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/catalogo-api/internal/infrastructure/pdf"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/postgres"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/catalogo-api/internal/interfaces/http"
	"github.com/jhoicas/catalogo-api/pkg/config"
	"github.com/jhoicas/catalogo-api/pkg/logger"
	"github.com/jhoicas/catalogo-api/pkg/tasks"
)

// @title                       Catálogo API
// @version                     1.0
// @description                 API REST del catálogo: productos, marcas, modelos, colores, tallas, usuarios y roles.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token JWT>
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}

	userRepo := postgres.NewUserRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	productRepo := postgres.NewProductRepository(pool)

	brands := resource.NewService(postgres.NewBrandRepository(pool), func() *entity.Brand { return &entity.Brand{} })
	models := resource.NewService(postgres.NewModelRepository(pool), func() *entity.Model { return &entity.Model{} })
	colors := resource.NewService(postgres.NewColorRepository(pool), func() *entity.Color { return &entity.Color{} })
	sizes := resource.NewService(postgres.NewSizeRepository(pool), func() *entity.Size { return &entity.Size{} })

	userUC := usecase.NewUserUseCase(userRepo, roleRepo, log)

	// Reconciliación de roles antes de aceptar tráfico.
	if err := userUC.EnsureRoles(ctx); err != nil {
		log.Fatal().Err(err).Msg("asegurar roles")
	}
	if cfg.Seed.AdminEmail != "" && cfg.Seed.AdminPassword != "" {
		if _, err := userUC.SeedAdmin(ctx, postgres.NewTxRunner(pool), dto.CreateUserRequest{
			Name:     cfg.Seed.AdminName,
			Email:    cfg.Seed.AdminEmail,
			Password: cfg.Seed.AdminPassword,
		}); err != nil {
			log.Fatal().Err(err).Msg("crear administrador inicial")
		}
	}

	dispatcher := tasks.New(tasks.Config{
		Workers:   cfg.Tasks.Workers,
		QueueSize: cfg.Tasks.QueueSize,
		Timeout:   cfg.Tasks.Timeout,
	}, log)

	s3Client, err := storage.NewS3Client(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("cliente S3")
	}
	imageStore := storage.NewS3ImageStore(s3Client, cfg.Storage, log)

	notifier, err := notify.New(ctx, cfg, userRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("notificador")
	}

	productUC := usecase.NewProductUseCase(productRepo, imageStore, notifier, dispatcher, log)
	catalogUC := catalog.NewUseCase(
		productUC,
		catalog.References{Brands: brands, Models: models, Colors: colors, Sizes: sizes},
		excel.NewProductSheet(),
		infrapdf.NewSpecSheetRenderer(cfg.App.Name),
		httpfetch.New(cfg.PDF.ImageTimeout),
		catalog.Config{ImageTimeout: cfg.PDF.ImageTimeout},
		log,
	)
	authUC := auth.NewAuthUseCase(userRepo, roleRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:      cfg.App.Name,
		BodyLimit: cfg.HTTP.BodyLimit,
	}, log)

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    cfg.App.Name,
	}))
	docs.SwaggerInfo.Title = cfg.App.Name
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.SendString(doc)
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ServiceName: cfg.App.Name,
		ProductUC:   productUC,
		CatalogUC:   catalogUC,
		AuthUC:      authUC,
		UserUC:      userUC,
		Brands:      brands,
		Models:      models,
		Colors:      colors,
		Sizes:       sizes,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Orden: HTTP (no entran tareas nuevas), dispatcher (drena la cola), pool.
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre del dispatcher")
	}
	pool.Close()

	log.Info().Msg("aplicación detenida")
}
