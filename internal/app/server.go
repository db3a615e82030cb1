package app

import (
	"errors"
	"io"
	"log/slog"

	"dropzone/internal/handlers"
	"dropzone/internal/middleware"
	"dropzone/internal/services"
	"dropzone/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// ServerOptions are the dependencies of the HTTP server.
type ServerOptions struct {
	Log         *slog.Logger
	Products    *services.ProductService
	Carts       *services.CartService
	Auth        *services.AuthService
	Driver      string
	Ping        handlers.Pinger
	CORSOrigins string
	// AccessLog receives one line per request. Nil disables access logging.
	AccessLog io.Writer
}

// NewServer builds the Fiber app with middleware and every route mounted.
func NewServer(opts ServerOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "dropzone",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(opts.Log),
	})

	app.Use(requestid.New())
	if opts.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
			Output: opts.AccessLog,
		}))
	}
	app.Use(middleware.Metrics())
	app.Use(recover.New())

	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		// Credentials cannot be combined with a wildcard origin.
		AllowCredentials: origins != "*",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handlers.NewHealthHandler(opts.Driver, opts.Ping).RegisterRoutes(app)

	api := app.Group("/api")
	handlers.NewAuthHandler(opts.Auth, opts.Log).RegisterRoutes(api)
	handlers.NewProductHandler(opts.Products, opts.Log).RegisterRoutes(api)
	handlers.NewCartHandler(opts.Carts, opts.Log).RegisterRoutes(api)

	return app
}

func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("unhandled error", "error", err, "method", c.Method(), "path", c.Path())
		}
		return c.Status(code).JSON(fiber.Map{"message": message})
	}
}
