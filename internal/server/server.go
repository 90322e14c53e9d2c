package server

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/wichananm65/family-tree-backend/internal/user"
)

const accessLogFormat = "${time} | ${locals:requestid} | ${status} | ${latency} | ${method} | ${path} | ${error}\n"

type Options struct {
	// AccessLog receives one line per request. Nil means stdout.
	AccessLog io.Writer
}

// New assembles the Fiber app: middleware first, then the status route and
// the user routes.
func New(userHandler *user.Handler, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{AppName: "family-tree-backend"})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: accessLogFormat,
		Output: opts.AccessLog,
	}))
	setupCORS(app)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Server is ok"})
	})
	userHandler.RegisterRoutes(app)

	return app
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
}
