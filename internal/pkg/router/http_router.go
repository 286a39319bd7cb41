package router

import (
	"github.com/RegioJobs/RegioJobs/app/controllers"
	"github.com/RegioJobs/RegioJobs/internal/pkg/constants"
	"github.com/RegioJobs/RegioJobs/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Initialize invoice controller with repositories
	controllers.InitializeInvoiceController()

	app.Get(constants.PublicRoute, func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"service": "RegioJobs Billing",
			"status":  "ok",
		})
	})

	// Rechnungsabruf fuer Kunden und Support
	app.Get(constants.InvoiceDownloadRoute, middleware.APIKeyAuthMiddleware(false), controllers.HandleInvoiceDownload)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
