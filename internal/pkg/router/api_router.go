package router

import (
	"github.com/RegioJobs/RegioJobs/app/controllers"
	"github.com/RegioJobs/RegioJobs/internal/pkg/constants"
	"github.com/RegioJobs/RegioJobs/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// Workflow API v1 routes
	v1 := api.Group("/v1", middleware.APIKeyAuthMiddleware(true))
	workflow := controllers.NewWorkflowController()
	v1.Post("/workflow/:action", workflow.HandleAction)
	v1.Get("/workflow/actions", workflow.HandleListActions)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
