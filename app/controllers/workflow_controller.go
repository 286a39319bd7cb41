package controllers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/RegioJobs/RegioJobs/internal/pkg/billing"
	"github.com/RegioJobs/RegioJobs/internal/pkg/database"
	"github.com/RegioJobs/RegioJobs/internal/pkg/jobqueue"
	"github.com/RegioJobs/RegioJobs/internal/pkg/usercontext"
)

// WorkflowController exposes the billing engine over POST /api/v1/workflow/:action.
// Every action takes a JSON parameter object and answers with a typed result
// or a structured error.
type WorkflowController struct {
	dispatcher *billing.Dispatcher
}

func NewWorkflowController() *WorkflowController {
	svc := billing.NewServiceFromDB(database.GetDB(), jobqueue.GetGlobalQueue())
	return &WorkflowController{dispatcher: billing.NewDispatcher(svc)}
}

// NewWorkflowControllerWithDispatcher is used by tests to inject a dispatcher
// over a fake engine.
func NewWorkflowControllerWithDispatcher(d *billing.Dispatcher) *WorkflowController {
	return &WorkflowController{dispatcher: d}
}

func (wc *WorkflowController) HandleAction(c *fiber.Ctx) error {
	action := billing.Action(c.Params("action"))

	var params json.RawMessage
	if len(c.Body()) > 0 {
		if !json.Valid(c.Body()) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "validation_error",
				"message": "Request body must be a JSON object",
			})
		}
		params = json.RawMessage(c.Body())
	} else {
		params = json.RawMessage("{}")
	}

	log.Infof("[Workflow] %s requested by %s", action, usercontext.GetUsername(c))

	result, err := wc.dispatcher.Dispatch(c.UserContext(), action, params)
	if err != nil {
		return writeWorkflowError(c, action, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"action":  action,
		"result":  result,
	})
}

func (wc *WorkflowController) HandleListActions(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"actions": wc.dispatcher.Actions(),
	})
}

func writeWorkflowError(c *fiber.Ctx, action billing.Action, err error) error {
	switch {
	case billing.IsUnknownAction(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "unknown_action",
			"message": err.Error(),
		})
	case billing.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation_error",
			"message": err.Error(),
		})
	case billing.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "not_found",
			"message": err.Error(),
		})
	case billing.IsConflict(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "conflict",
			"message": err.Error(),
		})
	default:
		log.Errorf("[Workflow] %s failed: %v", action, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "Workflow execution failed",
		})
	}
}
