package controllers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/RegioJobs/RegioJobs/app/repository"
	"github.com/RegioJobs/RegioJobs/internal/pkg/docstore"
	"github.com/RegioJobs/RegioJobs/internal/pkg/viewmodel"
)

// InvoiceController serves the rendered invoice document. It reads through
// the repository layer only; all invoice writes happen in the billing engine.
type InvoiceController struct {
	invoiceRepo repository.InvoiceRepository
	archive     *docstore.Client
}

var invoiceController *InvoiceController

// InitializeInvoiceController initializes the global invoice controller with
// repositories and the optional document archive.
func InitializeInvoiceController() {
	repos := repository.GetGlobalRepositories()

	var archive *docstore.Client
	cfg, err := docstore.LoadConfig()
	if err != nil {
		log.Warnf("[Invoice] document archive disabled: %v", err)
	} else if cfg.IsEnabled() {
		archive, err = docstore.NewClient(cfg)
		if err != nil {
			log.Warnf("[Invoice] document archive unavailable: %v", err)
			archive = nil
		}
	}

	invoiceController = &InvoiceController{
		invoiceRepo: repos.Invoice,
		archive:     archive,
	}
}

// GetInvoiceController returns the global invoice controller instance
func GetInvoiceController() *InvoiceController {
	if invoiceController == nil {
		InitializeInvoiceController()
	}
	return invoiceController
}

// HandleInvoiceDownload - Adapter for the invoice document route
func HandleInvoiceDownload(c *fiber.Ctx) error {
	return GetInvoiceController().HandleDownload(c)
}

func (ic *InvoiceController) HandleDownload(c *fiber.Ctx) error {
	number := strings.TrimSpace(c.Params("number"))
	if number == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation_error",
			"message": "Invoice number required",
		})
	}

	invoice, err := ic.invoiceRepo.GetByNumber(number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   "not_found",
				"message": "Invoice not found",
			})
		}
		log.Errorf("[Invoice] loading %s failed: %v", number, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "Could not load invoice",
		})
	}

	vm := viewmodel.NewInvoice(invoice)
	if err := c.Render("invoice", vm); err != nil {
		log.Errorf("[Invoice] rendering %s failed: %v", number, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "Could not render invoice",
		})
	}

	if ic.archive != nil {
		html := make([]byte, len(c.Response().Body()))
		copy(html, c.Response().Body())
		go func() {
			if err := ic.archive.ArchiveInvoice(context.Background(), invoice.InvoiceNumber, invoice.CreatedAt, html); err != nil {
				log.Warnf("[Invoice] archiving %s failed: %v", invoice.InvoiceNumber, err)
			}
		}()
	}

	return nil
}
