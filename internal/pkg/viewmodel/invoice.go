package viewmodel

import (
	"fmt"

	"github.com/RegioJobs/RegioJobs/app/models"
)

// InvoiceLine is one rendered invoice row.
type InvoiceLine struct {
	Description string
	Quantity    int
	UnitPrice   string
	LineTotal   string
}

// Invoice is the view model for the invoice document page.
type Invoice struct {
	Number        string
	Status        string
	CustomerName  string
	CustomerLine1 string
	CustomerLine2 string
	Date          string
	DueDate       string
	Lines         []InvoiceLine
	Subtotal      string
	TaxRate       string
	Tax           string
	Total         string
}

// NewInvoice builds the document view model from an invoice record.
func NewInvoice(inv *models.Invoice) Invoice {
	vm := Invoice{
		Number:        inv.InvoiceNumber,
		Status:        inv.Status,
		CustomerName:  inv.CustomerName,
		CustomerLine1: inv.CustomerStreet,
		CustomerLine2: inv.CustomerCity,
		Date:          inv.CreatedAt.Format("02.01.2006"),
		DueDate:       inv.DueDate.Format("02.01.2006"),
		Subtotal:      euro(inv.SubtotalCents),
		TaxRate:       fmt.Sprintf("%.0f %%", inv.TaxRatePercent),
		Tax:           euro(inv.TaxCents),
		Total:         euro(inv.TotalCents),
	}
	for _, it := range inv.Items {
		vm.Lines = append(vm.Lines, InvoiceLine{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   euro(it.UnitPriceCents),
			LineTotal:   euro(it.LineTotalCents()),
		})
	}
	return vm
}

func euro(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d,%02d €", sign, cents/100, cents%100)
}
