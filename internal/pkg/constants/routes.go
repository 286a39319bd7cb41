package constants

// Static route constants
const (
	PublicRoute          = "/"
	APIRoute             = "/api"
	WorkflowRoute        = "/api/v1/workflow"
	InvoiceDownloadRoute = "/invoices/:number/download"
)
