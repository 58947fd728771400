package quotedoc

import "errors"

// Sentinel errors for library operations.
var (
	// Export pipeline errors.
	ErrExportInFlight  = errors.New("an export is already in flight")
	ErrRenderFailed    = errors.New("template rendering failed")
	ErrRasterizeFailed = errors.New("rasterization failed")
	ErrEmptyBitmap     = errors.New("rasterizer produced an empty bitmap")
	ErrAssembleFailed  = errors.New("artifact assembly failed")

	// Browser errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Document validation errors. These block save, not export.
	ErrNilDocument        = errors.New("document cannot be nil")
	ErrNoCounterparty     = errors.New("document has no counterparty snapshot")
	ErrNoLineItems        = errors.New("document has no line items")
	ErrEmptyNumber        = errors.New("document number cannot be empty")
	ErrInvalidType        = errors.New("invalid document type")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrDiscountOutOfRange = errors.New("discount rate outside 0-100")
	ErrNegativeShipping   = errors.New("shipping cost cannot be negative")

	// Export request errors.
	ErrInvalidFormat = errors.New("invalid export format")

	// Store errors.
	ErrDocumentNotFound = errors.New("document not found")
	ErrDraftNotFound    = errors.New("draft not found")

	// Catalog errors.
	ErrProductNotFound  = errors.New("product not found")
	ErrCustomerNotFound = errors.New("customer not found")
)
