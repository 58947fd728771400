package main

import (
	"errors"
	"os"

	quotedoc "github.com/alnah/go-quotedoc"
	"github.com/alnah/go-quotedoc/internal/config"
)

// Exit codes for the quotedoc CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, quotedoc.ErrBrowserConnect) ||
		errors.Is(err, quotedoc.ErrPageCreate) ||
		errors.Is(err, quotedoc.ErrPageLoad) ||
		errors.Is(err, quotedoc.ErrRasterizeFailed) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadDocument) ||
		errors.Is(err, ErrWriteArtifact) ||
		errors.Is(err, quotedoc.ErrDocumentNotFound) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrBadExchangeRate) ||
		errors.Is(err, config.ErrDuplicateCurrency) ||
		errors.Is(err, quotedoc.ErrNilDocument) ||
		errors.Is(err, quotedoc.ErrInvalidFormat) ||
		errors.Is(err, quotedoc.ErrInvalidType) ||
		errors.Is(err, quotedoc.ErrInvalidCurrency) ||
		errors.Is(err, quotedoc.ErrEmptyNumber) ||
		errors.Is(err, quotedoc.ErrNoCounterparty) ||
		errors.Is(err, quotedoc.ErrNoLineItems) ||
		errors.Is(err, quotedoc.ErrDiscountOutOfRange) ||
		errors.Is(err, quotedoc.ErrNegativeShipping) {
		return ExitUsage
	}

	return ExitGeneral
}
