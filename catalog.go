package quotedoc

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is a catalog record. Its fields are copied onto a line item when
// the product is selected; the item never re-resolves the product later.
type Product struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Brand       string          `json:"brand"`
}

// Customer is the live customer record. Documents hold a Counterparty
// snapshot of it, never a reference.
type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	TaxID   string `json:"taxId"`
}

// ProductCatalog resolves products at line-item edit time.
type ProductCatalog interface {
	LookupProduct(ctx context.Context, id string) (Product, error)
}

// CustomerDirectory resolves customers at document-creation time.
type CustomerDirectory interface {
	LookupCustomer(ctx context.Context, id string) (Customer, error)
}

// SnapshotCounterparty copies the customer's contact fields into an
// immutable counterparty snapshot.
func SnapshotCounterparty(c Customer) Counterparty {
	return Counterparty{
		CustomerID: c.ID,
		Name:       c.Name,
		Company:    c.Company,
		Address:    c.Address,
		Phone:      c.Phone,
		Email:      c.Email,
		TaxID:      c.TaxID,
	}
}
