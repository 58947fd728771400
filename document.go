package quotedoc

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentType distinguishes the quote variants from the contract variant.
type DocumentType string

// Document type constants.
const (
	TypeProforma   DocumentType = "proforma"
	TypeCommercial DocumentType = "commercial"
	TypeQuotation  DocumentType = "quotation"
	TypeContract   DocumentType = "contract"
)

// IsQuote reports whether the type is one of the quote variants.
func (t DocumentType) IsQuote() bool {
	switch t {
	case TypeProforma, TypeCommercial, TypeQuotation:
		return true
	}
	return false
}

// Valid reports whether the type is a known document type.
func (t DocumentType) Valid() bool {
	return t.IsQuote() || t == TypeContract
}

// DomesticCurrency is the currency every contract is fixed to.
// Quotes converted to contracts have their prices converted at the
// configured exchange rate at conversion time, not at render time.
const DomesticCurrency = "CNY"

// SupportedCurrencies is the enumerated set accepted on documents.
var SupportedCurrencies = []string{"USD", "EUR", "GBP", "JPY", DomesticCurrency}

// ValidCurrency reports whether code is in the supported set (case-sensitive).
func ValidCurrency(code string) bool {
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

// Counterparty is an immutable copy of the customer's contact fields taken
// at document-creation time. Later edits to the live customer record never
// change a saved document.
type Counterparty struct {
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
	Company    string `json:"company"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	TaxID      string `json:"taxId"`
}

// LineItem is one priced row of a document.
// LineAmount is always derived from Quantity and UnitPrice; it is recomputed
// on every mutation and never independently settable.
type LineItem struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"` // markdown allowed
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineAmount  decimal.Decimal `json:"lineAmount"`
}

// Totals holds the derived monetary totals of a document.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountRate   decimal.Decimal `json:"discountRate"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	ShippingCost   decimal.Decimal `json:"shippingCost"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
}

// Document is a quote or contract record subject to export.
type Document struct {
	ID     string       `json:"id"`
	Number string       `json:"number"` // user-editable, format <prefix><year-or-date><sequence>
	Type   DocumentType `json:"type"`

	DateIssued string `json:"dateIssued"` // ISO 8601
	// ValidUntil is the valid-until date for quotes and the sign date for
	// contracts. No ordering against DateIssued is enforced.
	ValidUntil string `json:"validUntil"`

	Currency     string          `json:"currency"`
	Counterparty *Counterparty   `json:"counterparty"`
	Items        []LineItem      `json:"items"`
	DiscountRate decimal.Decimal `json:"discountRate"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	Notes        string          `json:"notes"` // markdown allowed
}

// NewDocument creates a document of the given type and number, taking the
// counterparty snapshot from the customer record at creation time.
func NewDocument(t DocumentType, number string, customer Customer) *Document {
	snap := SnapshotCounterparty(customer)
	return &Document{
		ID:           uuid.NewString(),
		Number:       number,
		Type:         t,
		Currency:     DomesticCurrency,
		Counterparty: &snap,
	}
}

// AddLineItem appends a new line item with zeroed quantity and price and
// returns it. It never fails.
func (d *Document) AddLineItem() LineItem {
	item := LineItem{ID: uuid.NewString()}
	d.Items = append(d.Items, item)
	return item
}

// UpdateLineItem applies mutate to the item with the given id, then
// unconditionally recomputes its LineAmount. A LineAmount set inside mutate
// is overwritten. Missing ids are a silent no-op.
func (d *Document) UpdateLineItem(id string, mutate func(*LineItem)) {
	for i := range d.Items {
		if d.Items[i].ID != id {
			continue
		}
		if mutate != nil {
			mutate(&d.Items[i])
		}
		d.Items[i].LineAmount = d.Items[i].Quantity.Mul(d.Items[i].UnitPrice)
		return
	}
}

// SelectProduct overwrites the item's catalog-derived fields from the
// product's current values and recomputes LineAmount. Last write wins:
// manual overrides made on the item before reselecting are discarded.
// Missing ids are a silent no-op.
func (d *Document) SelectProduct(itemID string, p Product) {
	d.UpdateLineItem(itemID, func(item *LineItem) {
		*item = ApplyProductDefaults(*item, p)
	})
}

// RemoveLineItem removes the item with the given id. Missing ids are a
// silent no-op.
func (d *Document) RemoveLineItem(id string) {
	for i := range d.Items {
		if d.Items[i].ID == id {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			return
		}
	}
}

// ApplyProductDefaults returns item with sku, name, description, unit, and
// unit price overwritten from the product's current catalog values.
// Last write wins; quantity and id are preserved.
func ApplyProductDefaults(item LineItem, p Product) LineItem {
	item.SKU = p.SKU
	item.Name = p.Name
	item.Description = p.Description
	item.Unit = p.Unit
	item.UnitPrice = p.UnitPrice
	return item
}

// ComputeTotals derives the monetary totals from line items, discount rate,
// and shipping cost:
//
//	subtotal       = sum of line amounts
//	discountAmount = subtotal * discountRate / 100
//	grandTotal     = subtotal - discountAmount + shippingCost
//
// The discount rate is intentionally not clamped to [0,100]; out-of-range
// values propagate mathematically and callers are responsible for validation
// (see Document.Validate).
func ComputeTotals(items []LineItem, discountRate, shippingCost decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineAmount)
	}
	discountAmount := subtotal.Mul(discountRate).Div(decimal.NewFromInt(100))
	return Totals{
		Subtotal:       subtotal,
		DiscountRate:   discountRate,
		DiscountAmount: discountAmount,
		ShippingCost:   shippingCost,
		GrandTotal:     subtotal.Sub(discountAmount).Add(shippingCost),
	}
}

// Totals returns the document's derived monetary totals.
func (d *Document) Totals() Totals {
	return ComputeTotals(d.Items, d.DiscountRate, d.ShippingCost)
}

// Validate checks the document is complete enough to save. Export does not
// call Validate; an incomplete document may still be previewed or exported.
func (d *Document) Validate() error {
	if d == nil {
		return ErrNilDocument
	}
	if strings.TrimSpace(d.Number) == "" {
		return ErrEmptyNumber
	}
	if !d.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, d.Type)
	}
	if !ValidCurrency(d.Currency) {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, d.Currency)
	}
	if d.Type == TypeContract && d.Currency != DomesticCurrency {
		return fmt.Errorf("%w: contracts are fixed to %s", ErrInvalidCurrency, DomesticCurrency)
	}
	if d.Counterparty == nil {
		return ErrNoCounterparty
	}
	if len(d.Items) == 0 {
		return ErrNoLineItems
	}
	if d.DiscountRate.IsNegative() || d.DiscountRate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: %s", ErrDiscountOutOfRange, d.DiscountRate)
	}
	if d.ShippingCost.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeShipping, d.ShippingCost)
	}
	return nil
}

// Clone returns a deep copy of the document. Exports operate on a clone so
// edits made while an export is in flight do not affect it.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	if d.Counterparty != nil {
		snap := *d.Counterparty
		c.Counterparty = &snap
	}
	c.Items = make([]LineItem, len(d.Items))
	copy(c.Items, d.Items)
	return &c
}

// ConvertToContract returns a domestic sales contract derived from a quote.
// Unit prices are converted to the domestic currency at the given exchange
// rate (units of domestic currency per unit of the quote currency) and line
// amounts are recomputed. The counterparty snapshot carries over unchanged.
// Conversion happens here, at conversion time, never at render time.
func (d *Document) ConvertToContract(number string, rate decimal.Decimal) *Document {
	c := d.Clone()
	c.ID = uuid.NewString()
	c.Number = number
	c.Type = TypeContract
	if d.Currency != DomesticCurrency {
		for i := range c.Items {
			c.Items[i].UnitPrice = c.Items[i].UnitPrice.Mul(rate)
			c.Items[i].LineAmount = c.Items[i].Quantity.Mul(c.Items[i].UnitPrice)
		}
		c.ShippingCost = c.ShippingCost.Mul(rate)
	}
	c.Currency = DomesticCurrency
	return c
}
