package quotedoc

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// dec builds a decimal from a string, failing the test on bad input.
func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

// testCustomer is the shared customer fixture.
func testCustomer() Customer {
	return Customer{
		ID:      "cust-1",
		Name:    "Li Wei",
		Company: "Acme Trading Co.",
		Address: "88 Harbor Road, Shanghai",
		Phone:   "+86 21 5555 0000",
		Email:   "liwei@acme.example",
		TaxID:   "913100000000000000",
	}
}

// testDocument builds a valid three-item quote: quantities [2,1,5], prices
// [10.00, 50.00, 3.00], discount 10%, shipping 20.
func testDocument(t *testing.T) *Document {
	t.Helper()
	doc := NewDocument(TypeProforma, "PI2024001", testCustomer())
	doc.Currency = "USD"
	doc.DateIssued = "2024-03-01"
	doc.ValidUntil = "2024-03-31"
	doc.DiscountRate = dec(t, "10")
	doc.ShippingCost = dec(t, "20")

	quantities := []string{"2", "1", "5"}
	prices := []string{"10.00", "50.00", "3.00"}
	for i := range quantities {
		item := doc.AddLineItem()
		qty, price := dec(t, quantities[i]), dec(t, prices[i])
		doc.UpdateLineItem(item.ID, func(li *LineItem) {
			li.Name = "Item"
			li.Quantity = qty
			li.UnitPrice = price
		})
	}
	return doc
}

func TestUpdateLineItemRecomputesLineAmount(t *testing.T) {
	tests := []struct {
		name      string
		quantity  string
		unitPrice string
		want      string
	}{
		{"integers", "2", "10.00", "20.00"},
		{"fractional price", "3", "0.10", "0.30"},
		{"fractional both", "0.5", "0.30", "0.15"},
		{"zero quantity", "0", "99.99", "0.00"},
		{"large values", "100000", "12345.67", "1234567000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument(TypeQuotation, "Q-1", testCustomer())
			item := doc.AddLineItem()

			doc.UpdateLineItem(item.ID, func(li *LineItem) {
				li.Quantity = dec(t, tt.quantity)
				li.UnitPrice = dec(t, tt.unitPrice)
			})

			got := doc.Items[0].LineAmount
			if !got.Equal(dec(t, tt.want)) {
				t.Errorf("LineAmount = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUpdateLineItemOverwritesManualLineAmount(t *testing.T) {
	doc := NewDocument(TypeQuotation, "Q-1", testCustomer())
	item := doc.AddLineItem()

	// LineAmount is never independently settable: a value written inside
	// the mutation is discarded by the recompute.
	doc.UpdateLineItem(item.ID, func(li *LineItem) {
		li.Quantity = dec(t, "4")
		li.UnitPrice = dec(t, "2.50")
		li.LineAmount = dec(t, "999")
	})

	if got := doc.Items[0].LineAmount; !got.Equal(dec(t, "10.00")) {
		t.Errorf("LineAmount = %s, want 10.00", got)
	}
}

func TestUpdateLineItemMissingIDIsNoOp(t *testing.T) {
	doc := testDocument(t)
	before := doc.Totals()

	doc.UpdateLineItem("no-such-id", func(li *LineItem) {
		li.Quantity = dec(t, "1000")
	})

	if got := doc.Totals(); !got.GrandTotal.Equal(before.GrandTotal) {
		t.Errorf("totals changed after no-op update: %s != %s", got.GrandTotal, before.GrandTotal)
	}
}

func TestRemoveLineItem(t *testing.T) {
	doc := testDocument(t)
	id := doc.Items[1].ID

	doc.RemoveLineItem(id)
	if len(doc.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(doc.Items))
	}
	for _, item := range doc.Items {
		if item.ID == id {
			t.Errorf("item %s still present after removal", id)
		}
	}

	// Removing an absent id is a silent no-op.
	doc.RemoveLineItem("no-such-id")
	if len(doc.Items) != 2 {
		t.Errorf("len(Items) = %d after no-op removal, want 2", len(doc.Items))
	}
}

func TestAddLineItemStartsZeroed(t *testing.T) {
	doc := NewDocument(TypeQuotation, "Q-1", testCustomer())
	item := doc.AddLineItem()

	if item.ID == "" {
		t.Error("new item has no id")
	}
	if !item.Quantity.IsZero() || !item.UnitPrice.IsZero() || !item.LineAmount.IsZero() {
		t.Errorf("new item not zeroed: %+v", item)
	}
}

func TestApplyProductDefaultsLastWriteWins(t *testing.T) {
	item := LineItem{
		ID:          "item-1",
		SKU:         "manual-sku",
		Name:        "Manually edited name",
		Description: "manual description",
		Unit:        "box",
		Quantity:    decimal.NewFromInt(7),
		UnitPrice:   decimal.NewFromInt(99),
	}
	p := Product{
		SKU:         "CAT-001",
		Name:        "Catalog Widget",
		Description: "from the catalog",
		Unit:        "pc",
		UnitPrice:   decimal.NewFromInt(12),
	}

	got := ApplyProductDefaults(item, p)

	if got.SKU != "CAT-001" || got.Name != "Catalog Widget" || got.Unit != "pc" {
		t.Errorf("catalog fields not applied: %+v", got)
	}
	if got.Description != "from the catalog" {
		t.Errorf("Description = %q, manual override should be discarded", got.Description)
	}
	if !got.UnitPrice.Equal(decimal.NewFromInt(12)) {
		t.Errorf("UnitPrice = %s, want 12", got.UnitPrice)
	}
	// Identity and quantity survive reselection.
	if got.ID != "item-1" || !got.Quantity.Equal(decimal.NewFromInt(7)) {
		t.Errorf("id/quantity not preserved: %+v", got)
	}
}

func TestSelectProductRecomputesLineAmount(t *testing.T) {
	doc := NewDocument(TypeQuotation, "Q-1", testCustomer())
	item := doc.AddLineItem()
	doc.UpdateLineItem(item.ID, func(li *LineItem) {
		li.Quantity = dec(t, "3")
		li.UnitPrice = dec(t, "100")
	})

	doc.SelectProduct(item.ID, Product{SKU: "S", Name: "N", UnitPrice: dec(t, "2.50")})

	if got := doc.Items[0].LineAmount; !got.Equal(dec(t, "7.50")) {
		t.Errorf("LineAmount = %s, want 7.50", got)
	}
}

func TestDocumentTotals(t *testing.T) {
	doc := testDocument(t)
	totals := doc.Totals()

	if !totals.Subtotal.Equal(dec(t, "85.00")) {
		t.Errorf("Subtotal = %s, want 85.00", totals.Subtotal)
	}
	if !totals.DiscountAmount.Equal(dec(t, "8.50")) {
		t.Errorf("DiscountAmount = %s, want 8.50", totals.DiscountAmount)
	}
	if !totals.GrandTotal.Equal(dec(t, "96.50")) {
		t.Errorf("GrandTotal = %s, want 96.50", totals.GrandTotal)
	}
}

func TestComputeTotalsInvariants(t *testing.T) {
	tests := []struct {
		name     string
		amounts  []string
		discount string
		shipping string
	}{
		{"empty", nil, "0", "0"},
		{"single item", []string{"10.50"}, "0", "0"},
		{"many items", []string{"1.11", "2.22", "3.33", "4.44"}, "15", "7.25"},
		{"full discount", []string{"100"}, "100", "0"},
		{"discount above 100 propagates", []string{"200"}, "150", "0"},
		{"negative discount propagates", []string{"50"}, "-10", "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var items []LineItem
			want := decimal.Zero
			for _, a := range tt.amounts {
				amt := dec(t, a)
				items = append(items, LineItem{LineAmount: amt})
				want = want.Add(amt)
			}

			totals := ComputeTotals(items, dec(t, tt.discount), dec(t, tt.shipping))

			if !totals.Subtotal.Equal(want) {
				t.Errorf("Subtotal = %s, want %s", totals.Subtotal, want)
			}
			wantDiscount := want.Mul(dec(t, tt.discount)).Div(decimal.NewFromInt(100))
			if !totals.DiscountAmount.Equal(wantDiscount) {
				t.Errorf("DiscountAmount = %s, want %s", totals.DiscountAmount, wantDiscount)
			}
			wantGrand := want.Sub(wantDiscount).Add(dec(t, tt.shipping))
			if !totals.GrandTotal.Equal(wantGrand) {
				t.Errorf("GrandTotal = %s, want %s", totals.GrandTotal, wantGrand)
			}
		})
	}
}

func TestSnapshotImmutableAfterCustomerEdit(t *testing.T) {
	customer := testCustomer()
	doc := NewDocument(TypeProforma, "PI-1", customer)

	customer.Company = "Renamed Holdings Ltd."
	customer.Address = "1 New Street"

	if doc.Counterparty.Company != "Acme Trading Co." {
		t.Errorf("snapshot company = %q, edits must not propagate", doc.Counterparty.Company)
	}
	if doc.Counterparty.Address != "88 Harbor Road, Shanghai" {
		t.Errorf("snapshot address = %q, edits must not propagate", doc.Counterparty.Address)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(t *testing.T, d *Document)
		wantErr error
	}{
		{"valid", func(t *testing.T, d *Document) {}, nil},
		{"empty number", func(t *testing.T, d *Document) { d.Number = "  " }, ErrEmptyNumber},
		{"bad type", func(t *testing.T, d *Document) { d.Type = "memo" }, ErrInvalidType},
		{"bad currency", func(t *testing.T, d *Document) { d.Currency = "XXX" }, ErrInvalidCurrency},
		{"no counterparty", func(t *testing.T, d *Document) { d.Counterparty = nil }, ErrNoCounterparty},
		{"no items", func(t *testing.T, d *Document) { d.Items = nil }, ErrNoLineItems},
		{"discount negative", func(t *testing.T, d *Document) { d.DiscountRate = dec(t, "-1") }, ErrDiscountOutOfRange},
		{"discount above 100", func(t *testing.T, d *Document) { d.DiscountRate = dec(t, "101") }, ErrDiscountOutOfRange},
		{"negative shipping", func(t *testing.T, d *Document) { d.ShippingCost = dec(t, "-5") }, ErrNegativeShipping},
		{"contract in foreign currency", func(t *testing.T, d *Document) {
			d.Type = TypeContract
			d.Currency = "USD"
		}, ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testDocument(t)
			tt.mutate(t, doc)

			err := doc.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNilDocument(t *testing.T) {
	var doc *Document
	if err := doc.Validate(); !errors.Is(err, ErrNilDocument) {
		t.Errorf("Validate() = %v, want ErrNilDocument", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := testDocument(t)
	clone := doc.Clone()

	clone.Items[0].Name = "changed"
	clone.Counterparty.Company = "changed"

	if doc.Items[0].Name == "changed" {
		t.Error("clone shares line-item backing array with original")
	}
	if doc.Counterparty.Company == "changed" {
		t.Error("clone shares counterparty with original")
	}
}

func TestConvertToContract(t *testing.T) {
	doc := testDocument(t) // USD quote
	rate := dec(t, "7.20")

	contract := doc.ConvertToContract("HT2024001", rate)

	if contract.Type != TypeContract {
		t.Fatalf("Type = %q, want contract", contract.Type)
	}
	if contract.Currency != DomesticCurrency {
		t.Errorf("Currency = %q, contracts are fixed to %s", contract.Currency, DomesticCurrency)
	}
	if contract.Number != "HT2024001" {
		t.Errorf("Number = %q", contract.Number)
	}
	if contract.ID == doc.ID {
		t.Error("contract reuses the quote's id")
	}

	// 10.00 USD * 7.20 = 72.00; 2 * 72.00 = 144.00
	if got := contract.Items[0].UnitPrice; !got.Equal(dec(t, "72.00")) {
		t.Errorf("UnitPrice = %s, want 72.00", got)
	}
	if got := contract.Items[0].LineAmount; !got.Equal(dec(t, "144.00")) {
		t.Errorf("LineAmount = %s, want 144.00", got)
	}
	// shipping 20 * 7.20 = 144.00
	if got := contract.ShippingCost; !got.Equal(dec(t, "144.00")) {
		t.Errorf("ShippingCost = %s, want 144.00", got)
	}

	// Snapshot carries over, original is untouched.
	if contract.Counterparty.Company != doc.Counterparty.Company {
		t.Error("counterparty snapshot did not carry over")
	}
	if doc.Currency != "USD" || doc.Type != TypeProforma {
		t.Error("conversion mutated the source quote")
	}
}

func TestConvertToContractDomesticNoConversion(t *testing.T) {
	doc := testDocument(t)
	doc.Currency = DomesticCurrency

	contract := doc.ConvertToContract("HT-1", dec(t, "7.20"))

	if got := contract.Items[0].UnitPrice; !got.Equal(dec(t, "10.00")) {
		t.Errorf("UnitPrice = %s, domestic documents must not be converted", got)
	}
}
