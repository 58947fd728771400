package quotedoc

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestRenderer(t *testing.T) *htmlRenderer {
	t.Helper()
	r, err := newHTMLRenderer(Company{
		Name:        "Example Export Co.",
		Address:     "1 Example Road",
		Email:       "sales@example.com",
		BankAccount: "Bank of Examples, account 123456",
	}, DefaultPixelWidth)
	if err != nil {
		t.Fatalf("newHTMLRenderer() error: %v", err)
	}
	return r
}

func TestRenderQuote(t *testing.T) {
	r := newTestRenderer(t)
	doc := testDocument(t)

	surface, err := r.Render(context.Background(), doc, ModeGenerate)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if surface.WidthPx != DefaultPixelWidth {
		t.Errorf("WidthPx = %d, want %d", surface.WidthPx, DefaultPixelWidth)
	}

	for _, want := range []string{
		"Proforma Invoice",
		"PI2024001",
		"Acme Trading Co.",
		"Example Export Co.",
		"85.00",  // subtotal
		"8.50",   // discount amount
		"96.50",  // grand total
		"mode-generate",
		"Beneficiary Bank Details",
	} {
		if !strings.Contains(surface.HTML, want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}
}

func TestRenderContract(t *testing.T) {
	r := newTestRenderer(t)
	doc := testDocument(t)
	contract := doc.ConvertToContract("HT2024001", dec(t, "7.20"))

	surface, err := r.Render(context.Background(), contract, ModeGenerate)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	for _, want := range []string{"Sales Contract", "HT2024001", "Seller", "Buyer", "Sign Date"} {
		if !strings.Contains(surface.HTML, want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}
	if strings.Contains(surface.HTML, "Valid Until") {
		t.Error("contract rendered with quote date label")
	}
}

func TestRenderModes(t *testing.T) {
	r := newTestRenderer(t)
	doc := testDocument(t)

	for _, mode := range []RenderMode{ModePreview, ModeGenerate, ModeHidden} {
		surface, err := r.Render(context.Background(), doc, mode)
		if err != nil {
			t.Fatalf("Render(%q) error: %v", mode, err)
		}
		if !strings.Contains(surface.HTML, "mode-"+string(mode)) {
			t.Errorf("surface missing mode class for %q", mode)
		}
	}

	if _, err := r.Render(context.Background(), doc, "thumbnail"); !errors.Is(err, ErrRenderFailed) {
		t.Errorf("invalid mode: got %v, want ErrRenderFailed", err)
	}
}

func TestRenderMarkdownNotes(t *testing.T) {
	r := newTestRenderer(t)
	doc := testDocument(t)
	doc.Notes = "Payment due within **30 days**."

	surface, err := r.Render(context.Background(), doc, ModeGenerate)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(surface.HTML, "<strong>30 days</strong>") {
		t.Error("markdown notes not rendered")
	}
}

func TestRenderEscapesRawHTMLInNotes(t *testing.T) {
	r := newTestRenderer(t)
	doc := testDocument(t)
	doc.Notes = `<script>alert("x")</script>`

	surface, err := r.Render(context.Background(), doc, ModeGenerate)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if strings.Contains(surface.HTML, "<script>") {
		t.Error("raw HTML in notes was not escaped")
	}
}

func TestRenderNilDocument(t *testing.T) {
	r := newTestRenderer(t)
	if _, err := r.Render(context.Background(), nil, ModeGenerate); !errors.Is(err, ErrRenderFailed) {
		t.Errorf("nil document: got %v, want ErrRenderFailed", err)
	}
}

func TestRenderUnknownType(t *testing.T) {
	r := newTestRenderer(t)
	doc := testDocument(t)
	doc.Type = "memo"

	if _, err := r.Render(context.Background(), doc, ModeGenerate); !errors.Is(err, ErrInvalidType) {
		t.Errorf("unknown type: got %v, want ErrInvalidType", err)
	}
}

func TestRenderCancelledContext(t *testing.T) {
	r := newTestRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Render(ctx, testDocument(t), ModeGenerate); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context: got %v, want context.Canceled", err)
	}
}
