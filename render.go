package quotedoc

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/alnah/go-quotedoc/internal/template"
)

// RenderMode selects how the surface is sized.
type RenderMode string

// Render modes. ModePreview bounds the surface to one nominal page height
// with scrollable overflow; ModeGenerate grows to fit all content and must
// never clip it; ModeHidden behaves like ModeGenerate for an off-screen
// render target.
const (
	ModePreview  RenderMode = "preview"
	ModeGenerate RenderMode = "generate"
	ModeHidden   RenderMode = "hidden"
)

// Valid reports whether the mode is known.
func (m RenderMode) Valid() bool {
	switch m {
	case ModePreview, ModeGenerate, ModeHidden:
		return true
	}
	return false
}

// Surface is a renderable visual tree: a self-contained HTML document laid
// out at a fixed pixel width with natural (variable) height.
type Surface struct {
	HTML    string
	WidthPx int
}

// Company is the seller profile rendered into every document.
type Company struct {
	Name        string
	Address     string
	Phone       string
	Email       string
	TaxID       string
	BankAccount string
	LogoPath    string // optional image file, inlined at render time
}

// Renderer turns a document into a visual surface.
type Renderer interface {
	Render(ctx context.Context, doc *Document, mode RenderMode) (Surface, error)
}

// logoMaxWidth bounds the inlined logo raster.
const logoMaxWidth = 400

// htmlRenderer renders documents through the embedded HTML templates.
type htmlRenderer struct {
	tmpl    *template.Renderer
	company Company
	widthPx int
	logoURI string // cached data URI, loaded once
}

func newHTMLRenderer(company Company, widthPx int) (*htmlRenderer, error) {
	tmpl, err := template.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	r := &htmlRenderer{tmpl: tmpl, company: company, widthPx: widthPx}
	if company.LogoPath != "" {
		uri, err := logoDataURI(company.LogoPath)
		if err != nil {
			return nil, fmt.Errorf("%w: logo: %v", ErrRenderFailed, err)
		}
		r.logoURI = uri
	}
	return r, nil
}

// Render builds the formatted view and executes the matching template.
func (r *htmlRenderer) Render(ctx context.Context, doc *Document, mode RenderMode) (Surface, error) {
	if doc == nil {
		return Surface{}, fmt.Errorf("%w: %v", ErrRenderFailed, ErrNilDocument)
	}
	if !mode.Valid() {
		return Surface{}, fmt.Errorf("%w: invalid render mode %q", ErrRenderFailed, mode)
	}
	if err := ctx.Err(); err != nil {
		return Surface{}, err
	}

	data, err := r.buildData(doc, mode)
	if err != nil {
		return Surface{}, err
	}

	html, err := r.tmpl.Render(data)
	if err != nil {
		return Surface{}, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return Surface{HTML: html, WidthPx: r.widthPx}, nil
}

func (r *htmlRenderer) buildData(doc *Document, mode RenderMode) (template.Data, error) {
	totals := doc.Totals()

	data := template.Data{
		Mode:       string(mode),
		Number:     doc.Number,
		DateIssued: doc.DateIssued,
		DateValue:  doc.ValidUntil,
		Currency:   doc.Currency,

		Subtotal:       totals.Subtotal.StringFixed(2),
		DiscountRate:   totals.DiscountRate.String(),
		DiscountAmount: totals.DiscountAmount.StringFixed(2),
		ShippingCost:   totals.ShippingCost.StringFixed(2),
		GrandTotal:     totals.GrandTotal.StringFixed(2),
	}

	switch doc.Type {
	case TypeProforma:
		data.Kind, data.Title, data.DateLabel = template.KindQuote, "Proforma Invoice", "Valid Until"
	case TypeCommercial:
		data.Kind, data.Title, data.DateLabel = template.KindQuote, "Commercial Invoice", "Valid Until"
	case TypeQuotation:
		data.Kind, data.Title, data.DateLabel = template.KindQuote, "Quotation", "Valid Until"
	case TypeContract:
		data.Kind, data.Title, data.DateLabel = template.KindContract, "Sales Contract", "Sign Date"
	default:
		return template.Data{}, fmt.Errorf("%w: %w: %q", ErrRenderFailed, ErrInvalidType, doc.Type)
	}

	data.Company = template.Company{
		Name:        r.company.Name,
		Address:     r.company.Address,
		Phone:       r.company.Phone,
		Email:       r.company.Email,
		TaxID:       r.company.TaxID,
		BankAccount: r.company.BankAccount,
		LogoDataURI: r.logoURI,
	}

	if doc.Counterparty != nil {
		data.Counterparty.Name = doc.Counterparty.Name
		data.Counterparty.Company = doc.Counterparty.Company
		data.Counterparty.Address = doc.Counterparty.Address
		data.Counterparty.Phone = doc.Counterparty.Phone
		data.Counterparty.Email = doc.Counterparty.Email
		data.Counterparty.TaxID = doc.Counterparty.TaxID
	}

	for _, item := range doc.Items {
		desc, err := r.tmpl.Markdown(item.Description)
		if err != nil {
			return template.Data{}, fmt.Errorf("%w: %v", ErrRenderFailed, err)
		}
		data.Items = append(data.Items, template.Item{
			SKU:             item.SKU,
			Name:            item.Name,
			DescriptionHTML: desc,
			Unit:            item.Unit,
			Quantity:        item.Quantity.String(),
			UnitPrice:       item.UnitPrice.StringFixed(2),
			LineAmount:      item.LineAmount.StringFixed(2),
		})
	}

	notes, err := r.tmpl.Markdown(doc.Notes)
	if err != nil {
		return template.Data{}, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	data.NotesHTML = notes

	return data, nil
}

// logoDataURI loads an image file, bounds its width, and inlines it as a
// PNG data URI so the rendered page has no external fetches to wait on.
func logoDataURI(path string) (string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", err
	}
	if img.Bounds().Dx() > logoMaxWidth {
		img = imaging.Resize(img, logoMaxWidth, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
