// Package template renders document data into a self-contained HTML surface
// sized for rasterization at a fixed pixel width.
package template

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Sentinel errors for template operations.
var (
	ErrTemplateParse  = errors.New("template parsing failed")
	ErrTemplateRender = errors.New("template rendering failed")
	ErrUnknownKind    = errors.New("unknown template kind")
)

// Template kinds.
const (
	KindQuote    = "quote"
	KindContract = "contract"
)

// Render modes. Preview bounds the surface to one nominal page height with
// scrollable overflow; generate and hidden grow to fit all content.
const (
	ModePreview  = "preview"
	ModeGenerate = "generate"
	ModeHidden   = "hidden"
)

// Company holds the seller profile rendered into every document.
type Company struct {
	Name        string
	Address     string
	Phone       string
	Email       string
	TaxID       string
	BankAccount string
	LogoDataURI string // inline image, empty = no logo
}

// Item is one pre-formatted line-item row.
type Item struct {
	SKU             string
	Name            string
	DescriptionHTML htmltemplate.HTML
	Unit            string
	Quantity        string
	UnitPrice       string
	LineAmount      string
}

// Data is the fully formatted view of a document. All monetary values are
// pre-formatted strings; this package does no arithmetic.
type Data struct {
	Kind  string // KindQuote or KindContract
	Mode  string // ModePreview, ModeGenerate, or ModeHidden
	Title string

	Number     string
	DateIssued string
	DateLabel  string // "Valid Until" or "Sign Date"
	DateValue  string
	Currency   string

	Company      Company
	Counterparty struct {
		Name    string
		Company string
		Address string
		Phone   string
		Email   string
		TaxID   string
	}

	Items          []Item
	Subtotal       string
	DiscountRate   string
	DiscountAmount string
	ShippingCost   string
	GrandTotal     string

	NotesHTML htmltemplate.HTML
}

// Renderer renders Data into HTML using the embedded templates.
type Renderer struct {
	tmpl *htmltemplate.Template
	md   goldmark.Markdown
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	funcs := htmltemplate.FuncMap{
		"add": func(a, b int) int { return a + b },
	}
	tmpl, err := htmltemplate.New("quotedoc").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			// WithUnsafe intentionally not used: notes and descriptions are
			// user input.
		),
	)
	return &Renderer{tmpl: tmpl, md: md}, nil
}

// Markdown converts markdown content (notes, item descriptions) to HTML.
// Empty input yields empty output.
func (r *Renderer) Markdown(content string) (htmltemplate.HTML, error) {
	if content == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return htmltemplate.HTML(buf.String()), nil //nolint:gosec // goldmark output without WithUnsafe
}

// Render executes the template for data.Kind and returns the HTML document.
func (r *Renderer) Render(data Data) (string, error) {
	var name string
	switch data.Kind {
	case KindQuote:
		name = "quote.html.tmpl"
	case KindContract:
		name = "contract.html.tmpl"
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, data.Kind)
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.String(), nil
}
