package quotedoc

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-quotedoc/internal/fileutil"
)

// Format selects the export output.
type Format string

// Export formats.
const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

// Valid reports whether the format is known.
func (f Format) Valid() bool { return f == FormatPDF || f == FormatPNG }

// State is the exporter's position in the pipeline, exposed for
// observability. Transitions: Idle -> Rendering -> Rasterizing ->
// Paginating (PDF only) -> Assembling -> Done | Failed.
type State string

// Exporter states.
const (
	StateIdle        State = "idle"
	StateRendering   State = "rendering"
	StateRasterizing State = "rasterizing"
	StatePaginating  State = "paginating"
	StateAssembling  State = "assembling"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// defaultTimeout bounds one export when the caller's context has no deadline.
const defaultTimeout = 30 * time.Second

// Compile-time interface implementation checks.
var (
	_ Renderer   = (*htmlRenderer)(nil)
	_ Rasterizer = (*rodRasterizer)(nil)
)

// exporterConfig holds internal configuration for Exporter.
type exporterConfig struct {
	timeout time.Duration
	company Company
	page    PageFormat
	raster  RasterOptions
}

// Exporter orchestrates render -> rasterize -> paginate -> assemble.
//
// At most one export runs at a time: the renderer and rasterizer share one
// hidden render target, so a concurrent Export fails fast with
// ErrExportInFlight instead of racing over it.
type Exporter struct {
	cfg        exporterConfig
	renderer   Renderer
	rasterizer Rasterizer
	log        *logrus.Logger
	gate       chan struct{}
	state      chan State // single-element mailbox holding the current state
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithTimeout sets the per-export timeout applied when the caller's context
// has no deadline. Panics if d <= 0 (programmer error, similar to
// time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("quotedoc: WithTimeout duration must be positive")
	}
	return func(e *Exporter) { e.cfg.timeout = d }
}

// WithCompany sets the seller profile rendered into documents.
func WithCompany(c Company) Option {
	return func(e *Exporter) { e.cfg.company = c }
}

// WithPageFormat sets the page format for PDF pagination. Default is A4.
func WithPageFormat(p PageFormat) Option {
	return func(e *Exporter) { e.cfg.page = p }
}

// WithRasterOptions sets capture scale, pixel width, and settle delay.
func WithRasterOptions(o RasterOptions) Option {
	return func(e *Exporter) { e.cfg.raster = o }
}

// WithRenderer injects a custom renderer (e.g., by tests).
func WithRenderer(r Renderer) Option {
	return func(e *Exporter) { e.renderer = r }
}

// WithRasterizer injects a custom rasterizer (e.g., by tests).
func WithRasterizer(r Rasterizer) Option {
	return func(e *Exporter) { e.rasterizer = r }
}

// WithLogger sets the logger for stage transitions. The default discards.
func WithLogger(log *logrus.Logger) Option {
	return func(e *Exporter) { e.log = log }
}

// NewExporter creates an Exporter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithCompany).
func NewExporter(opts ...Option) (*Exporter, error) {
	e := &Exporter{
		cfg: exporterConfig{
			timeout: defaultTimeout,
			page:    A4,
		},
		gate:  make(chan struct{}, 1),
		state: make(chan State, 1),
	}
	e.state <- StateIdle

	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		e.log = logrus.New()
		e.log.SetOutput(io.Discard)
	}

	if e.renderer == nil {
		width := e.cfg.raster.withDefaults().TargetPixelWidth
		r, err := newHTMLRenderer(e.cfg.company, width)
		if err != nil {
			return nil, err
		}
		e.renderer = r
	}

	// Create rasterizer if not injected (e.g., by tests)
	if e.rasterizer == nil {
		e.rasterizer = newRodRasterizer(e.cfg.timeout)
	}

	return e, nil
}

// State returns the exporter's current pipeline state.
func (e *Exporter) State() State {
	s := <-e.state
	e.state <- s
	return s
}

func (e *Exporter) setState(s State, fields logrus.Fields) {
	<-e.state
	e.state <- s
	e.log.WithFields(fields).WithField("state", s).Info("export state")
}

// Export produces the document's artifact in the given format.
//
// The document is deep-copied before rendering, so edits made while the
// export is in flight do not affect it. A second Export while one is in
// flight returns ErrExportInFlight without side effects. On any failure no
// partial artifact is returned.
//
// The artifact is named <documentNumber>.<ext> after sanitizing the
// user-editable number; numbers are not unique, so callers that write the
// file decide collision behavior (the browser-download semantics this
// mirrors simply overwrite).
func (e *Exporter) Export(ctx context.Context, doc *Document, format Format) (Artifact, error) {
	if doc == nil {
		return Artifact{}, ErrNilDocument
	}
	if !format.Valid() {
		return Artifact{}, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}

	// Single-flight gate.
	select {
	case e.gate <- struct{}{}:
	default:
		return Artifact{}, ErrExportInFlight
	}
	defer func() { <-e.gate }()

	if _, ok := ctx.Deadline(); !ok && e.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.timeout)
		defer cancel()
	}

	fields := logrus.Fields{"document": doc.Number, "format": format}

	artifact, err := e.export(ctx, doc.Clone(), format, fields)
	if err != nil {
		e.setState(StateFailed, fields)
		e.setState(StateIdle, fields)
		return Artifact{}, err
	}
	e.setState(StateDone, fields)
	e.setState(StateIdle, fields)
	return artifact, nil
}

func (e *Exporter) export(ctx context.Context, snap *Document, format Format, fields logrus.Fields) (Artifact, error) {
	e.setState(StateRendering, fields)
	surface, err := e.renderer.Render(ctx, snap, ModeHidden)
	if err != nil {
		return Artifact{}, fmt.Errorf("rendering: %w", err)
	}

	e.setState(StateRasterizing, fields)
	bmp, err := e.rasterizer.Rasterize(ctx, surface, e.cfg.raster)
	if err != nil {
		return Artifact{}, fmt.Errorf("rasterizing: %w", err)
	}
	if bmp.Empty() {
		return Artifact{}, ErrEmptyBitmap
	}

	name := fileutil.SanitizeFilename(snap.Number)

	switch format {
	case FormatPNG:
		e.setState(StateAssembling, fields)
		data, err := assemblePNG(bmp)
		if err != nil {
			return Artifact{}, fmt.Errorf("assembling: %w", err)
		}
		return Artifact{Filename: name + ".png", MIME: "image/png", Data: data}, nil

	case FormatPDF:
		e.setState(StatePaginating, fields)
		p, err := Paginate(bmp.WidthPx, bmp.HeightPx, e.cfg.page)
		if err != nil {
			return Artifact{}, fmt.Errorf("paginating: %w", err)
		}
		e.log.WithFields(fields).WithField("pages", p.PageCount()).Info("paginated")

		e.setState(StateAssembling, fields)
		data, err := assemblePDF(bmp, p)
		if err != nil {
			return Artifact{}, fmt.Errorf("assembling: %w", err)
		}
		return Artifact{Filename: name + ".pdf", MIME: "application/pdf", Data: data}, nil
	}

	return Artifact{}, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
}

// Preview renders the document as a bounded on-screen surface. No pagination
// is applied; overflow scrolls. Preview does not contend with the export
// gate: it produces no raster and touches no shared render target.
func (e *Exporter) Preview(ctx context.Context, doc *Document) (Surface, error) {
	if doc == nil {
		return Surface{}, ErrNilDocument
	}
	return e.renderer.Render(ctx, doc.Clone(), ModePreview)
}

// Close releases resources (headless Chrome browser).
func (e *Exporter) Close() error {
	if e.rasterizer != nil {
		return e.rasterizer.Close()
	}
	return nil
}
