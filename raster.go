package quotedoc

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-quotedoc/internal/fileutil"
)

// Bitmap is a raster capture of a surface.
type Bitmap struct {
	WidthPx  int
	HeightPx int
	Image    image.Image
}

// Empty reports whether the bitmap has no drawable area.
func (b Bitmap) Empty() bool {
	return b.WidthPx <= 0 || b.HeightPx <= 0 || b.Image == nil
}

// Canonical raster settings: 794px approximates A4 width at 96 DPI, and the
// 2x device scale keeps print output sharp.
const (
	DefaultPixelWidth = 794
	DefaultScale      = 2.0
)

// RasterOptions controls the capture.
type RasterOptions struct {
	Scale            float64 // device scale factor, DefaultScale if zero
	TargetPixelWidth int     // CSS pixel width, DefaultPixelWidth if zero
	// SettleDelay is an extra wait after the readiness signal before
	// capturing. Zero means no extra wait; the request-idle signal is the
	// primary mechanism and this is a fallback for pages whose rendering
	// cannot be observed.
	SettleDelay time.Duration
}

func (o RasterOptions) withDefaults() RasterOptions {
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.TargetPixelWidth <= 0 {
		o.TargetPixelWidth = DefaultPixelWidth
	}
	return o
}

// Rasterizer captures a rendered surface into a single bitmap.
type Rasterizer interface {
	Rasterize(ctx context.Context, surface Surface, opts RasterOptions) (Bitmap, error)
	Close() error
}

// requestIdleWindow is how long the network must stay quiet before the page
// counts as rendered.
const requestIdleWindow = 300 * time.Millisecond

// rodRasterizer captures surfaces with headless Chrome via go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodRasterizer struct {
	browser *rod.Browser
	timeout time.Duration
}

func newRodRasterizer(timeout time.Duration) *rodRasterizer {
	return &rodRasterizer{timeout: timeout}
}

// ensureBrowser lazily connects to the browser.
func (r *rodRasterizer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Close releases browser resources.
func (r *rodRasterizer) Close() error {
	if r.browser != nil {
		err := r.browser.Close()
		r.browser = nil
		return err
	}
	return nil
}

// Rasterize loads the surface in headless Chrome at the target width and
// device scale, waits for an explicit readiness signal (page load plus
// network idle), and captures a full-page PNG screenshot.
func (r *rodRasterizer) Rasterize(ctx context.Context, surface Surface, opts RasterOptions) (Bitmap, error) {
	if err := ctx.Err(); err != nil {
		return Bitmap{}, err
	}
	opts = opts.withDefaults()

	if err := r.ensureBrowser(); err != nil {
		return Bitmap{}, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(surface.HTML, "html")
	if err != nil {
		return Bitmap{}, fmt.Errorf("%w: %v", ErrRasterizeFailed, err)
	}
	defer cleanup()

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return Bitmap{}, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return Bitmap{}, context.DeadlineExceeded
		}
	}
	page = page.Timeout(timeout)

	width := opts.TargetPixelWidth
	if surface.WidthPx > 0 {
		width = surface.WidthPx
	}
	metrics := &proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            1, // full-page capture ignores the viewport height
		DeviceScaleFactor: opts.Scale,
		Mobile:            false,
	}
	if err := metrics.Call(page); err != nil {
		return Bitmap{}, fmt.Errorf("%w: %v", ErrRasterizeFailed, err)
	}

	// Readiness signal: load event plus a quiet network window. The fixed
	// settle delay is only a fallback on top of this.
	wait := page.WaitRequestIdle(requestIdleWindow, nil, nil, nil)
	if err := page.WaitLoad(); err != nil {
		return Bitmap{}, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	wait()

	if opts.SettleDelay > 0 {
		select {
		case <-time.After(opts.SettleDelay):
		case <-ctx.Done():
			return Bitmap{}, ctx.Err()
		}
	}

	if err := ctx.Err(); err != nil {
		return Bitmap{}, err
	}

	data, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return Bitmap{}, fmt.Errorf("%w: %v", ErrRasterizeFailed, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Bitmap{}, fmt.Errorf("%w: decoding screenshot: %v", ErrRasterizeFailed, err)
	}

	bmp := Bitmap{
		WidthPx:  img.Bounds().Dx(),
		HeightPx: img.Bounds().Dy(),
		Image:    img,
	}
	if bmp.Empty() {
		return Bitmap{}, ErrEmptyBitmap
	}
	return bmp, nil
}
