package quotedoc

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
)

// Artifact is a finished export ready for download or saving.
type Artifact struct {
	Filename string
	MIME     string
	Data     []byte
}

// assemblePDF composes one fixed-size page per slice, in order. Each page
// embeds an explicit crop of the source bitmap rather than repositioning the
// whole image, so the output does not depend on the PDF viewer clipping
// out-of-page content.
func assemblePDF(bmp Bitmap, p Pagination) ([]byte, error) {
	if bmp.Empty() {
		return nil, ErrEmptyBitmap
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: p.Page.WidthMM, Ht: p.Page.HeightMM},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	for _, slice := range p.Slices {
		if slice.HeightPx <= 0 {
			continue // rounding can leave a zero-pixel final band
		}
		band := imaging.Crop(bmp.Image, image.Rect(0, slice.TopPx, bmp.WidthPx, slice.TopPx+slice.HeightPx))

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, band, imaging.PNG); err != nil {
			return nil, fmt.Errorf("%w: encoding page %d: %v", ErrAssembleFailed, slice.Index+1, err)
		}

		name := fmt.Sprintf("page-%d", slice.Index)
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.AddPage()
		pdf.ImageOptions(name, 0, 0, p.Page.WidthMM, slice.HeightMM, false, opts, 0, "")
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssembleFailed, err)
	}
	return out.Bytes(), nil
}

// assemblePNG encodes the full bitmap as a single PNG image.
func assemblePNG(bmp Bitmap) ([]byte, error) {
	if bmp.Empty() {
		return nil, ErrEmptyBitmap
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, bmp.Image, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssembleFailed, err)
	}
	return buf.Bytes(), nil
}
