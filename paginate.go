package quotedoc

import (
	"fmt"
	"math"
)

// PageFormat is a printable page size in millimetres.
type PageFormat struct {
	WidthMM  float64
	HeightMM float64
}

// A4 is the canonical page format (210mm x 297mm).
var A4 = PageFormat{WidthMM: 210, HeightMM: 297}

// PageSlice is one fixed-page-sized visible window into the full bitmap.
// OffsetMM is the vertical position at which the full image is placed so the
// slice's band falls inside the page (0 for page one, then -HeightMM more per
// page). TopPx/HeightPx describe the same band in source-bitmap pixels for
// explicit cropping.
type PageSlice struct {
	Index    int
	OffsetMM float64
	TopMM    float64
	HeightMM float64
	TopPx    int
	HeightPx int
}

// Pagination is the result of slicing one bitmap into page-sized bands.
type Pagination struct {
	ImageWidthPx   int
	ImageHeightPx  int
	ScaledHeightMM float64 // printed height of the whole image at page width
	Page           PageFormat
	Slices         []PageSlice
}

// PageCount returns the number of pages.
func (p Pagination) PageCount() int { return len(p.Slices) }

// Paginate slices a bitmap of imgWidthPx x imgHeightPx pixels into bands of
// the given page format such that concatenating the bands reproduces the
// image with no gaps and no overlaps beyond rounding.
//
// The image is scaled to the full page width, so its printed height is
//
//	scaledHeightMM = imgHeightPx * page.WidthMM / imgWidthPx
//
// and the band visible on page k covers [(k-1)*HeightMM, k*HeightMM) of that
// height. The page count is ceil(scaledHeightMM / page.HeightMM). Pagination
// is deterministic: the same dimensions always produce the same slices.
//
// The caller must validate the bitmap first; zero or negative dimensions
// return ErrEmptyBitmap.
func Paginate(imgWidthPx, imgHeightPx int, page PageFormat) (Pagination, error) {
	if imgWidthPx <= 0 || imgHeightPx <= 0 {
		return Pagination{}, fmt.Errorf("%w: %dx%d", ErrEmptyBitmap, imgWidthPx, imgHeightPx)
	}
	if page.WidthMM <= 0 || page.HeightMM <= 0 {
		return Pagination{}, fmt.Errorf("invalid page format: %+v", page)
	}

	scaledHeightMM := float64(imgHeightPx) * page.WidthMM / float64(imgWidthPx)
	pxPerMM := float64(imgWidthPx) / page.WidthMM

	p := Pagination{
		ImageWidthPx:   imgWidthPx,
		ImageHeightPx:  imgHeightPx,
		ScaledHeightMM: scaledHeightMM,
		Page:           page,
	}

	remaining := scaledHeightMM
	for i := 0; ; i++ {
		topMM := float64(i) * page.HeightMM
		heightMM := math.Min(page.HeightMM, scaledHeightMM-topMM)

		topPx := int(math.Round(topMM * pxPerMM))
		bottomPx := int(math.Round((topMM + heightMM) * pxPerMM))
		if bottomPx > imgHeightPx {
			bottomPx = imgHeightPx
		}

		offsetMM := -topMM
		if topMM == 0 {
			offsetMM = 0 // avoid IEEE negative zero, which formats as "-0"
		}

		p.Slices = append(p.Slices, PageSlice{
			Index:    i,
			OffsetMM: offsetMM,
			TopMM:    topMM,
			HeightMM: heightMM,
			TopPx:    topPx,
			HeightPx: bottomPx - topPx,
		})

		remaining -= page.HeightMM
		if remaining <= 0 {
			break
		}
	}

	return p, nil
}
