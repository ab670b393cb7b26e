package invoice

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/jung-kurt/gofpdf"
)

// A4 page size in millimeters.
const (
	pageWidthMM  = 210.0
	pageHeightMM = 297.0
)

// PDF renders the invoice bitmap and assembles it into an A4 document,
// repeating the image across as many pages as its scaled height needs.
func PDF(data Data) ([]byte, error) {
	img := Render(data)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode invoice bitmap: %w", err)
	}

	bounds := img.Bounds()
	placements := Paginate(float64(bounds.Dx()), float64(bounds.Dy()), pageWidthMM, pageHeightMM)

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)

	opts := gofpdf.ImageOptions{ImageType: "PNG", AllowNegativePosition: true}
	doc.RegisterImageOptionsReader("invoice", opts, &buf)
	for _, placement := range placements {
		doc.AddPage()
		doc.ImageOptions("invoice", 0, placement.OffsetY, pageWidthMM, 0, false, opts, 0, "")
	}

	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return out.Bytes(), nil
}

// Filename is the download name offered for a rendered invoice.
func Filename(invoiceNumber string) string {
	return fmt.Sprintf("invoice-%s.pdf", invoiceNumber)
}
