package invoice

import (
	"fmt"
	"image"
	"math"
	"time"

	"github.com/fogleman/gg"
	"github.com/shopspring/decimal"
	"golang.org/x/image/font/basicfont"

	"medsupply/backend/internal/domain"
)

// Line is one printed row of the invoice item table.
type Line struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// Data carries everything the renderer needs. It is assembled by the
// service layer so the renderer never touches the repository. Logo is
// optional; when nil the header's logo slot is left empty.
type Data struct {
	InvoiceNumber string
	Date          time.Time
	Company       domain.CompanySettings
	Logo          image.Image
	ClientName    string
	ClientAddress string
	ClientPhone   string
	ClientEmail   string
	Lines         []Line
	Total         decimal.Decimal
}

// Layout constants in document pixels. The bitmap is rasterized at
// renderScale times these dimensions for print sharpness; baseWidth and
// minHeight are an A4 page at 96 dpi.
const (
	baseWidth    = 794
	minHeight    = 1123
	renderScale  = 2
	margin       = 48
	rowHeight    = 26
	footerHeight = 220
)

// Render rasterizes the whole invoice as a single tall bitmap. Long item
// tables grow the bitmap past one page height; Paginate slices it later.
func Render(data Data) image.Image {
	height := 380 + rowHeight*len(data.Lines) + footerHeight
	if height < minHeight {
		height = minHeight
	}

	dc := gg.NewContext(baseWidth*renderScale, height*renderScale)
	dc.Scale(renderScale, renderScale)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(0, 0, 0)

	y := drawHeader(dc, data)
	y = drawBillTo(dc, data, y)
	drawTable(dc, data, y)
	drawFooter(dc, data, float64(height))

	return dc.Image()
}

func drawHeader(dc *gg.Context, data Data) float64 {
	y := float64(margin)
	textX := float64(margin)

	if data.Logo != nil {
		const slotW, slotH = 120.0, 60.0
		bounds := data.Logo.Bounds()
		scale := math.Min(slotW/float64(bounds.Dx()), slotH/float64(bounds.Dy()))
		dc.Push()
		dc.Translate(textX, y)
		dc.Scale(scale, scale)
		dc.DrawImage(data.Logo, 0, 0)
		dc.Pop()
		textX += slotW + 20
	}

	dc.DrawString(data.Company.Name, textX, y+13)
	dc.DrawString(data.Company.Address, textX, y+33)
	dc.DrawString(data.Company.Phone, textX, y+53)
	dc.DrawString(data.Company.Email, textX, y+73)

	right := float64(baseWidth - margin)
	dc.DrawStringAnchored("INVOICE", right, y+13, 1, 0)
	dc.DrawStringAnchored(data.InvoiceNumber, right, y+33, 1, 0)
	dc.DrawStringAnchored(data.Date.Format("January 2, 2006"), right, y+53, 1, 0)

	y += 100
	dc.SetLineWidth(1)
	dc.DrawLine(margin, y, right, y)
	dc.Stroke()
	return y + 30
}

func drawBillTo(dc *gg.Context, data Data, y float64) float64 {
	dc.DrawString("Bill To:", margin, y)
	y += 20
	dc.DrawString(data.ClientName, margin, y)
	for _, field := range []string{data.ClientAddress, data.ClientPhone, data.ClientEmail} {
		if field == "" {
			continue
		}
		y += 18
		dc.DrawString(field, margin, y)
	}
	return y + 40
}

func drawTable(dc *gg.Context, data Data, y float64) float64 {
	right := float64(baseWidth - margin)
	colQty := right - 260.0
	colPrice := right - 150.0

	dc.DrawString("Description", margin, y)
	dc.DrawStringAnchored("Qty", colQty, y, 1, 0)
	dc.DrawStringAnchored("Unit Price", colPrice, y, 1, 0)
	dc.DrawStringAnchored("Amount", right, y, 1, 0)

	y += 8
	dc.DrawLine(margin, y, right, y)
	dc.Stroke()
	y += rowHeight

	for _, line := range data.Lines {
		dc.DrawString(line.Description, margin, y)
		dc.DrawStringAnchored(fmt.Sprintf("%d", line.Quantity), colQty, y, 1, 0)
		dc.DrawStringAnchored("$"+line.UnitPrice.StringFixed(2), colPrice, y, 1, 0)
		dc.DrawStringAnchored("$"+line.Amount.StringFixed(2), right, y, 1, 0)
		y += rowHeight
	}

	dc.DrawLine(margin, y-12, right, y-12)
	dc.Stroke()
	y += 10
	dc.DrawStringAnchored("Total: $"+data.Total.StringFixed(2), right, y, 1, 0)
	return y + 30
}

func drawFooter(dc *gg.Context, data Data, height float64) {
	right := float64(baseWidth - margin)
	center := float64(baseWidth) / 2

	y := height - 170
	dc.SetLineWidth(1)
	dc.DrawLine(margin, y, right, y)
	dc.Stroke()

	y += 28
	dc.DrawStringAnchored(data.Company.Name, center, y, 0.5, 0)
	for _, field := range []string{data.Company.Address, data.Company.Phone, data.Company.Email} {
		if field == "" {
			continue
		}
		y += 18
		dc.DrawStringAnchored(field, center, y, 0.5, 0)
	}

	dc.DrawStringAnchored("Thank you for your business!", center, height-40, 0.5, 0)
}
