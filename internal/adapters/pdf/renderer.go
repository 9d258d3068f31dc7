// Package pdf lays out villa brochures with fpdf.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"villa_catalog/internal/app"
	"villa_catalog/internal/domain"
)

const (
	pageMargin = 15.0
	heroHeight = 95.0
	thumbGap   = 4.0
	thumbH     = 45.0
)

type Renderer struct {
	images ImageFetcher
}

func NewRenderer(f ImageFetcher) *Renderer { return &Renderer{images: f} }

// picture is a fetched image registered with the document under name.
type picture struct {
	name string
	kind string
	data []byte
}

// Render produces the brochure PDF. Images that cannot be fetched are left out.
func (r *Renderer) Render(ctx context.Context, m app.BrochureModel) ([]byte, error) {
	urls := make([]string, 0, 1+len(m.Gallery))
	if m.MainImage != "" {
		urls = append(urls, m.MainImage)
	}
	urls = append(urls, m.Gallery...)
	imgs := r.fetchAll(ctx, urls)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin+10)
	pdf.SetTitle(m.Name, true)
	pdf.SetAuthor(m.Agency.Name, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin - 5)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(120, 120, 120)
		parts := []string{m.Agency.Name, m.Agency.Email, m.Agency.Phone, m.Agency.Website}
		pdf.CellFormat(0, 5, tr(joinNonEmpty(parts, "  ·  ")), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*pageMargin

	// header
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(140, 120, 90)
	kind := m.Labels.ForRent
	if m.ListingType == domain.ModeSale {
		kind = m.Labels.ForSale
	}
	pdf.CellFormat(0, 5, tr(strings.ToUpper(joinNonEmpty([]string{kind, m.Location}, " · "))), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(30, 30, 30)
	pdf.CellFormat(0, 11, tr(m.Name), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// hero + thumbnails
	var gallery []picture
	if len(imgs) > 0 && m.MainImage != "" && imgs[0].name == m.MainImage {
		placeImage(pdf, imgs[0], pageMargin, pdf.GetY(), contentW, heroHeight)
		pdf.SetY(pdf.GetY() + heroHeight + thumbGap)
		gallery = imgs[1:]
	} else {
		gallery = imgs
	}
	if len(gallery) > 0 {
		n := float64(len(gallery))
		w := (contentW - thumbGap*(n-1)) / n
		y := pdf.GetY()
		for i, img := range gallery {
			placeImage(pdf, img, pageMargin+float64(i)*(w+thumbGap), y, w, thumbH)
		}
		pdf.SetY(y + thumbH + thumbGap)
	}

	// key facts
	facts := []string{
		fmt.Sprintf("%d %s", m.Bedrooms, m.Labels.Bedrooms),
		fmt.Sprintf("%d %s", m.Bathrooms, m.Labels.Bathrooms),
	}
	if m.ListingType == domain.ModeRent {
		facts = append(facts, fmt.Sprintf("%d %s", m.Guests, m.Labels.Guests))
	}
	if m.Surface != nil {
		facts = append(facts, fmt.Sprintf("%s %d m²", m.Labels.Surface, *m.Surface))
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 7, tr(strings.Join(facts, "   |   ")), "TB", 1, "C", false, 0, "")
	pdf.Ln(4)

	section(pdf, tr(m.Labels.Description))
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, tr(m.Description), "", "J", false)
	pdf.Ln(3)

	if len(m.Amenities) > 0 {
		section(pdf, tr(m.Labels.Amenities))
		pdf.SetFont("Helvetica", "", 10)
		colW := contentW / 2
		for i, a := range m.Amenities {
			ln := 0
			if i%2 == 1 || i == len(m.Amenities)-1 {
				ln = 1
			}
			pdf.CellFormat(colW, 6, tr("• "+a.Name), "", ln, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	if p := m.Pricing; p != nil {
		if m.ListingType == domain.ModeSale {
			section(pdf, tr(m.Labels.SalePrice))
			pdf.SetFont("Helvetica", "B", 14)
			pdf.CellFormat(0, 8, tr(FormatEuros(p.SalePrice, m.Language)), "", 1, "L", false, 0, "")
		} else {
			section(pdf, tr(m.Labels.Rates+" ("+m.Labels.PerWeek+")"))
			pdf.SetFont("Helvetica", "", 9)
			for _, s := range p.Seasons {
				pdf.SetFont("Helvetica", "B", 9)
				pdf.CellFormat(contentW*0.35, 6, tr(s.SeasonName), "B", 0, "L", false, 0, "")
				pdf.SetFont("Helvetica", "", 9)
				pdf.CellFormat(contentW*0.25, 6, tr(s.Dates), "B", 0, "L", false, 0, "")
				tiers := make([]string, 0, len(s.Prices))
				for _, t := range s.Prices {
					tiers = append(tiers, fmt.Sprintf("%d %s: %s", t.Bedrooms, strings.ToLower(m.Labels.Bedrooms), FormatEuros(t.Price, m.Language)))
				}
				pdf.CellFormat(contentW*0.40, 6, tr(strings.Join(tiers, " / ")), "B", 1, "L", false, 0, "")
			}
		}
		if p.Note != "" {
			pdf.Ln(1)
			pdf.SetFont("Helvetica", "I", 8)
			pdf.MultiCell(0, 4, tr(p.Note), "", "L", false)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout brochure: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write brochure: %w", err)
	}
	return buf.Bytes(), nil
}

// fetchAll downloads images concurrently, keeping input order and dropping failures.
func (r *Renderer) fetchAll(ctx context.Context, urls []string) []picture {
	if r.images == nil || len(urls) == 0 {
		return nil
	}
	got := make([]*picture, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			data, kind, err := r.images.Fetch(gctx, u)
			if err != nil {
				log.Warn().Err(err).Str("url", u).Msg("brochure image skipped")
				return nil
			}
			got[i] = &picture{name: u, kind: kind, data: data}
			return nil
		})
	}
	_ = g.Wait()
	out := make([]picture, 0, len(urls))
	for _, img := range got {
		if img != nil {
			out = append(out, *img)
		}
	}
	return out
}

func placeImage(pdf *fpdf.Fpdf, img picture, x, y, w, h float64) {
	opt := fpdf.ImageOptions{ImageType: img.kind, ReadDpi: false}
	info := pdf.RegisterImageOptionsReader(img.name, opt, bytes.NewReader(img.data))
	if info == nil || pdf.Err() {
		// a broken image must not fail the whole brochure
		log.Warn().Str("url", img.name).Err(pdf.Error()).Msg("brochure image could not be decoded")
		pdf.ClearError()
		return
	}
	// cover the box, cropping by clipping to it
	iw, ih := info.Width(), info.Height()
	scale := w / iw
	if ih*scale < h {
		scale = h / ih
	}
	dw, dh := iw*scale, ih*scale
	pdf.ClipRect(x, y, w, h, false)
	pdf.ImageOptions(img.name, x-(dw-w)/2, y-(dh-h)/2, dw, dh, false, opt, 0, "")
	pdf.ClipEnd()
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(140, 120, 90)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetTextColor(40, 40, 40)
}

// FormatEuros renders an amount the way each language writes prices:
// "25 000 €" in French, "€25,000" in English.
func FormatEuros(amount int, lang string) string {
	s := message.NewPrinter(language.English).Sprintf("%d", amount)
	if lang == "en" {
		return "€" + s
	}
	return strings.ReplaceAll(s, ",", " ") + " €"
}

func joinNonEmpty(parts []string, sep string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, sep)
}
