// Package card renders a verification request as a shareable PNG card. The
// layout is fixed; the output is a pure function of the request and the
// codec's base URL apart from the generated-on clock fallback.
package card

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"attesta/internal/purpose"
	"attesta/internal/token"
	"attesta/internal/verification/models"
	id "attesta/pkg/domain"
	dErrors "attesta/pkg/domain-errors"
)

// Card geometry, 3:4 portrait sized for sharing and printing.
const (
	Width  = 420
	Height = 560

	qrSize       = 220
	cardMargin   = 24
	cornerRadius = 16
)

var (
	background = color.RGBA{R: 0xF8, G: 0xFA, B: 0xFC, A: 0xFF}
	cardWhite  = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	inkDark    = color.RGBA{R: 0x0F, G: 0x17, B: 0x2A, A: 0xFF}
	inkMuted   = color.RGBA{R: 0x64, G: 0x74, B: 0x8B, A: 0xFF}
)

// Renderer composes cards for one authority's tokens.
type Renderer struct {
	codec *token.Codec
	now   func() time.Time
}

type Option func(*Renderer)

// WithClock overrides the generated-on fallback clock.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRenderer creates a Renderer embedding tokens from codec.
func NewRenderer(codec *token.Codec, opts ...Option) *Renderer {
	r := &Renderer{codec: codec, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Filename names the exported card after the request's ID suffix, enough to
// tell downloads apart without leaking the full identifier into listings.
func Filename(requestID id.RequestID) string {
	return "attesta-verification-" + requestID.Suffix(6) + ".png"
}

// Render composes the card PNG. The generated-on line uses the record's
// creation time; the call-time clock only covers records without one.
func (r *Renderer) Render(request *models.Request) ([]byte, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	cardRect := image.Rect(cardMargin, cardMargin, Width-cardMargin, Height-cardMargin)
	fillRounded(canvas, cardRect, cornerRadius, cardWhite)

	drawCentered(canvas, 80, "ATTESTA", inkDark)
	drawCentered(canvas, 104, "Secure Verification Card", inkMuted)

	title := string(request.Purpose)
	if p, err := purpose.Get(request.Purpose); err == nil {
		title = p.Title
	}
	drawCentered(canvas, 150, title, inkDark)

	qr, err := r.codec.EncodeImage(request.ID, qrSize)
	if err != nil {
		return nil, err
	}
	qrTop := 180
	qrLeft := (Width - qrSize) / 2
	draw.Draw(canvas, image.Rect(qrLeft, qrTop, qrLeft+qrSize, qrTop+qrSize), qr, qr.Bounds().Min, draw.Src)

	generatedAt := request.CreatedAt
	if generatedAt.IsZero() {
		generatedAt = r.now()
	}
	drawCentered(canvas, qrTop+qrSize+48, "Scan to verify - Expires automatically", inkMuted)
	drawCentered(canvas, qrTop+qrSize+72, "Generated on "+generatedAt.UTC().Format("Jan 2, 2006 15:04 MST"), inkMuted)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode verification card")
	}
	return buf.Bytes(), nil
}

// drawCentered writes one line horizontally centered with the baseline at y.
func drawCentered(dst draw.Image, y int, text string, ink color.Color) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(ink),
		Face: face,
		Dot:  fixed.P((Width-width)/2, y),
	}
	d.DrawString(text)
}

// fillRounded fills rect with c, clipping the four corners to radius.
func fillRounded(dst *image.RGBA, rect image.Rectangle, radius int, c color.Color) {
	rr := radius * radius
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dx, dy := 0, 0
			if x < rect.Min.X+radius {
				dx = rect.Min.X + radius - x
			} else if x >= rect.Max.X-radius {
				dx = x - (rect.Max.X - radius - 1)
			}
			if y < rect.Min.Y+radius {
				dy = rect.Min.Y + radius - y
			} else if y >= rect.Max.Y-radius {
				dy = y - (rect.Max.Y - radius - 1)
			}
			if dx > 0 && dy > 0 && dx*dx+dy*dy > rr {
				continue
			}
			dst.Set(x, y, c)
		}
	}
}
