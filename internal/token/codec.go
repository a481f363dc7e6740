// Package token encodes verification requests as QR tokens and decodes
// scanned tokens back to request IDs. The QR payload is the public redemption
// URL, so any off-the-shelf scanner lands on the disclosure endpoint; the
// in-house verifier extracts the request ID and redeems over the typed client.
package token

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/skip2/go-qrcode"

	id "attesta/pkg/domain"
	dErrors "attesta/pkg/domain-errors"
)

// verifyPath is the public redemption route the payload points at.
const verifyPath = "/api/verify/"

// Size is the rendered QR side length in pixels.
const Size = 256

// Codec turns request IDs into scannable QR tokens bound to one authority.
type Codec struct {
	baseURL string
}

// NewCodec creates a Codec. baseURL is the authority's public origin,
// e.g. "https://attesta.example.org"; a trailing slash is tolerated.
func NewCodec(baseURL string) *Codec {
	return &Codec{baseURL: strings.TrimRight(baseURL, "/")}
}

// Payload returns the URL a token for requestID encodes.
func (c *Codec) Payload(requestID id.RequestID) string {
	return c.baseURL + verifyPath + requestID.String()
}

// Encode renders the token as a PNG. Highest error correction: tokens are
// scanned off phone screens under glare, and the payload is short enough
// that the extra redundancy costs nothing.
func (c *Codec) Encode(requestID id.RequestID) ([]byte, error) {
	png, err := qrcode.Encode(c.Payload(requestID), qrcode.Highest, Size)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode verification token")
	}
	return png, nil
}

// EncodeImage renders the token as an in-memory image for compositing onto
// an exported verification card.
func (c *Codec) EncodeImage(requestID id.RequestID, size int) (image.Image, error) {
	qr, err := qrcode.New(c.Payload(requestID), qrcode.Highest)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode verification token")
	}
	return qr.Image(size), nil
}

// Decode reads the raw QR payload out of a scanned image. PNG, JPEG, and
// GIF rasters are accepted; phone cameras and screenshots produce all three.
func Decode(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeTokenNotFound, "unable to read scanned image")
	}
	return DecodeImage(img)
}

// DecodeImage reads the raw QR payload out of an already decoded raster.
func DecodeImage(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeTokenNotFound, "unable to read scanned image")
	}
	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeTokenNotFound, "no verification token found in image")
	}
	return result.GetText(), nil
}

// ExtractRequestID resolves a decoded payload to the request identifier it
// names. The payload is normally a redemption URL, so a URL-shaped payload
// resolves to its trailing path segment; any other payload is the identifier
// verbatim. Whether it names a real request is the authority's call at
// redemption, never the scanner's.
func ExtractRequestID(payload string) (string, error) {
	candidate := strings.TrimRight(strings.TrimSpace(payload), "/")
	if i := strings.LastIndex(candidate, "/"); i >= 0 {
		candidate = candidate[i+1:]
	}
	if candidate == "" {
		return "", dErrors.New(dErrors.CodeTokenNotFound, "scanned token is empty")
	}
	return candidate, nil
}

// DecodeRequestID combines Decode and ExtractRequestID.
func DecodeRequestID(r io.Reader) (string, error) {
	payload, err := Decode(r)
	if err != nil {
		return "", err
	}
	return ExtractRequestID(payload)
}
