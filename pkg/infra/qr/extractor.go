package qr

import (
	"bytes"
	"image"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/hy-sato/picket/pkg/domain/model"
	"github.com/hy-sato/picket/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// maxEdge is the longest edge the photo is scaled down to before decoding.
// Phone photos are far larger than the QR module grid needs.
const maxEdge = 1600

// Extractor finds a QR code in an uploaded photo and extracts the resource
// code from its URL payload
type Extractor struct {
	pattern *regexp.Regexp
	hints   map[gozxing.DecodeHintType]interface{}
}

// New creates an Extractor. pattern must be anchored and carry one capture
// group holding the resource code. An Extractor is safe for concurrent use;
// the zxing reader itself is not, so one is created per decode attempt.
func New(pattern *regexp.Regexp) *Extractor {
	return &Extractor{
		pattern: pattern,
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Extract decodes the photo, normalizes its orientation, and tries the QR
// decode at 0, 90, 180 and 270 degrees in that order, stopping at the first
// payload matching the URL pattern.
func (x *Extractor) Extract(data []byte) (model.ResourceCode, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", goerr.Wrap(err, "cannot decode upload as image",
			goerr.T(types.TagUnreadableImage))
	}

	prepared := x.prepare(img)
	for range 4 {
		if code, ok := x.decodeOnce(prepared); ok {
			return code, nil
		}
		prepared = imaging.Rotate90(prepared)
	}

	return "", goerr.New("no QR code matching the resource URL pattern",
		goerr.T(types.TagCodeNotFound))
}

// prepare shrinks and desaturates the photo for decoding
func (x *Extractor) prepare(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() > maxEdge || b.Dy() > maxEdge {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Linear)
	}
	return imaging.Grayscale(img)
}

// decodeOnce runs a single decode attempt against one orientation
func (x *Extractor) decodeOnce(img image.Image) (model.ResourceCode, bool) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, x.hints)
	if err != nil {
		return "", false
	}

	payload := strings.TrimSpace(result.GetText())
	m := x.pattern.FindStringSubmatch(payload)
	if m == nil {
		return "", false
	}
	return model.ResourceCode(m[1]), true
}
